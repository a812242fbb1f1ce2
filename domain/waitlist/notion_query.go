package waitlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jomei/notionapi"
)

const (
	DefaultNotionBaseURL = "https://api.notion.com"
	notionVersion        = "2022-06-28"
)

// emailFilter is Notion's email property condition. notionapi.PropertyFilter
// has no email field and notionapi.Filter cannot be implemented outside the
// library, so database queries are posted by NotionQuerier.
type emailFilter struct {
	Property string                          `json:"property"`
	Email    *notionapi.TextFilterCondition `json:"email"`
}

type databaseQuery struct {
	Filter   any `json:"filter"`
	PageSize int `json:"page_size,omitempty"`
}

// NotionQuerier posts database queries with arbitrary filter bodies. Error
// answers decode into *notionapi.Error like the library's own calls.
type NotionQuerier struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

func NewNotionQuerier(token string, httpClient *http.Client, baseURL string) *NotionQuerier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultNotionBaseURL
	}
	return &NotionQuerier{
		httpClient: httpClient,
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (q *NotionQuerier) Query(ctx context.Context, databaseID notionapi.DatabaseID, body databaseQuery) (*notionapi.DatabaseQueryResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode notion query: %w", err)
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", q.baseURL, databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+q.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read notion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &notionapi.Error{}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("notion query failed with status %d", resp.StatusCode)
		}
		return nil, apiErr
	}

	var result notionapi.DatabaseQueryResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode notion query: %w", err)
	}
	return &result, nil
}
