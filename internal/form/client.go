package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	mailPath   = "/api/mail"
	enrollPath = "/api/notion"
)

// StatusError is a non-2xx answer from the waitlist API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("waitlist api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("waitlist api: status %d: %s", e.StatusCode, e.Message)
}

// HTTPClient talks to the waitlist API over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type mailBody struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type enrollBody struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstname"`
	ReferredBy string `json:"referredBy,omitempty"`
}

type enrollReply struct {
	Success  bool   `json:"success"`
	Code     string `json:"code"`
	NotionID string `json:"notionId"`
}

func (c *HTTPClient) SendWelcome(ctx context.Context, email, name string) error {
	return c.post(ctx, mailPath, mailBody{Email: email, Name: name}, nil)
}

func (c *HTTPClient) Enroll(ctx context.Context, req EnrollRequest) (EnrollResult, error) {
	var reply enrollReply
	err := c.post(ctx, enrollPath, enrollBody{
		Email:      req.Email,
		FirstName:  req.FirstName,
		ReferredBy: req.ReferredBy,
	}, &reply)
	if err != nil {
		return EnrollResult{}, err
	}
	if !reply.Success || reply.Code == "" {
		return EnrollResult{}, fmt.Errorf("waitlist api: enrollment response carried no code")
	}

	return EnrollResult{Code: reply.Code, NotionID: reply.NotionID}, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// errorMessage pulls "message" out of an error envelope, if there is one.
func errorMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}
