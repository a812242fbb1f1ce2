package config

import (
	"net/http"
	"time"

	"github.com/akeren/waitlist-api/internal/log"
	"github.com/jomei/notionapi"
)

type NotionConfig struct {
	Secret     string
	DatabaseID string
	Timeout    time.Duration
}

func NewNotionConfig() *NotionConfig {
	return &NotionConfig{
		Secret:     sanitizeEnv(GetValueFromEnvironmentVariable("NOTION_SECRET", "")),
		DatabaseID: sanitizeEnv(GetValueFromEnvironmentVariable("NOTION_DATABASE_ID", "")),
		Timeout:    10 * time.Second,
	}
}

// NewHTTPClient is shared by the notionapi client and the raw database querier.
func (nc *NotionConfig) NewHTTPClient() *http.Client {
	return &http.Client{Timeout: nc.Timeout}
}

// NewClient logs missing credentials instead of failing: the server still
// boots and enrollment requests fail with 500 until they are supplied.
func (nc *NotionConfig) NewClient(logger *log.Logger, httpClient *http.Client) *notionapi.Client {
	if nc.Secret == "" {
		logger.Error("NOTION_SECRET is not set; waitlist enrollment will fail")
	}
	if nc.DatabaseID == "" {
		logger.Error("NOTION_DATABASE_ID is not set; waitlist enrollment will fail")
	}

	return notionapi.NewClient(
		notionapi.Token(nc.Secret),
		notionapi.WithHTTPClient(httpClient),
	)
}
