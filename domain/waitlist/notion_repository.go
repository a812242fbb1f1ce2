package waitlist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/akeren/waitlist-api/internal/models"
	"github.com/akeren/waitlist-api/pkg/circuitbreaker"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/jomei/notionapi"
)

// Property names of the Notion waitlist database.
const (
	NotionPropName           = "Name"
	NotionPropEmail          = "Email"
	NotionPropReferralCode   = "Referral Code"
	NotionPropReferredByCode = "Referred By Code"
	NotionPropReferrer       = "Referrer"
)

type notionRepository struct {
	client     *notionapi.Client
	querier    *NotionQuerier
	databaseID notionapi.DatabaseID
	breaker    circuitbreaker.CircuitBreaker
}

// NewNotionRepository stores entries as pages of a Notion database. Pages are
// created through client and looked up through querier. A nil breaker gets
// the package defaults.
func NewNotionRepository(client *notionapi.Client, querier *NotionQuerier, databaseID string, breaker circuitbreaker.CircuitBreaker) WaitlistRepository {
	if breaker == nil {
		breaker = NewNotionCircuitBreaker()
	}

	return &notionRepository{
		client:     client,
		querier:    querier,
		databaseID: notionapi.DatabaseID(databaseID),
		breaker:    breaker,
	}
}

// NewNotionCircuitBreaker ignores Notion's 4xx answers: they describe a bad
// request, not an unhealthy store.
func NewNotionCircuitBreaker() circuitbreaker.CircuitBreaker {
	cfg := circuitbreaker.DefaultConfig()
	cfg.IsFailure = isNotionOutage
	return circuitbreaker.NewCircuitBreaker(cfg)
}

func isNotionOutage(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError || apiErr.Status == http.StatusTooManyRequests
	}

	return true
}

func (nr *notionRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	pages, err := nr.query(ctx, emailFilter{
		Property: NotionPropEmail,
		Email:    &notionapi.TextFilterCondition{Equals: email},
	})
	if err != nil {
		return false, apperrors.NewDatabaseError("unable to check waitlist email", err)
	}

	return len(pages) > 0, nil
}

func (nr *notionRepository) FindByReferralCode(ctx context.Context, code string) (*models.WaitlistEntry, error) {
	pages, err := nr.query(ctx, &notionapi.PropertyFilter{
		Property: NotionPropReferralCode,
		RichText: &notionapi.TextFilterCondition{Equals: code},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to look up referral code", err)
	}
	if len(pages) == 0 {
		return nil, nil
	}

	return pageToEntry(&pages[0]), nil
}

func (nr *notionRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: nr.databaseID,
		},
		Properties: entryProperties(entry),
	}

	var page *notionapi.Page
	err := nr.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		page, err = nr.client.Page.Create(ctx, req)
		return err
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	created := *entry
	created.ID = page.ID.String()
	created.CreatedAt = page.CreatedTime
	created.UpdatedAt = page.LastEditedTime
	return &created, nil
}

func (nr *notionRepository) Ping(ctx context.Context) error {
	return nr.breaker.Call(ctx, func(ctx context.Context) error {
		_, err := nr.client.Database.Get(ctx, nr.databaseID)
		return err
	})
}

func (nr *notionRepository) query(ctx context.Context, filter any) ([]notionapi.Page, error) {
	var pages []notionapi.Page

	err := nr.breaker.Call(ctx, func(ctx context.Context) error {
		resp, err := nr.querier.Query(ctx, nr.databaseID, databaseQuery{
			Filter:   filter,
			PageSize: 1,
		})
		if err != nil {
			return err
		}
		pages = resp.Results
		return nil
	})

	return pages, err
}

func entryProperties(entry *models.WaitlistEntry) notionapi.Properties {
	props := notionapi.Properties{
		NotionPropName: notionapi.TitleProperty{
			Title: richText(entry.Name),
		},
		NotionPropEmail: notionapi.EmailProperty{
			Email: entry.Email,
		},
		NotionPropReferralCode: notionapi.RichTextProperty{
			RichText: richText(entry.ReferralCode),
		},
	}

	if entry.ReferredByCode != nil && *entry.ReferredByCode != "" {
		props[NotionPropReferredByCode] = notionapi.RichTextProperty{
			RichText: richText(*entry.ReferredByCode),
		}
	}
	if entry.ReferrerID != nil && *entry.ReferrerID != "" {
		props[NotionPropReferrer] = notionapi.RelationProperty{
			Relation: []notionapi.Relation{{ID: notionapi.PageID(*entry.ReferrerID)}},
		}
	}

	return props
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}}
}

func pageToEntry(page *notionapi.Page) *models.WaitlistEntry {
	entry := &models.WaitlistEntry{
		ID:        page.ID.String(),
		CreatedAt: page.CreatedTime,
		UpdatedAt: page.LastEditedTime,
	}

	for name, prop := range page.Properties {
		switch name {
		case NotionPropName:
			entry.Name = plainText(prop)
		case NotionPropEmail:
			entry.Email = plainText(prop)
		case NotionPropReferralCode:
			entry.ReferralCode = plainText(prop)
		case NotionPropReferredByCode:
			if code := plainText(prop); code != "" {
				entry.ReferredByCode = &code
			}
		case NotionPropReferrer:
			if id := firstRelation(prop); id != "" {
				entry.ReferrerID = &id
			}
		}
	}

	return entry
}

func plainText(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return joinRichText(p.Title)
	case *notionapi.RichTextProperty:
		return joinRichText(p.RichText)
	case *notionapi.EmailProperty:
		return p.Email
	}
	return ""
}

func joinRichText(parts []notionapi.RichText) string {
	var sb strings.Builder
	for _, part := range parts {
		if part.PlainText != "" {
			sb.WriteString(part.PlainText)
		} else if part.Text != nil {
			sb.WriteString(part.Text.Content)
		}
	}
	return sb.String()
}

func firstRelation(prop notionapi.Property) string {
	if p, ok := prop.(*notionapi.RelationProperty); ok && len(p.Relation) > 0 {
		return p.Relation[0].ID.String()
	}
	return ""
}
