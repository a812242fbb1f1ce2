package waitlist

import (
	"github.com/akeren/waitlist-api/config/router"
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/jomei/notionapi"
	"gorm.io/gorm"
)

// Dependencies selects the store: Notion when a client is set, SQL otherwise.
type Dependencies struct {
	Notion           *notionapi.Client
	NotionQuerier    *NotionQuerier
	NotionDatabaseID string
	DB               *gorm.DB
	Cache            ReferralCache
	Logger           *log.Logger
	ServiceOptions   []ServiceOption
}

type WaitlistServiceFactory interface {
	CreateRepository() WaitlistRepository
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	deps       Dependencies
	repository WaitlistRepository
}

func NewWaitlistServiceFactory(deps Dependencies) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{deps: deps}
}

// CreateRepository returns the same instance on every call so the Notion
// circuit breaker is shared.
func (f *DefaultWaitlistServiceFactory) CreateRepository() WaitlistRepository {
	if f.repository != nil {
		return f.repository
	}

	var repository WaitlistRepository
	if f.deps.Notion != nil {
		repository = NewNotionRepository(f.deps.Notion, f.deps.NotionQuerier, f.deps.NotionDatabaseID, nil)
	} else {
		repository = NewWaitlistRepository(f.deps.DB)
	}

	f.repository = NewCachedRepository(repository, f.deps.Cache, f.deps.Logger)
	return f.repository
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	return NewWaitlistService(f.deps.Logger, f.CreateRepository(), f.deps.ServiceOptions...)
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.CreateService())
}
