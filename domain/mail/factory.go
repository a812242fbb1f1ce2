package mail

import (
	"github.com/akeren/waitlist-api/config/router"
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/pkg/mailer"
)

type MailServiceFactory interface {
	CreateService() MailService
	CreateController() *router.RESTController
}

type DefaultMailServiceFactory struct {
	mailer   mailer.Mailer
	settings Settings
	logger   *log.Logger
}

func NewMailServiceFactory(m mailer.Mailer, settings Settings, logger *log.Logger) MailServiceFactory {
	return &DefaultMailServiceFactory{
		mailer:   m,
		settings: settings,
		logger:   logger,
	}
}

func (f *DefaultMailServiceFactory) CreateService() MailService {
	return NewMailService(f.logger, f.mailer, f.settings)
}

func (f *DefaultMailServiceFactory) CreateController() *router.RESTController {
	return NewMailController(f.CreateService())
}
