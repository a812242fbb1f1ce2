package domain

import (
	"github.com/akeren/waitlist-api/config"
	"github.com/akeren/waitlist-api/domain/mail"
	"github.com/akeren/waitlist-api/domain/monitoring"
	"github.com/akeren/waitlist-api/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	var notionQuerier *waitlist.NotionQuerier
	if appConfig.Notion != nil {
		notionQuerier = waitlist.NewNotionQuerier(appConfig.NotionToken, appConfig.NotionHTTPClient, "")
	}

	waitlistFactory := waitlist.NewWaitlistServiceFactory(waitlist.Dependencies{
		Notion:           appConfig.Notion,
		NotionQuerier:    notionQuerier,
		NotionDatabaseID: appConfig.NotionDatabaseID,
		DB:               appConfig.DB,
		Cache:            appConfig.Cache,
		Logger:           appConfig.Logger,
	})

	mailFactory := mail.NewMailServiceFactory(appConfig.Mailer, mail.Settings{
		From:    appConfig.Config.Mail.From,
		Subject: appConfig.Config.Mail.Subject,
	}, appConfig.Logger)

	monitoringFactory := monitoring.NewMonitoringControllerFactory(
		waitlistFactory.CreateRepository(),
		appConfig.Cache,
		appConfig.Logger,
	)

	appConfig.RouterService.MountController(monitoringFactory.CreateController())
	appConfig.RouterService.MountController(mailFactory.CreateController())
	appConfig.RouterService.MountController(waitlistFactory.CreateController())
}
