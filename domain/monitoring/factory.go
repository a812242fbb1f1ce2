package monitoring

import (
	"github.com/akeren/waitlist-api/config/router"
	"github.com/akeren/waitlist-api/internal/log"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	store  Pinger
	cache  Pinger
	logger *log.Logger
}

func NewMonitoringControllerFactory(store Pinger, cache Pinger, logger *log.Logger) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.store, f.cache, f.logger)
}
