// Package app wires the application's services together.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/drafts"
	"github.com/ternarybob/relist/internal/handlers"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/metrics"
	"github.com/ternarybob/relist/internal/pipeline"
	"github.com/ternarybob/relist/internal/publisher"
	"github.com/ternarybob/relist/internal/services/catalog"
	"github.com/ternarybob/relist/internal/services/events"
	"github.com/ternarybob/relist/internal/services/images"
	"github.com/ternarybob/relist/internal/services/llm"
	"github.com/ternarybob/relist/internal/services/marketplace"
	"github.com/ternarybob/relist/internal/services/orders"
	"github.com/ternarybob/relist/internal/services/scheduler"
	"github.com/ternarybob/relist/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	EventService   interfaces.EventService
	Metrics        *metrics.Collector

	// External collaborators
	CatalogService     interfaces.CatalogService
	MarketplaceService interfaces.MarketplaceService
	ImageService       interfaces.ImageService
	DescriptionService interfaces.DescriptionService

	// Pipeline core
	JobStore     *pipeline.Store
	Broadcaster  *pipeline.Broadcaster
	Orchestrator *pipeline.Orchestrator
	Publisher    *publisher.Publisher
	DraftService *drafts.Service
	OrderCleaner *orders.Cleaner
	Scheduler    *scheduler.Scheduler

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	PipelineHandler *handlers.PipelineHandler
	StreamHandler   *handlers.StreamHandler
	DraftHandler    *handlers.DraftHandler
	SyncHandler     *handlers.SyncHandler
	OrdersHandler   *handlers.OrdersHandler
	WSHandler       *handlers.WebSocketHandler
}

// New creates and wires the application.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	a.EventService = events.NewService(logger)
	a.Metrics = metrics.NewCollector()

	// External collaborators
	a.CatalogService = catalog.NewClient(config.Shopify, catalog.WithLogger(logger))
	a.MarketplaceService = marketplace.NewClient(config.Ebay, marketplace.WithLogger(logger))
	a.ImageService = images.NewClient(config.Images, logger)

	// Non-fatal probe: the pipeline degrades per-job if the image service is
	// down, so startup proceeds either way.
	if err := a.ImageService.Health(context.Background()); err != nil {
		logger.Warn().Err(err).Str("base_url", config.Images.BaseURL).Msg("Image service unreachable at startup")
	}

	descriptionService, err := llm.NewDescriptionService(context.Background(), config, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize description service: %w", err)
	}
	a.DescriptionService = descriptionService

	// Pipeline core
	a.JobStore = pipeline.NewStore(storageManager.JobStorage(), logger)
	a.Broadcaster = pipeline.NewBroadcaster(a.JobStore, config.Pipeline.StreamBufferSize, logger)
	a.Publisher = publisher.New(a.MarketplaceService, storageManager, a.Metrics, logger)
	a.Orchestrator = pipeline.NewOrchestrator(
		a.JobStore,
		a.Broadcaster,
		storageManager,
		a.CatalogService,
		a.DescriptionService,
		a.ImageService,
		a.Publisher,
		a.EventService,
		a.Metrics,
		logger,
	)
	a.DraftService = drafts.NewService(storageManager, a.CatalogService, a.Publisher, a.EventService, a.Metrics, logger)
	a.OrderCleaner = orders.NewCleaner(config.Orders, a.CatalogService, a.Metrics, logger)
	a.Scheduler = scheduler.New(config.Scheduler, a.JobStore, storageManager.RunValueLogGC, logger)

	// HTTP handlers
	a.APIHandler = handlers.NewAPIHandler(a.ImageService, logger)
	a.PipelineHandler = handlers.NewPipelineHandler(a.Orchestrator, a.JobStore, logger)
	a.StreamHandler = handlers.NewStreamHandler(a.Broadcaster, logger)
	a.DraftHandler = handlers.NewDraftHandler(a.DraftService, storageManager.DraftStorage(), logger)
	a.SyncHandler = handlers.NewSyncHandler(storageManager.MappingStorage(), storageManager.SyncLogStorage(), logger)
	a.OrdersHandler = handlers.NewOrdersHandler(a.OrderCleaner, logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, &config.WebSocket, logger)

	if err := a.Scheduler.Start(); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().Msg("Application initialized")
	return a, nil
}

// Close releases application resources in reverse initialization order.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
