package di

import (
	"context"
	"time"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"stackit/internal/ai"
	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/logger"
	"stackit/internal/service"
	"stackit/internal/utils"
)

const shutdownTimeout = 5 * time.Second

// ProvideConfig provides the configuration loaded from .env and the environment.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the zap logger configured by LOG_LEVEL and LOG_FORMAT.
func ProvideLogger(i do.Injector) (*zap.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	log.Debug("logger ready",
		zap.String("backend", cfg.Backend),
		zap.String("level", cfg.Log.Level))
	return log, nil
}

func ProvideMetrics(i do.Injector) (*utils.MetricsCollector, error) {
	return utils.NewMetricsCollector(), nil
}

// StoreHandle wraps the Content Client with shutdown capability.
type StoreHandle struct {
	database.ContentStore
}

// Shutdown implements do.ShutdownerWithError.
func (h *StoreHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Close(ctx)
}

// ProvideStore provides the Content Client selected by STACKIT_BACKEND.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*zap.Logger](i)
	metrics := do.MustInvoke[*utils.MetricsCollector](i)

	store, err := database.New(cfg, log, metrics)
	if err != nil {
		return nil, err
	}
	log.Info("content client ready", zap.String("backend", cfg.Backend))
	return &StoreHandle{ContentStore: store}, nil
}

// AssistantHandle holds the AI helper. Assistant is nil when no API key is configured;
// the services then report every AI call as unavailable.
type AssistantHandle struct {
	Assistant service.Assistant
}

// ProvideAssistant provides the AI helper client.
func ProvideAssistant(i do.Injector) (*AssistantHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*zap.Logger](i)
	metrics := do.MustInvoke[*utils.MetricsCollector](i)

	if cfg.AI.APIKey == "" {
		log.Info("AI helper disabled: GROQ_API_KEY is not set")
		return &AssistantHandle{}, nil
	}
	client, err := ai.NewClient(cfg.AI, log, metrics)
	if err != nil {
		return nil, err
	}
	return &AssistantHandle{Assistant: client}, nil
}

func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	assistant := do.MustInvoke[*AssistantHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewDashboardService(store.ContentStore, assistant.Assistant, log), nil
}

func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewAnalyticsService(store.ContentStore, log), nil
}

func ProvideLeaderboardService(i do.Injector) (*service.LeaderboardService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewLeaderboardService(store.ContentStore, log), nil
}

func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewProfileService(store.ContentStore, log), nil
}

func ProvideTagService(i do.Injector) (*service.TagService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewTagService(store.ContentStore, log), nil
}

func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewNotificationService(store.ContentStore, log), nil
}

func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	assistant := do.MustInvoke[*AssistantHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewSearchService(store.ContentStore, assistant.Assistant, log), nil
}

func ProvideAssistantService(i do.Injector) (*service.AssistantService, error) {
	assistant := do.MustInvoke[*AssistantHandle](i)
	log := do.MustInvoke[*zap.Logger](i)
	return service.NewAssistantService(assistant.Assistant, log), nil
}
