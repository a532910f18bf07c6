package main

import (
	"fmt"
	"log/slog"
	"strings"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/config"
	"shortfactory/internal/dashboard"
	"shortfactory/internal/logging"
	"shortfactory/internal/metrics"
	"shortfactory/internal/notifications"
	"shortfactory/internal/orchestrator"
	"shortfactory/internal/resilience"
	"shortfactory/internal/secrets"
	"shortfactory/internal/services/llm"
	"shortfactory/internal/services/publish"
	"shortfactory/internal/services/stockfootage"
	"shortfactory/internal/services/trend"
	"shortfactory/internal/services/tts"
	"shortfactory/internal/services/videoassembly"
	svc "shortfactory/internal/services/captioning"
	"shortfactory/internal/stage"
	"shortfactory/internal/stagecatalog"
	"shortfactory/internal/stages/approval"
	"shortfactory/internal/stages/assembly"
	"shortfactory/internal/stages/captioning"
	"shortfactory/internal/stages/clipsourcing"
	"shortfactory/internal/stages/ideation"
	"shortfactory/internal/stages/metadata"
	"shortfactory/internal/stages/narration"
	"shortfactory/internal/stages/publishing"
	"shortfactory/internal/stages/scripting"
	"shortfactory/internal/stages/trendingest"
	"shortfactory/internal/scheduler"
	"shortfactory/internal/statestore"
)

// application bundles every long-lived collaborator the CLI commands
// share, closed together by Close once a command's RunE returns. This is
// the equivalent of five82-spindle's daemon_run.go inlining store/logger
// construction, factored out so every subcommand (not just run-loop) can
// reuse the same wiring.
type application struct {
	cfg          *config.Config
	logger       *slog.Logger
	items        *statestore.Store
	artifacts    *artifactstore.Store
	dashboard    *dashboard.Adapter
	resilience   *resilience.Manager
	metrics      *metrics.Registry
	notifier     notifications.Service
	orchestrator *orchestrator.Orchestrator
}

func (a *application) Close() error {
	return a.orchestrator.Close()
}

func maxAttemptsFor(name string) int {
	decl, ok := stagecatalog.Lookup(name)
	if !ok {
		return 1
	}
	return decl.MaxAttempts
}

func buildApplication(cfg *config.Config) (*application, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	items, err := statestore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open item store: %w", err)
	}

	artifacts, err := artifactstore.Open(cfg.Paths.ArtifactRoot)
	if err != nil {
		_ = items.Close()
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	res, err := resilience.NewManager(cfg.Resilience, cfg.Paths.StateDir, logger)
	if err != nil {
		_ = items.Close()
		return nil, fmt.Errorf("init resilient call layer: %w", err)
	}

	metricsRegistry := metrics.New()
	res.SetMetrics(metricsRegistry)

	credentials := secrets.NewManager(cfg.Paths.CredentialDir, logger)

	dashboardToken, err := readOptionalCredential(credentials, cfg.Dashboard.CredentialsPath)
	if err != nil {
		_ = items.Close()
		return nil, fmt.Errorf("read dashboard credential: %w", err)
	}
	dashAdapter := dashboard.New(dashboard.NewHTTPStore(cfg.Dashboard, dashboardToken))

	notifier := notifications.NewService(cfg)

	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.TextGen.APIKey,
		BaseURL:        cfg.TextGen.BaseURL,
		Model:          cfg.TextGen.Model,
		Referer:        cfg.TextGen.Referer,
		Title:          cfg.TextGen.Title,
		TimeoutSeconds: cfg.TextGen.TimeoutSeconds,
	})
	ttsClient := tts.NewClient(tts.Config{
		APIKey:         cfg.TTS.APIKey,
		VoiceID:        cfg.TTS.Voice,
		TimeoutSeconds: cfg.TTS.TimeoutSeconds,
	})
	stockClient := stockfootage.NewClient(stockfootage.Config{
		APIKey:         cfg.StockSearch.APIKey,
		TimeoutSeconds: cfg.StockSearch.TimeoutSeconds,
	})
	assemblyClient := videoassembly.NewClient(videoassembly.Config{})
	captionClient := svc.NewClient(svc.Config{})

	publishToken, err := readOptionalCredential(credentials, cfg.Publishing.CredentialsPath)
	if err != nil {
		_ = items.Close()
		return nil, fmt.Errorf("read publishing credential: %w", err)
	}
	publishClient := publish.NewClient(publish.Config{
		AccessToken:    publishToken,
		PrivacyStatus:  cfg.Publishing.Privacy,
		CategoryID:     cfg.Publishing.CategoryID,
		MadeForKids:    cfg.Publishing.MadeForKids,
		TimeoutSeconds: cfg.Publishing.TimeoutSeconds,
	})

	handlers := map[string]stage.Handler{
		"approval":     approval.New(dashAdapter, res),
		"scripting":    scripting.New(llmClient, artifacts, res, maxAttemptsFor("scripting")),
		"narration":    narration.New(ttsClient, artifacts, res, maxAttemptsFor("narration")),
		"clipsourcing": clipsourcing.New(stockClient, artifacts, res, maxAttemptsFor("clipsourcing")),
		"assembly":     assembly.New(assemblyClient, artifacts, res, maxAttemptsFor("assembly")),
		"captioning":   captioning.New(captionClient, artifacts, res, maxAttemptsFor("captioning")),
		"metadata":     metadata.New(llmClient, artifacts, res, maxAttemptsFor("metadata")),
		"publishing":   publishing.New(publishClient, res, maxAttemptsFor("publishing")),
	}

	sched := scheduler.New(items, dashAdapter, artifacts, res, notifier, logger, handlers, cfg.StagePool, cfg.Workflow)
	sched.SetMetrics(metricsRegistry)

	producers := buildProducers(cfg, llmClient, res)

	orch, err := orchestrator.New(cfg, items, dashAdapter, artifacts, res, sched, producers, notifier, logger)
	if err != nil {
		_ = items.Close()
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}

	return &application{
		cfg:          cfg,
		logger:       logger,
		items:        items,
		artifacts:    artifacts,
		dashboard:    dashAdapter,
		resilience:   res,
		metrics:      metricsRegistry,
		notifier:     notifier,
		orchestrator: orch,
	}, nil
}

// producerMaxAttempts bounds retries for the two producers, which sit
// outside the stage registry and so have no stagecatalog.Declaration of
// their own to borrow a MaxAttempts from.
const producerMaxAttempts = 3

func buildProducers(cfg *config.Config, llmClient *llm.Client, res *resilience.Manager) []orchestrator.ConceptProducer {
	producers := []orchestrator.ConceptProducer{
		orchestrator.NewIdeationProducer(ideation.New(llmClient, res, producerMaxAttempts)),
	}

	if !cfg.TrendIngest.Enabled {
		return producers
	}

	subreddits := splitAndTrim(cfg.TrendIngest.Subreddit)
	if len(subreddits) == 0 {
		return producers
	}

	trendClient := trend.NewClient(trend.Config{TimeoutSeconds: cfg.TrendIngest.TimeoutSeconds})
	producers = append(producers, orchestrator.NewTrendProducer(
		trendingest.New(trendClient, res, producerMaxAttempts, subreddits),
	))
	return producers
}

func splitAndTrim(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func readOptionalCredential(mgr *secrets.Manager, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil
	}
	return mgr.ReadToken(name)
}
