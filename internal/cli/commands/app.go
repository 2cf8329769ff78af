package commands

import (
	"fmt"
	"log/slog"

	"github.com/lvyanru/venue-chat/internal/cli/client"
	cliconfig "github.com/lvyanru/venue-chat/internal/cli/config"
	"github.com/lvyanru/venue-chat/internal/cli/ui"
	"github.com/lvyanru/venue-chat/internal/config"
	"github.com/lvyanru/venue-chat/internal/infrastructure/storage"
	"github.com/lvyanru/venue-chat/internal/session"
	"github.com/lvyanru/venue-chat/internal/toolpayload"
	"github.com/lvyanru/venue-chat/pkg/logger"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *client.APIClient
	profiles *cliconfig.ProfileStore
	session  *session.Session
}

// loadApp loads configuration, sets up logging and wires the session
func loadApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if err := logger.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	log := slog.Default()

	apiClient, err := client.NewAPIClient(client.Options{
		ServerURL:           cfg.Server.BaseURL,
		ChatPath:            cfg.Server.ChatPath,
		DialTimeout:         cfg.Server.DialTimeout,
		ResponseTimeout:     cfg.Server.ResponseTimeout,
		MaxIdleConnDuration: cfg.Server.MaxIdleConnDuration,
		GeocoderURL:         cfg.Geocoder.BaseURL,
		Language:            cfg.Geocoder.Language,
		UserAgent:           cfg.Geocoder.UserAgent,
	}, logger.WithComponent(log, "client"))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	profiles := cliconfig.NewProfileStore(cfg.Chat.ProfileFile, logger.WithComponent(log, "profile"))
	store := storage.NewSnapshotRepository(cfg.Chat.SessionFile)

	s := session.New(
		sessionConfig(cfg.Chat),
		apiClient,
		store,
		profiles.Source(),
		logger.WithComponent(log, "session"),
	)

	return &app{
		cfg:      cfg,
		logger:   log,
		client:   apiClient,
		profiles: profiles,
		session:  s,
	}, nil
}

func sessionConfig(c config.ChatConfig) session.Config {
	return session.Config{
		ExpandIncrement:   c.ExpandIncrement,
		LongLinkThreshold: c.LongLinkThreshold,
		ShowMorePrompt:    c.ShowMorePrompt,
		BookPrompt:        c.BookPrompt,
		Repairer: toolpayload.Repairer{
			Marker: c.TruncationMarker,
			Field:  c.ExpandableField,
		},
	}
}

// startupFailed reports a configuration or wiring error
func startupFailed(err error) error {
	ui.PrintErrorBox("Startup Failed", err.Error()+"\n\nCheck ~/.venuectl/config.yaml or pass --config.")
	return fmt.Errorf("startup failed")
}
