package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hktran/coursegrab/internal/config"
	"github.com/hktran/coursegrab/internal/domain"
	"github.com/hktran/coursegrab/internal/logger"
	"github.com/hktran/coursegrab/internal/repository"
	"github.com/hktran/coursegrab/internal/scraper"
	"github.com/hktran/coursegrab/internal/sender"
)

// App represents the main application with all dependencies initialized
type App struct {
	Log     zerolog.Logger
	Config  *domain.Config
	Repo    *repository.FileRepository
	Scraper scraper.Service
	Sender  sender.Service
}

// NewApp creates a new application instance with all dependencies initialized
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)

	repo := repository.NewFileRepository(log)

	client := scraper.NewHTTPClient(cfg)
	extractor, err := scraper.NewExtractor(log, cfg, client, repo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build extractor")
	}

	return &App{
		Log:     log,
		Config:  cfg,
		Repo:    repo,
		Scraper: scraper.NewService(log, cfg, extractor, repo, repo),
		Sender:  sender.NewService(log, cfg.DownloadManager, cfg.DestinationPath),
	}, nil
}

// RunScrape executes one scrape run and reports the outcome.
func (a *App) RunScrape(ctx context.Context) error {
	summary, err := a.Scraper.Run(ctx)
	if err != nil {
		return err
	}

	if len(summary.Records) == 0 {
		a.Log.Warn().Msg("no videos were extracted")
		return nil
	}

	a.Log.Info().
		Str("path", a.Config.OutputPath).
		Int("count", len(summary.Records)).
		Msg("download links saved")
	return nil
}

// Links loads the link-list artifact for the consumer commands.
func (a *App) Links(ctx context.Context) ([]domain.DownloadEntry, error) {
	entries, err := a.Repo.GetLinkList(ctx, a.Config.OutputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load link list")
	}
	if len(entries) == 0 {
		return nil, errors.Errorf("no download links found in %s", a.Config.OutputPath)
	}
	return entries, nil
}
