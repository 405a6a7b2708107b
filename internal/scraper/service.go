package scraper

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hktran/coursegrab/internal/domain"
)

// Service drives one scrape run over the configured identifier range.
type Service interface {
	Run(ctx context.Context) (*domain.ScrapeSummary, error)
}

type service struct {
	log        zerolog.Logger
	cfg        *domain.Config
	extractor  Extractor
	linkRepo   domain.LinkListRepository
	reportRepo domain.ReportRepository
	rng        *rand.Rand
}

// NewService creates the scrape orchestrator.
func NewService(log zerolog.Logger, cfg *domain.Config, extractor Extractor, linkRepo domain.LinkListRepository, reportRepo domain.ReportRepository) Service {
	return &service{
		log:        log.With().Str("module", "scraper").Logger(),
		cfg:        cfg,
		extractor:  extractor,
		linkRepo:   linkRepo,
		reportRepo: reportRepo,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run walks the identifier range in ascending order, fetching each page and
// advancing the season/episode cursor once per identifier whether or not
// extraction succeeded. The accumulated records are flushed to the link-list
// artifact once, at the end of the run.
func (s *service) Run(ctx context.Context) (*domain.ScrapeSummary, error) {
	summary := &domain.ScrapeSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	log := s.log.With().Str("run_id", summary.RunID).Logger()
	log.Info().
		Int("start_id", s.cfg.StartVideoID).
		Int("end_id", s.cfg.EndVideoID).
		Ints("season_episodes", s.cfg.SeasonEpisodes).
		Msg("starting scrape run")

	cursor := domain.NewSeasonCursor(s.cfg.SeasonEpisodes, s.cfg.StartingSeason, s.cfg.StartingEpisode)

	for videoID := s.cfg.StartVideoID; videoID <= s.cfg.EndVideoID; videoID++ {
		info, err := s.extractor.FetchVideo(ctx, videoID)
		if err != nil {
			if ctx.Err() != nil {
				return summary, errors.Wrapf(ctx.Err(), "run interrupted with %d records unflushed", len(summary.Records))
			}
			log.Warn().Err(err).
				Int("video_id", videoID).
				Int("season", cursor.Season).
				Int("episode", cursor.Episode).
				Msg("skipping video")
			summary.Failed = append(summary.Failed, domain.FailedVideo{
				VideoID: videoID,
				Season:  cursor.Season,
				Episode: cursor.Episode,
				Reason:  err.Error(),
			})
		} else {
			record := domain.VideoRecord{
				VideoID:  videoID,
				Season:   cursor.Season,
				Episode:  cursor.Episode,
				MediaURL: info.MediaURL,
				Title:    info.Title,
				Filename: domain.BuildFilename(s.cfg.FilenameFormat, cursor.Season, cursor.Episode, info.Title),
			}
			summary.Records = append(summary.Records, record)
			log.Info().Int("video_id", videoID).Str("filename", record.Filename).Msg("found video")
		}

		// The cursor tracks page position, not success count, so it advances
		// for skipped identifiers too.
		if !cursor.Advance() {
			log.Warn().Int("video_id", videoID).Msg("season table exhausted, stopping run early")
			break
		}

		if videoID != s.cfg.EndVideoID {
			delay := jitter(s.rng, s.cfg.MinDelay, s.cfg.MaxDelay)
			log.Debug().Dur("delay", delay).Msg("pausing before next request")
			if err := s.pause(ctx, delay); err != nil {
				return summary, errors.Wrapf(err, "run interrupted with %d records unflushed", len(summary.Records))
			}
		}
	}

	summary.FinishedAt = time.Now().UTC()

	if err := s.linkRepo.StoreLinkList(ctx, s.cfg.OutputPath, summary.Entries()); err != nil {
		return summary, errors.Wrap(err, "failed to store link list")
	}
	if s.cfg.ReportPath != "" {
		if err := s.reportRepo.StoreReport(ctx, s.cfg.ReportPath, summary.Report(s.cfg)); err != nil {
			log.Warn().Err(err).Str("path", s.cfg.ReportPath).Msg("failed to store scrape report")
		}
	}

	log.Info().
		Int("processed", len(summary.Records)+len(summary.Failed)).
		Int("extracted", len(summary.Records)).
		Int("failed", len(summary.Failed)).
		Msg("=== SCRAPE COMPLETE ===")

	return summary, nil
}

func (s *service) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
