package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hktran/coursegrab/internal/domain"
)

// defaultUserAgent mimics a desktop Chrome browser; course sites tend to
// serve stripped-down pages to unknown clients.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/127.0.0.0 Safari/537.36"

func setDefaults() {
	viper.SetDefault("output_path", "download_links.txt")
	viper.SetDefault("report_path", "scrape_report.yaml")
	viper.SetDefault("min_delay_seconds", 3.0)
	viper.SetDefault("max_delay_seconds", 7.0)
	viper.SetDefault("retry_min_seconds", 2.0)
	viper.SetDefault("retry_max_seconds", 4.0)
	viper.SetDefault("timeout_retry_min_seconds", 5.0)
	viper.SetDefault("timeout_retry_max_seconds", 8.0)
	viper.SetDefault("request_timeout_seconds", 120.0)
	viper.SetDefault("max_retries", 3)
	viper.SetDefault("starting_season", 1)
	viper.SetDefault("starting_episode", 1)
	viper.SetDefault("user_agent", defaultUserAgent)
	viper.SetDefault("title_selectors", []string{"h1"})
	viper.SetDefault("filename_format", "S%02d-E%02d-%s.mp4")
	viper.SetDefault("filename_replace_chars", map[string]string{
		`\`: "_", "/": "_", ":": "_", "*": "_",
		"?": "_", `"`: "_", "<": "_", ">": "_", "|": "_",
	})
	viper.SetDefault("min_html_length", 1000)
	viper.SetDefault("debug_html", false)
	viper.SetDefault("debug_html_format", "debug_%d.html")
	viper.SetDefault("download_manager", "idman")
	viper.SetDefault("destination_path", ".")
	viper.SetDefault("log_level", "info")
}

// Load builds the configuration from viper (config file, COURSEGRAB_*
// environment variables, and flags bound by the CLI) and validates it.
func Load() (*domain.Config, error) {
	setDefaults()

	cfg := &domain.Config{
		BaseURL:         viper.GetString("base_url"),
		StartVideoID:    viper.GetInt("start_video_id"),
		EndVideoID:      viper.GetInt("end_video_id"),
		SeasonEpisodes:  viper.GetIntSlice("season_episodes"),
		StartingSeason:  viper.GetInt("starting_season"),
		StartingEpisode: viper.GetInt("starting_episode"),

		OutputPath: viper.GetString("output_path"),
		ReportPath: viper.GetString("report_path"),

		MinDelay:             seconds(viper.GetFloat64("min_delay_seconds")),
		MaxDelay:             seconds(viper.GetFloat64("max_delay_seconds")),
		RetryMinDelay:        seconds(viper.GetFloat64("retry_min_seconds")),
		RetryMaxDelay:        seconds(viper.GetFloat64("retry_max_seconds")),
		TimeoutRetryMinDelay: seconds(viper.GetFloat64("timeout_retry_min_seconds")),
		TimeoutRetryMaxDelay: seconds(viper.GetFloat64("timeout_retry_max_seconds")),
		RequestTimeout:       seconds(viper.GetFloat64("request_timeout_seconds")),
		MaxRetries:           viper.GetInt("max_retries"),

		AuthCookies: viper.GetStringMapString("auth_cookies"),
		UserAgent:   viper.GetString("user_agent"),

		URLPatterns:    viper.GetStringSlice("url_patterns"),
		TitleSelectors: viper.GetStringSlice("title_selectors"),

		FilenameFormat:       viper.GetString("filename_format"),
		FilenameReplaceChars: viper.GetStringMapString("filename_replace_chars"),

		MinHTMLLength:   viper.GetInt("min_html_length"),
		DebugHTML:       viper.GetBool("debug_html"),
		DebugHTMLFormat: viper.GetString("debug_html_format"),

		DownloadManager: viper.GetString("download_manager"),
		DestinationPath: viper.GetString("destination_path"),

		LogLevel: viper.GetString("log_level"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func validate(cfg *domain.Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required (set via config.yaml or COURSEGRAB_BASE_URL)")
	}
	if cfg.StartVideoID <= 0 {
		return fmt.Errorf("start_video_id must be positive, got %d", cfg.StartVideoID)
	}
	if cfg.EndVideoID < cfg.StartVideoID {
		return fmt.Errorf("end_video_id %d is before start_video_id %d", cfg.EndVideoID, cfg.StartVideoID)
	}
	if len(cfg.SeasonEpisodes) == 0 {
		return fmt.Errorf("season_episodes is required (episode count per season, e.g. [19, 6, 10])")
	}
	for i, n := range cfg.SeasonEpisodes {
		if n <= 0 {
			return fmt.Errorf("season_episodes[%d] must be positive, got %d", i, n)
		}
	}
	if cfg.StartingSeason < 1 || cfg.StartingSeason > len(cfg.SeasonEpisodes) {
		return fmt.Errorf("starting_season %d is outside the %d-season table", cfg.StartingSeason, len(cfg.SeasonEpisodes))
	}
	if cfg.StartingEpisode < 1 || cfg.StartingEpisode > cfg.SeasonEpisodes[cfg.StartingSeason-1] {
		return fmt.Errorf("starting_episode %d is outside season %d (%d episodes)",
			cfg.StartingEpisode, cfg.StartingSeason, cfg.SeasonEpisodes[cfg.StartingSeason-1])
	}
	if cfg.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", cfg.MaxRetries)
	}
	if cfg.MinDelay > cfg.MaxDelay {
		return fmt.Errorf("min_delay_seconds exceeds max_delay_seconds")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	if len(cfg.URLPatterns) == 0 {
		return fmt.Errorf("url_patterns is required (ordered regexps matching the media URL)")
	}
	if cfg.FilenameFormat == "" {
		return fmt.Errorf("filename_format must not be empty")
	}
	return nil
}
