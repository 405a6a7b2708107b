package domain

// SeasonCursor maps sequential video identifiers onto (season, episode)
// positions using a per-season episode-count table. It advances once per
// processed identifier, whether or not extraction succeeded, because it
// tracks page position rather than success count.
type SeasonCursor struct {
	Season  int
	Episode int

	episodes []int
}

// NewSeasonCursor creates a cursor positioned at the given starting season
// and episode. Season and episode are 1-based; episodes[0] is season 1.
func NewSeasonCursor(episodes []int, startSeason, startEpisode int) *SeasonCursor {
	table := make([]int, len(episodes))
	copy(table, episodes)
	return &SeasonCursor{
		Season:   startSeason,
		Episode:  startEpisode,
		episodes: table,
	}
}

// Advance moves the cursor one episode forward, rolling over into the next
// season when the current season's episode count is exceeded. It returns
// false once the season table is exhausted; no further identifiers may be
// processed after that.
func (c *SeasonCursor) Advance() bool {
	if c.Season > len(c.episodes) {
		return false
	}

	c.Episode++
	if c.Episode > c.episodes[c.Season-1] {
		c.Episode = 1
		c.Season++
		if c.Season > len(c.episodes) {
			return false
		}
	}
	return true
}
