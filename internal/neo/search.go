package neo

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-impact-sim/internal/models"
)

const (
	dateLayout = "2006-01-02"

	// NeoWs feed requests may span at most seven days.
	maxFeedDays = 7

	maxSearchPages = 50
	maxFeedWorkers = 4
)

// FeedDay is the set of objects NeoWs lists for one approach date.
type FeedDay struct {
	Date      string
	Asteroids []*models.Asteroid
}

// Feed returns objects approaching between start and end inclusive, one
// entry per date in ascending order. Ranges longer than a week are split
// into week windows fetched concurrently.
func (c *Client) Feed(ctx context.Context, start, end time.Time) ([]FeedDay, error) {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return nil, models.Invalid("end_date", "must not be before start_date")
	}

	windows := feedWindows(start, end)
	results := make([]map[string][]*models.Asteroid, len(windows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFeedWorkers)
	for i, w := range windows {
		g.Go(func() error {
			days, err := c.feedWindow(ctx, w[0], w[1])
			if err != nil {
				return err
			}
			results[i] = days
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string][]*models.Asteroid)
	for _, days := range results {
		for date, asteroids := range days {
			merged[date] = append(merged[date], asteroids...)
		}
	}

	out := make([]FeedDay, 0, len(merged))
	for date, asteroids := range merged {
		out = append(out, FeedDay{Date: date, Asteroids: asteroids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (c *Client) feedWindow(ctx context.Context, start, end time.Time) (map[string][]*models.Asteroid, error) {
	params := url.Values{
		"start_date": {start.Format(dateLayout)},
		"end_date":   {end.Format(dateLayout)},
	}

	var resp feedResponse
	if err := c.get(ctx, "feed", "feed", params, &resp); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	days := make(map[string][]*models.Asteroid, len(resp.NearEarthObjects))
	for date, objects := range resp.NearEarthObjects {
		for _, raw := range objects {
			a, err := Parse(raw, now)
			if err != nil {
				slog.Warn("failed to parse NEO feed entry", "date", date, "error", err)
				continue
			}
			days[date] = append(days[date], a)
		}
	}
	return days, nil
}

// feedWindows splits [start, end] into inclusive windows of at most
// maxFeedDays days.
func feedWindows(start, end time.Time) [][2]time.Time {
	var windows [][2]time.Time
	for from := start; !from.After(end); from = from.AddDate(0, 0, maxFeedDays) {
		to := from.AddDate(0, 0, maxFeedDays-1)
		if to.After(end) {
			to = end
		}
		windows = append(windows, [2]time.Time{from, to})
	}
	return windows
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Search walks catalogue pages collecting objects that match filter until
// filter.Limit matches are found, the catalogue ends, or maxSearchPages
// pages were read. A failure on the first page is returned; later failures
// end the walk with what was collected.
func (c *Client) Search(ctx context.Context, filter models.AsteroidFilter) ([]*models.Asteroid, error) {
	limit := models.ClampLimit(filter.Limit)
	matches := make([]*models.Asteroid, 0, limit)

	for page := 0; page < maxSearchPages && len(matches) < limit; page++ {
		p, err := c.Browse(ctx, page, MaxPageSize)
		if err != nil {
			if page == 0 || errors.Is(err, context.Canceled) {
				return nil, err
			}
			slog.Error("error fetching NEO page, stopping search", "page", page, "error", err)
			break
		}
		if len(p.Asteroids) == 0 {
			break
		}
		for _, a := range p.Asteroids {
			if filter.Matches(a) {
				matches = append(matches, a)
				if len(matches) == limit {
					break
				}
			}
		}
		if p.TotalPages > 0 && page+1 >= p.TotalPages {
			break
		}
	}
	return matches, nil
}

// CloseApproaches lists objects approaching Earth from today through
// daysAhead days out, nearest miss distance first.
func (c *Client) CloseApproaches(ctx context.Context, daysAhead int) ([]models.ApproachInfo, error) {
	if daysAhead < 1 {
		return nil, models.Invalid("days_ahead", "must be at least 1")
	}
	today := truncateDay(c.clock.Now())
	days, err := c.Feed(ctx, today, today.AddDate(0, 0, daysAhead))
	if err != nil {
		return nil, err
	}

	out := make([]models.ApproachInfo, 0)
	for _, day := range days {
		for _, a := range day.Asteroids {
			out = append(out, approachInfo(a, day.Date))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortDistance(out[i]) < sortDistance(out[j])
	})
	return out, nil
}

// sortDistance orders objects without approach data last.
func sortDistance(info models.ApproachInfo) float64 {
	if len(info.Asteroid.CloseApproaches) == 0 {
		return math.Inf(1)
	}
	return info.ClosestApproachKm
}

func approachInfo(a *models.Asteroid, date string) models.ApproachInfo {
	info := models.ApproachInfo{
		Asteroid:     *a,
		ApproachDate: date,
	}
	for i, ca := range a.CloseApproaches {
		if i == 0 {
			info.RelativeVelocityKms = ca.VelocityKms
			info.ClosestApproachKm = ca.DistanceKm
			continue
		}
		info.ClosestApproachKm = math.Min(info.ClosestApproachKm, ca.DistanceKm)
	}
	return info
}
