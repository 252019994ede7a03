package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/cache"
	"github.com/richard-senior/podds/pkg/engine"
	"github.com/richard-senior/podds/pkg/store"
	"github.com/richard-senior/podds/pkg/transport"
)

const (
	periodTTL  = 10 * time.Minute
	historyTTL = 6 * time.Hour
)

// Datasource retrieves pool periods, coupon fixtures and match histories
// from the score feed. An optional redis cache sits in front of every
// remote call; cache outages degrade to direct fetch.
type Datasource struct {
	BaseURL string
	Cache   *cache.RedisCache

	// fetch is swapped in tests that exercise the cache fallback path
	fetch func(url string, v interface{}) error

	lastPeriod string
}

// New returns a datasource against the given feed base URL. The cache
// may be nil.
func New(baseURL string, c *cache.RedisCache) *Datasource {
	return &Datasource{
		BaseURL: baseURL,
		Cache:   c,
		fetch:   transport.GetJSON,
	}
}

func (ds *Datasource) cacheGet(ctx context.Context, key string, v interface{}) bool {
	if ds.Cache == nil {
		return false
	}
	hit, err := ds.Cache.GetJSON(ctx, key, v)
	if err != nil {
		logger.Warn("cache read failed, fetching directly", key, err)
		return false
	}
	return hit
}

func (ds *Datasource) cacheSet(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if ds.Cache == nil {
		return
	}
	if err := ds.Cache.SetJSON(ctx, key, v, ttl); err != nil {
		logger.Warn("cache write failed", key, err)
	}
}

// CurrentPeriod resolves the pool period currently on sale. When the
// remote endpoint fails, the last period this process resolved is
// reused so a scheduled run can still operate on stale data.
func (ds *Datasource) CurrentPeriod(ctx context.Context) (string, error) {
	var period string
	if ds.cacheGet(ctx, "period:current", &period) && period != "" {
		return period, nil
	}

	var resp infoResponse
	url := fmt.Sprintf("%s/score/zq/info?vtype=sfc&_t=%d", ds.BaseURL, time.Now().UnixMilli())
	if err := ds.fetch(url, &resp); err != nil {
		if ds.lastPeriod != "" {
			logger.Warn("period endpoint failed, using last known period", ds.lastPeriod, err)
			return ds.lastPeriod, nil
		}
		return "", fmt.Errorf("failed to resolve current period: %w", err)
	}

	period = resp.Data.CurrentPeriod
	if period == "" {
		return "", fmt.Errorf("period endpoint returned no current period")
	}

	ds.lastPeriod = period
	ds.cacheSet(ctx, "period:current", period, periodTTL)
	logger.Info("Resolved current period", period)
	return period, nil
}

// Fixtures fetches the coupon for a period and returns unpredicted
// fixtures ready to persist
func (ds *Datasource) Fixtures(ctx context.Context, period string) ([]*store.Fixture, error) {
	var resp infoResponse
	cacheKey := "coupon:" + period
	if !ds.cacheGet(ctx, cacheKey, &resp) {
		url := fmt.Sprintf("%s/score/zq/info?vtype=sfc&expect=%s&_t=%d", ds.BaseURL, period, time.Now().UnixMilli())
		if err := ds.fetch(url, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch coupon for period %s: %w", period, err)
		}
		ds.cacheSet(ctx, cacheKey, resp, periodTTL)
	}

	if len(resp.Data.MatchList) == 0 {
		return nil, fmt.Errorf("coupon for period %s contains no fixtures", period)
	}

	fixtures := make([]*store.Fixture, 0, len(resp.Data.MatchList))
	for _, row := range resp.Data.MatchList {
		if row.FID == "" {
			logger.Warn("coupon row without fixture id, skipping", row.HomeName, row.AwayName)
			continue
		}
		f := store.NewFixture(period, row.FID, "", "")
		f.HomeName = row.HomeName
		f.AwayName = row.AwayName
		f.KickOff = row.MatchTime
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// resolveTeamIDs fills in the feed's numeric team ids for a fixture
func (ds *Datasource) resolveTeamIDs(ctx context.Context, f *store.Fixture) error {
	var resp baseInfoResponse
	cacheKey := "baseinfo:" + f.FixtureID
	if !ds.cacheGet(ctx, cacheKey, &resp) {
		url := fmt.Sprintf("%s/zqscore/zq/baseinfo?fid=%s", ds.BaseURL, f.FixtureID)
		if err := ds.fetch(url, &resp); err != nil {
			return fmt.Errorf("failed to fetch base info for fixture %s: %w", f.FixtureID, err)
		}
		ds.cacheSet(ctx, cacheKey, resp, historyTTL)
	}

	if resp.Data.HomeID == "" || resp.Data.AwayID == "" {
		return fmt.Errorf("fixture %s has no team ids", f.FixtureID)
	}
	f.HomeID = resp.Data.HomeID
	f.AwayID = resp.Data.AwayID
	return nil
}

// History fetches both sides' recent records for a fixture and converts
// them to engine records. Duplicate rows (a match appearing in both
// sides' lists) collapse to one.
func (ds *Datasource) History(ctx context.Context, f *store.Fixture) ([]engine.MatchRecord, error) {
	if f.HomeID == "" || f.AwayID == "" {
		if err := ds.resolveTeamIDs(ctx, f); err != nil {
			return nil, err
		}
	}

	matchDate := f.KickOff
	if len(matchDate) > 10 {
		matchDate = matchDate[:10]
	}

	var resp recordResponse
	cacheKey := fmt.Sprintf("history:%s:%s:%s", f.HomeID, f.AwayID, matchDate)
	if !ds.cacheGet(ctx, cacheKey, &resp) {
		url := fmt.Sprintf("%s/zqscore/zq/recent_record?homeid=%s&awayid=%s&matchdate=%s&leagueid=-1&limit=20&hoa=0&vtype=num",
			ds.BaseURL, f.HomeID, f.AwayID, matchDate)
		if err := ds.fetch(url, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch history for fixture %s: %w", f.FixtureID, err)
		}
		ds.cacheSet(ctx, cacheKey, resp, historyTTL)
	}

	seen := map[string]bool{}
	var records []engine.MatchRecord
	for _, row := range append(resp.Data.Home.Matches, resp.Data.Away.Matches...) {
		rec := row.toRecord()
		if err := rec.Validate(); err != nil {
			logger.Warn("dropping malformed history row", err)
			continue
		}
		key := rec.HomeID + "|" + rec.AwayID + "|" + row.MatchDate
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, rec)
	}
	return records, nil
}

// FetchPeriod resolves the current period, retrieves its coupon, and
// persists unpredicted fixtures and their histories. Per-fixture
// failures are logged and skipped so one dead feed row cannot sink the
// whole run.
func (ds *Datasource) FetchPeriod(ctx context.Context) (string, []*store.Fixture, error) {
	period, err := ds.CurrentPeriod(ctx)
	if err != nil {
		return "", nil, err
	}

	fixtures, err := ds.Fixtures(ctx, period)
	if err != nil {
		return period, nil, err
	}

	for _, f := range fixtures {
		records, err := ds.History(ctx, f)
		if err != nil {
			logger.Error("skipping fixture history", f.FixtureID, err)
			continue
		}
		batch := make([]store.Persistable, 0, len(records))
		for _, rec := range records {
			batch = append(batch, store.FromRecord(rec))
		}
		if err := store.BulkSave(batch); err != nil {
			logger.Error("failed to persist history", f.FixtureID, err)
		}
	}
	return period, fixtures, nil
}
