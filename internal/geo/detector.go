// Package geo picks a best-guess country for address defaults without asking
// the user. Detection runs an ordered fallback chain (browser timezone,
// locale region, IP geolocation, fixed default) and caches the answer for 24
// hours per visitor.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// DefaultCountry is used when every detection method comes up empty.
const DefaultCountry = "India"

// Signals are the per-request hints the browser sends along.
type Signals struct {
	Timezone       string // IANA zone reported by the client
	AcceptLanguage string // raw Accept-Language header
}

// memEntry is one in-process cache slot: the detected country and the
// detection time in unix milliseconds, mirroring the redis layout.
type memEntry struct {
	country string
	stamp   int64
}

// Detector resolves and caches a visitor's country.
type Detector struct {
	cache          *redis.Client
	mu             sync.Mutex
	mem            map[string]memEntry
	geoURL         string
	httpClient     *http.Client
	logger         *logging.Logger
	cacheTTL       time.Duration
	defaultCountry string
	now            func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithHTTPClient sets the client used for IP geolocation lookups.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Detector) { d.httpClient = client }
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(d *Detector) { d.logger = logger }
}

// WithCacheTTL overrides the 24h cache window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(d *Detector) { d.cacheTTL = ttl }
}

// WithDefaultCountry overrides the final fallback.
func WithDefaultCountry(country string) Option {
	return func(d *Detector) { d.defaultCountry = country }
}

// WithClock overrides time.Now for cache-age tests.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a detector. cache may be nil, in which case detections
// are cached in process instead (single-instance deployments only).
func NewDetector(cache *redis.Client, geoURL string, opts ...Option) *Detector {
	d := &Detector{
		cache:          cache,
		mem:            make(map[string]memEntry),
		geoURL:         geoURL,
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		logger:         logging.Default(),
		cacheTTL:       24 * time.Hour,
		defaultCountry: DefaultCountry,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) countryKey(scope string) string { return "detectedCountry:" + scope }
func (d *Detector) timeKey(scope string) string    { return "detectedCountryTime:" + scope }

// Country returns the visitor's country, serving a cached answer when it is
// younger than the cache TTL. scope identifies the visitor (session ID).
func (d *Detector) Country(ctx context.Context, scope string, sig Signals) string {
	if cached, ok := d.cached(ctx, scope); ok {
		return cached
	}
	return d.detectAndCache(ctx, scope, sig)
}

// ForceRefresh re-runs detection regardless of cache state.
func (d *Detector) ForceRefresh(ctx context.Context, scope string, sig Signals) string {
	if err := d.ClearCache(ctx, scope); err != nil {
		d.logger.Warn("geo: clear cache failed", "error", err)
	}
	return d.detectAndCache(ctx, scope, sig)
}

// ClearCache drops the cached detection for a visitor.
func (d *Detector) ClearCache(ctx context.Context, scope string) error {
	if d.cache == nil {
		d.mu.Lock()
		delete(d.mem, scope)
		d.mu.Unlock()
		return nil
	}
	return d.cache.Del(ctx, d.countryKey(scope), d.timeKey(scope)).Err()
}

func (d *Detector) cached(ctx context.Context, scope string) (string, bool) {
	if d.cache == nil {
		d.mu.Lock()
		entry, ok := d.mem[scope]
		d.mu.Unlock()
		if !ok || entry.country == "" {
			return "", false
		}
		if d.now().Sub(time.UnixMilli(entry.stamp)) >= d.cacheTTL {
			return "", false
		}
		return entry.country, true
	}
	country, err := d.cache.Get(ctx, d.countryKey(scope)).Result()
	if err != nil || country == "" {
		return "", false
	}
	stampStr, err := d.cache.Get(ctx, d.timeKey(scope)).Result()
	if err != nil {
		return "", false
	}
	stamp, err := strconv.ParseInt(stampStr, 10, 64)
	if err != nil {
		return "", false
	}
	if d.now().Sub(time.UnixMilli(stamp)) >= d.cacheTTL {
		return "", false
	}
	return country, true
}

func (d *Detector) detectAndCache(ctx context.Context, scope string, sig Signals) string {
	country := d.detect(ctx, sig)
	if d.cache == nil {
		d.mu.Lock()
		d.mem[scope] = memEntry{country: country, stamp: d.now().UnixMilli()}
		d.mu.Unlock()
		return country
	}
	stamp := strconv.FormatInt(d.now().UnixMilli(), 10)
	if err := d.cache.Set(ctx, d.countryKey(scope), country, d.cacheTTL).Err(); err != nil {
		d.logger.Warn("geo: cache country failed", "error", err)
	} else if err := d.cache.Set(ctx, d.timeKey(scope), stamp, d.cacheTTL).Err(); err != nil {
		d.logger.Warn("geo: cache timestamp failed", "error", err)
	}
	return country
}

// detect runs the fallback chain: timezone, locale, IP geolocation, default.
func (d *Detector) detect(ctx context.Context, sig Signals) string {
	if country := FromTimezone(sig.Timezone); country != "" {
		return country
	}
	if country := FromLocale(sig.AcceptLanguage); country != "" {
		return country
	}
	if country, err := d.fromIP(ctx); err == nil && country != "" {
		return country
	} else if err != nil {
		d.logger.Warn("geo: IP detection failed", "error", err)
	}
	return d.defaultCountry
}

// FromTimezone maps an IANA timezone to a country, or "" if unknown.
func FromTimezone(tz string) string {
	return timezoneCountry[strings.TrimSpace(tz)]
}

// FromLocale extracts the region subtag of the first Accept-Language entry
// and maps it to a country, or "" if unresolvable.
func FromLocale(acceptLanguage string) string {
	first := strings.TrimSpace(strings.SplitN(acceptLanguage, ",", 2)[0])
	if first == "" {
		return ""
	}
	// Strip any quality weight, then take the region subtag of e.g. en-IN.
	first = strings.TrimSpace(strings.SplitN(first, ";", 2)[0])
	parts := strings.Split(first, "-")
	if len(parts) < 2 {
		return ""
	}
	return countryByCode[strings.ToUpper(parts[1])]
}

// fromIP asks the configured IP-geolocation endpoint for a country name.
func (d *Detector) fromIP(ctx context.Context) (string, error) {
	if d.geoURL == "" {
		return "", nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.geoURL, nil)
	if err != nil {
		return "", fmt.Errorf("geo: create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo: lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("geo: lookup status %d", resp.StatusCode)
	}
	var payload struct {
		CountryName string `json:"country_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("geo: decode lookup: %w", err)
	}
	return payload.CountryName, nil
}

// NeedsRedetection flags stored addresses still carrying the historical USA
// default, which was wrong for this clinic's patients.
func NeedsRedetection(country string) bool {
	switch country {
	case "USA", "United States", "US":
		return true
	}
	return false
}
