package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestFromTimezone(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"Asia/Kolkata", "India"},
		{"America/New_York", "United States"},
		{"Europe/London", "United Kingdom"},
		{"Antarctica/Troll", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FromTimezone(tt.tz); got != tt.want {
			t.Errorf("FromTimezone(%q) = %q, want %q", tt.tz, got, tt.want)
		}
	}
}

func TestFromLocale(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en-IN,en;q=0.9", "India"},
		{"gu-IN", "India"},
		{"en-US", "United States"},
		{"en-us", "United States"},
		{"fr", ""},
		{"en-ZZ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FromLocale(tt.lang); got != tt.want {
			t.Errorf("FromLocale(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestDetectChainFallsBackToIP(t *testing.T) {
	var calls atomic.Int32
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"country_name": "Singapore"})
	}))
	defer geoSrv.Close()

	d := NewDetector(nil, geoSrv.URL)
	got := d.Country(context.Background(), "visitor-1", Signals{Timezone: "Mars/Olympus", AcceptLanguage: "xx"})
	assert.Equal(t, "Singapore", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDetectDefaultsWhenEverythingFails(t *testing.T) {
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer geoSrv.Close()

	d := NewDetector(nil, geoSrv.URL)
	got := d.Country(context.Background(), "visitor-1", Signals{})
	assert.Equal(t, "India", got)
}

func TestCacheIdempotence(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"country_name": "Canada"})
	}))
	defer geoSrv.Close()

	d := NewDetector(cache, geoSrv.URL)
	sig := Signals{Timezone: "Mars/Olympus"}

	first := d.Country(context.Background(), "visitor-1", sig)
	second := d.Country(context.Background(), "visitor-1", sig)

	assert.Equal(t, "Canada", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call must hit the cache, not the network")
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"country_name": "Canada"})
	}))
	defer geoSrv.Close()

	now := time.Now()
	clock := &now
	d := NewDetector(cache, geoSrv.URL, WithClock(func() time.Time { return *clock }))
	sig := Signals{Timezone: "Mars/Olympus"}

	d.Country(context.Background(), "visitor-1", sig)
	later := now.Add(25 * time.Hour)
	clock = &later

	d.Country(context.Background(), "visitor-1", sig)
	assert.Equal(t, int32(2), calls.Load(), "stale cache entry must trigger re-detection")
}

func TestForceRefreshBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"country_name": "Canada"})
	}))
	defer geoSrv.Close()

	d := NewDetector(cache, geoSrv.URL)
	sig := Signals{}

	d.Country(context.Background(), "visitor-1", sig)
	d.ForceRefresh(context.Background(), "visitor-1", sig)

	assert.Equal(t, int32(2), calls.Load())
}

func TestInProcessCacheWithoutRedis(t *testing.T) {
	var calls atomic.Int32
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"country_name": "Canada"})
	}))
	defer geoSrv.Close()

	d := NewDetector(nil, geoSrv.URL)
	sig := Signals{Timezone: "Mars/Olympus"}

	first := d.Country(context.Background(), "visitor-1", sig)
	second := d.Country(context.Background(), "visitor-1", sig)

	assert.Equal(t, "Canada", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call must hit the in-process cache")

	// A different visitor gets their own entry.
	d.Country(context.Background(), "visitor-2", sig)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInProcessCacheExpiresAfterTTL(t *testing.T) {
	var calls atomic.Int32
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"country_name": "Canada"})
	}))
	defer geoSrv.Close()

	now := time.Now()
	clock := &now
	d := NewDetector(nil, geoSrv.URL, WithClock(func() time.Time { return *clock }))
	sig := Signals{Timezone: "Mars/Olympus"}

	d.Country(context.Background(), "visitor-1", sig)
	later := now.Add(25 * time.Hour)
	clock = &later

	d.Country(context.Background(), "visitor-1", sig)
	assert.Equal(t, int32(2), calls.Load(), "stale in-process entry must trigger re-detection")
}

func TestInProcessCacheClears(t *testing.T) {
	var calls atomic.Int32
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"country_name": "Canada"})
	}))
	defer geoSrv.Close()

	d := NewDetector(nil, geoSrv.URL)
	sig := Signals{}

	d.Country(context.Background(), "visitor-1", sig)
	d.ForceRefresh(context.Background(), "visitor-1", sig)

	assert.Equal(t, int32(2), calls.Load())
}

func TestTimezoneWinsWithoutNetwork(t *testing.T) {
	d := NewDetector(nil, "http://127.0.0.1:1") // unreachable on purpose
	got := d.Country(context.Background(), "visitor-1", Signals{Timezone: "Asia/Kolkata"})
	assert.Equal(t, "India", got)
}

func TestNeedsRedetection(t *testing.T) {
	assert.True(t, NeedsRedetection("USA"))
	assert.True(t, NeedsRedetection("United States"))
	assert.True(t, NeedsRedetection("US"))
	assert.False(t, NeedsRedetection("India"))
	assert.False(t, NeedsRedetection(""))
}
