package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
)

func newTestManager(t *testing.T, api *backend.Client) *Manager {
	t.Helper()
	return NewManager(NewMemoryStore(), api, Config{
		Secret:         "test-secret",
		CookieName:     "clinic_session",
		TTL:            time.Hour,
		HealthTimeout:  200 * time.Millisecond,
		ProfileTimeout: 200 * time.Millisecond,
	}, nil)
}

func testUser() *backend.User {
	return &backend.User{ID: "user-1", Email: "asha@example.com", FirstName: "Asha", LastName: "Patel", Role: "patient"}
}

func issueSession(t *testing.T, m *Manager, token string, user *backend.User) (*Record, *http.Request) {
	t.Helper()
	rr := httptest.NewRecorder()
	rec, err := m.Issue(context.Background(), rr, token, user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return rec, req
}

func TestIssueAndRead(t *testing.T) {
	m := newTestManager(t, nil)
	rec, req := issueSession(t, m, "jwt-token", testUser())

	got, err := m.Read(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "jwt-token", got.Token)

	user, err := got.DecodeUser()
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", user.FullName())
}

func TestReadWithoutCookie(t *testing.T) {
	m := newTestManager(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Read(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestReadTamperedCookie(t *testing.T) {
	m := newTestManager(t, nil)
	_, req := issueSession(t, m, "jwt-token", testUser())

	other := newTestManager(t, nil)
	other.secret = []byte("different-secret")
	_, err := other.Read(context.Background(), req)
	assert.ErrorIs(t, err, ErrBadCookie)
}

func TestClearDeletesRecordAndCookie(t *testing.T) {
	m := newTestManager(t, nil)
	_, req := issueSession(t, m, "jwt-token", testUser())

	rr := httptest.NewRecorder()
	m.Clear(context.Background(), rr, req)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	_, err := m.Read(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeRefreshesUserFromBackend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{"user": map[string]any{
				"_id": "user-1", "email": "asha@example.com",
				"firstName": "Asha", "lastName": "Mehta", "role": "patient",
			}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := backend.NewClient(srv.URL+"/api", backend.WithHealthURL(srv.URL+"/health"))
	m := newTestManager(t, api)
	rec, _ := issueSession(t, m, "jwt-token", testUser())

	user, err := m.Resume(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Asha Mehta", user.FullName())

	// The stored mirror picks up the fresh profile.
	mirror, err := rec.DecodeUser()
	require.NoError(t, err)
	assert.Equal(t, "Mehta", mirror.LastName)
}

func TestResumeSurvivesUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // down before the first call

	api := backend.NewClient(srv.URL+"/api", backend.WithHealthURL(srv.URL+"/health"))
	m := newTestManager(t, api)
	rec, _ := issueSession(t, m, "jwt-token", testUser())

	user, err := m.Resume(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", user.FullName())
}

func TestResumeSurvivesHangingProfileFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := backend.NewClient(srv.URL+"/api", backend.WithHealthURL(srv.URL+"/health"))
	m := newTestManager(t, api)
	rec, _ := issueSession(t, m, "jwt-token", testUser())

	start := time.Now()
	user, err := m.Resume(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", user.FullName(), "slow backend must not log the patient out")
	assert.Less(t, time.Since(start), time.Second, "resume must not wait out the full backend timeout")
}

func TestResumeEndsSessionOnRejectedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := backend.NewClient(srv.URL+"/api", backend.WithHealthURL(srv.URL+"/health"))
	m := newTestManager(t, api)
	rec, _ := issueSession(t, m, "jwt-token", testUser())

	_, err := m.Resume(context.Background(), rec)
	assert.ErrorIs(t, err, backend.ErrSessionExpired)
}

func TestBannerDismissalTiers(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	rec, _ := issueSession(t, m, "jwt-token", testUser())

	key := "dismissed_completion_64"
	assert.False(t, m.BannerDismissed(ctx, rec, key))

	require.NoError(t, m.DismissBanner(ctx, rec, key, false))
	assert.True(t, m.BannerDismissed(ctx, rec, key))

	// Session-tier dismissal does not carry over to a new session.
	rec2, _ := issueSession(t, m, "jwt-token", testUser())
	assert.False(t, m.BannerDismissed(ctx, rec2, key))

	// Permanent dismissal does.
	require.NoError(t, m.DismissBanner(ctx, rec2, key, true))
	rec3, _ := issueSession(t, m, "jwt-token", testUser())
	assert.True(t, m.BannerDismissed(ctx, rec3, key))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	rec := &Record{ID: "abc", Token: "jwt-token", CreatedAt: time.Now()}
	require.NoError(t, rec.SetUser(testUser()))
	require.NoError(t, store.Save(ctx, rec, time.Hour))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", got.Token)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreFlags(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	ok, err := store.HasFlag(ctx, "user-1", "dismissed_completion_64")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetFlag(ctx, "user-1", "dismissed_completion_64"))
	ok, err = store.HasFlag(ctx, "user-1", "dismissed_completion_64")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.ClearFlags(ctx, "user-1"))
	ok, _ = store.HasFlag(ctx, "user-1", "dismissed_completion_64")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	store.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Record{ID: "abc"}, time.Minute))
	_, err := store.Get(ctx, "abc")
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}
