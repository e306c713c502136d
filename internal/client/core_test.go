package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/verdinapp/verdin/internal/api"
	"github.com/verdinapp/verdin/internal/config"
	"github.com/verdinapp/verdin/internal/localstore"
	"github.com/verdinapp/verdin/internal/models"
	"github.com/verdinapp/verdin/internal/session"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.Push.URL = "nats://127.0.0.1:65000" // nothing listens; channel degrades
	cfg.Quota.DailyLimit = 10
	return cfg
}

func newTestCore(t *testing.T, handler http.Handler) *Core {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	core, err := New(testConfig(server.URL), localstore.NewMemory())
	require.NoError(t, err)
	t.Cleanup(core.Close)
	return core
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func failHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
}

func seedThread(c *Core, id string, likes int) {
	c.Threads.Load([]models.Thread{{
		ID:    id,
		Stats: models.ThreadStats{Likes: likes},
	}})
}

func TestToggleLike_OptimisticSuccessSpendsQuota(t *testing.T) {
	core := newTestCore(t, okHandler())
	seedThread(core, "t1", 10)

	require.NoError(t, core.ToggleLike(context.Background(), "t1", true))

	cell, _ := core.Threads.Get("t1")
	got := cell.Get()
	require.True(t, got.IsLiked)
	require.Equal(t, 11, got.Stats.Likes)
	require.Equal(t, 9, core.Quota.Remaining())

	// Untoggling refunds the quota.
	require.NoError(t, core.ToggleLike(context.Background(), "t1", false))
	require.Equal(t, 10, core.Quota.Remaining())
}

func TestToggleLike_FailureRollsBackAndSkipsQuota(t *testing.T) {
	core := newTestCore(t, failHandler())
	seedThread(core, "t1", 10)

	err := core.ToggleLike(context.Background(), "t1", true)

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)

	cell, _ := core.Threads.Get("t1")
	got := cell.Get()
	require.False(t, got.IsLiked, "optimistic write must be rolled back")
	require.Equal(t, 10, got.Stats.Likes)
	require.Equal(t, 10, core.Quota.Remaining(), "failed action must not spend quota")
}

func TestToggleLike_UnknownThreadIsNoOp(t *testing.T) {
	core := newTestCore(t, okHandler())
	require.NoError(t, core.ToggleLike(context.Background(), "ghost", true))
}

func TestToggleLike_SameValueIsNoOp(t *testing.T) {
	var calls int
	core := newTestCore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	seedThread(core, "t1", 10)

	require.NoError(t, core.ToggleLike(context.Background(), "t1", false))
	require.Zero(t, calls, "no request should be issued for a no-op toggle")
}

func TestToggleSave_RollbackKeepsCounter(t *testing.T) {
	core := newTestCore(t, failHandler())
	core.Threads.Load([]models.Thread{{ID: "t1", Stats: models.ThreadStats{Saves: 3}}})

	err := core.ToggleSave(context.Background(), "t1", true)
	require.Error(t, err)

	cell, _ := core.Threads.Get("t1")
	got := cell.Get()
	require.False(t, got.IsSaved)
	require.Equal(t, 3, got.Stats.Saves)
}

func TestToggleFollowUser_RollbackRestoresFollowerCount(t *testing.T) {
	core := newTestCore(t, failHandler())
	core.Users.Load([]models.User{{Username: "mara", FollowerCount: 7}})

	err := core.ToggleFollowUser(context.Background(), "mara", true)
	require.Error(t, err)

	cell, _ := core.Users.Get("mara")
	got := cell.Get()
	require.False(t, got.IsFollowing)
	require.Equal(t, 7, got.FollowerCount)
}

func TestPostComment_SuccessMovesCounterAndQuota(t *testing.T) {
	core := newTestCore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Comment{ID: "c1", ThreadID: "t1"})
	}))
	seedThread(core, "t1", 0)

	comment, err := core.PostComment(context.Background(), "t1", "nice thread")
	require.NoError(t, err)
	require.Equal(t, "c1", comment.ID)

	cell, _ := core.Threads.Get("t1")
	require.Equal(t, 1, cell.Get().Stats.Comments)
	require.Equal(t, 9, core.Quota.Remaining())
}

func TestPostComment_FailureTouchesNothing(t *testing.T) {
	core := newTestCore(t, failHandler())
	seedThread(core, "t1", 0)

	_, err := core.PostComment(context.Background(), "t1", "nope")
	require.Error(t, err)

	cell, _ := core.Threads.Get("t1")
	require.Equal(t, 0, cell.Get().Stats.Comments)
	require.Equal(t, 10, core.Quota.Remaining())
}

func TestDeleteComment_RefundsNothing(t *testing.T) {
	core := newTestCore(t, okHandler())
	seedThread(core, "t1", 0)
	core.Threads.Mutate("t1", func(th models.Thread) models.Thread {
		th.Stats.Comments = 2
		return th
	})

	require.NoError(t, core.DeleteComment(context.Background(), "t1", "c1"))

	cell, _ := core.Threads.Get("t1")
	require.Equal(t, 1, cell.Get().Stats.Comments)
	require.Equal(t, 10, core.Quota.Remaining())
}

func TestMarkAllNotificationsRead_RollbackOnFailure(t *testing.T) {
	core := newTestCore(t, failHandler())
	core.Notifications.ApplyFetch(true)

	err := core.MarkAllNotificationsRead(context.Background())
	require.Error(t, err)
	require.True(t, core.Notifications.HasUnread(), "unread must revert to true")
}

func TestPushAfterMarkAllReadWins(t *testing.T) {
	core := newTestCore(t, okHandler())
	core.Notifications.ApplyFetch(true)

	require.NoError(t, core.MarkAllNotificationsRead(context.Background()))
	require.False(t, core.Notifications.HasUnread())

	core.Notifications.PushArrived(models.Notification{ID: "n1"})
	require.True(t, core.Notifications.HasUnread(), "push always overrides a read state")
}

func TestDeleteThread_RemovesStoreEntryAndViewMarker(t *testing.T) {
	core := newTestCore(t, okHandler())
	seedThread(core, "t1", 0)
	core.MarkThreadViewed(context.Background(), "t1")
	require.True(t, core.Seen.HasViewed("t1"))

	require.NoError(t, core.DeleteThread(context.Background(), "t1"))

	_, ok := core.Threads.Get("t1")
	require.False(t, ok)
	require.False(t, core.Seen.HasViewed("t1"), "removal hook should forget the view marker")
}

func TestMarkThreadViewed_OncePerSession(t *testing.T) {
	var reports int
	core := newTestCore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reports++
	}))
	seedThread(core, "t1", 0)

	core.MarkThreadViewed(context.Background(), "t1")
	core.MarkThreadViewed(context.Background(), "t1")

	require.Equal(t, 1, reports)
	cell, _ := core.Threads.Get("t1")
	require.Equal(t, 1, cell.Get().Stats.Views)
}

func loginToken(t *testing.T, sessionID string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mara",
		"sid": sessionID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return raw
}

func apiStateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/notifications/unread":
			_, _ = w.Write([]byte(`{"hasUnread":true}`))
		case "/api/quota":
			_, _ = w.Write([]byte(`{"limit":10,"remaining":4}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
}

func TestLogin_SyncsUnreadAndQuota(t *testing.T) {
	core := newTestCore(t, apiStateHandler())

	require.NoError(t, core.Login(context.Background(), loginToken(t, "sess-1")))

	require.Equal(t, session.StateAuthenticated, core.Session.State())
	require.True(t, core.Notifications.HasUnread())
	require.Equal(t, 4, core.Quota.Remaining())
	require.Equal(t, 10, core.Quota.Limit())
}

func TestLogin_RejectsExpiredToken(t *testing.T) {
	core := newTestCore(t, apiStateHandler())

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mara",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.Error(t, core.Login(context.Background(), raw))
	require.Equal(t, session.StateUnauthenticated, core.Session.State())
}

func TestLogout_TearsDownEveryCache(t *testing.T) {
	core := newTestCore(t, apiStateHandler())
	require.NoError(t, core.Login(context.Background(), loginToken(t, "sess-1")))

	seedThread(core, "t1", 1)
	core.Users.Load([]models.User{{Username: "mara"}})
	core.Categories.Load([]models.Category{{ID: "c1", Name: "go"}})
	core.Notifications.PushArrived(models.Notification{ID: "n1"})
	core.MarkThreadViewed(context.Background(), "t1")

	core.Logout()

	require.Equal(t, 0, core.Threads.Len())
	require.Equal(t, 0, core.Users.Len())
	require.Equal(t, 0, core.Categories.Len())
	require.False(t, core.Notifications.HasUnread())
	require.Empty(t, core.Notifications.Recent())
	require.Equal(t, 0, core.Seen.Len())
	require.False(t, core.Channel.Connected())

	// Logging out twice is safe.
	core.Logout()
	require.Equal(t, 0, core.Threads.Len())
}

func TestLoadFeed_AuthRejectionTearsDownSession(t *testing.T) {
	core := newTestCore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, core.Login(context.Background(), loginToken(t, "sess-1")))
	require.Equal(t, session.StateAuthenticated, core.Session.State())
	seedThread(core, "t1", 10)

	_, err := core.LoadFeed(context.Background(), 0, 20)

	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, session.StateUnauthenticated, core.Session.State(),
		"server rejection must end the session")
	require.Equal(t, 0, core.Threads.Len(), "teardown must wipe the stores")
}

func TestToggleLike_AuthRejectionTearsDownSession(t *testing.T) {
	core := newTestCore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, core.Login(context.Background(), loginToken(t, "sess-1")))
	seedThread(core, "t1", 10)

	err := core.ToggleLike(context.Background(), "t1", true)

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, session.StateUnauthenticated, core.Session.State())
	require.Equal(t, 0, core.Threads.Len())
}

func TestExpiredSessionTeardownRunsOnce(t *testing.T) {
	core := newTestCore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, core.Login(context.Background(), loginToken(t, "sess-1")))

	_, err := core.LoadFeed(context.Background(), 0, 20)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, session.StateUnauthenticated, core.Session.State())

	// Further rejected requests find the session already down and leave
	// freshly loaded state alone instead of re-triggering teardown.
	seedThread(core, "t1", 10)
	_, err = core.LoadFeed(context.Background(), 0, 20)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, 1, core.Threads.Len())
}

func TestLoadComments_ReturnsPage(t *testing.T) {
	core := newTestCore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Page[models.Comment]{
			Content: []models.Comment{
				{ID: "c1", ThreadID: "t1", Body: "first"},
				{ID: "c2", ThreadID: "t1", Body: "second"},
			},
			TotalElements: 2,
			Last:          true,
		})
	}))

	page, err := core.LoadComments(context.Background(), "t1", 0, 20)
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	require.Equal(t, "first", page.Content[0].Body)
	require.True(t, page.Last)
}

func TestLoadFeed_StaleRefreshKeepsOptimisticFlag(t *testing.T) {
	core := newTestCore(t, okHandler())
	seedThread(core, "t1", 10)

	require.NoError(t, core.ToggleLike(context.Background(), "t1", true))

	// A stale background refresh lands afterwards.
	core.Threads.Load([]models.Thread{{ID: "t1", Stats: models.ThreadStats{Likes: 999}}})

	cell, _ := core.Threads.Get("t1")
	got := cell.Get()
	require.True(t, got.IsLiked, "flag is protected")
	require.Equal(t, 999, got.Stats.Likes, "counter is not protected")
}

func TestLoadFeed_SwitchToLatest(t *testing.T) {
	var mu sync.Mutex
	block := make(chan struct{})
	first := true

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		wasFirst := first
		first = false
		mu.Unlock()

		if wasFirst {
			<-block // hold the first response until the second one is done
			_ = json.NewEncoder(w).Encode(models.Page[models.Thread]{
				Content: []models.Thread{{ID: "stale"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(models.Page[models.Thread]{
			Content: []models.Thread{{ID: "fresh"}},
		})
	})
	core := newTestCore(t, handler)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = core.LoadFeed(context.Background(), 0, 20)
	}()

	// Make sure the first request is in flight before superseding it.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return !first
	}, time.Second, 5*time.Millisecond)

	_, err := core.LoadFeed(context.Background(), 0, 20)
	require.NoError(t, err)

	close(block)
	wg.Wait()

	require.ErrorIs(t, firstErr, ErrSuperseded)
	_, staleLoaded := core.Threads.Get("stale")
	require.False(t, staleLoaded, "superseded response must not reach the store")
	_, freshLoaded := core.Threads.Get("fresh")
	require.True(t, freshLoaded)
}
