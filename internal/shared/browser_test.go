package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niaxtu/niaxtu-admin/internal/shared"
)

func visitManager(t *testing.T) *shared.VisitManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewVisitManager(client, "niaxtu_visit", time.Hour, false)
}

func TestVisitRoundTrip(t *testing.T) {
	ctx := context.Background()
	vm := visitManager(t)

	first, err := vm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	first.Set("theme", "sombre")
	first.AddFlash("success", "Bienvenue")

	rec := httptest.NewRecorder()
	require.NoError(t, vm.Commit(ctx, rec, first))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "niaxtu_visit", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	second, err := vm.Load(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "sombre", second.Get("theme"))

	flash := second.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Bienvenue", flash.Message)
	assert.Nil(t, second.PopFlash(), "flash must be one-shot")
}

func TestDestroyedVisitDropsCookieAndRecord(t *testing.T) {
	ctx := context.Background()
	vm := visitManager(t)

	visit, err := vm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, vm.Commit(ctx, rec, visit))
	cookie := rec.Result().Cookies()[0]

	vm.Destroy(visit)
	rec = httptest.NewRecorder()
	require.NoError(t, vm.Commit(ctx, rec, visit))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	reloaded, err := vm.Load(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Get("anything"))
}

func TestCSRFTokenBoundToVisit(t *testing.T) {
	mgr := shared.NewCSRFManager("secret-key")
	visit := &shared.Visit{ID: "v1"}

	token, err := mgr.EnsureToken(visit)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := mgr.EnsureToken(visit)
	require.NoError(t, err)
	assert.Equal(t, token, again, "token must be stable per visit")

	require.NoError(t, mgr.VerifyToken(visit, token))
	assert.ErrorIs(t, mgr.VerifyToken(visit, "forged"), shared.ErrCSRFTokenMismatch)
	assert.ErrorIs(t, mgr.VerifyToken(visit, ""), shared.ErrCSRFTokenMissing)
}
