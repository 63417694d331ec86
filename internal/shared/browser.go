// Package shared carries the console's per-browser plumbing: the
// cookie-bound visit record (flash messages, CSRF token) and the CSRF
// manager. Authentication itself lives in internal/session; a Visit
// never knows who is logged in.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Flash is a one-time notification shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Visit is the per-browser state tied to the console cookie.
type Visit struct {
	ID        string
	values    map[string]string
	flashes   []Flash
	isNew     bool
	dirty     bool
	destroyed bool
}

type visitPayload struct {
	Values  map[string]string `json:"values"`
	Flashes []Flash           `json:"flashes,omitempty"`
}

// VisitManager loads and commits Visit records against redis.
type VisitManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewVisitManager constructs a VisitManager.
func NewVisitManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *VisitManager {
	return &VisitManager{client: client, cookieName: cookieName, ttl: ttl, secure: secure}
}

// Load resolves the request's Visit, creating a fresh one when the
// cookie is absent or its record has expired.
func (vm *VisitManager) Load(ctx context.Context, r *http.Request) (*Visit, error) {
	cookie, err := r.Cookie(vm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return vm.newVisit(), nil
		}
		return nil, err
	}

	data, err := vm.client.Get(ctx, visitKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			visit := vm.newVisit()
			visit.ID = cookie.Value
			return visit, nil
		}
		return nil, err
	}

	var stored visitPayload
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &Visit{ID: cookie.Value, values: stored.Values, flashes: stored.Flashes}, nil
}

// Commit persists the Visit and writes the cookie when needed.
func (vm *VisitManager) Commit(ctx context.Context, w http.ResponseWriter, visit *Visit) error {
	if visit == nil {
		return nil
	}

	if visit.destroyed {
		if err := vm.client.Del(ctx, visitKey(visit.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     vm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   vm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if visit.dirty || visit.isNew {
		payload, err := json.Marshal(visitPayload{Values: visit.values, Flashes: visit.flashes})
		if err != nil {
			return err
		}
		if err := vm.client.Set(ctx, visitKey(visit.ID), payload, vm.ttl).Err(); err != nil {
			return err
		}
		visit.dirty = false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     vm.cookieName,
		Value:    visit.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   vm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(vm.ttl),
	})
	return nil
}

// Destroy marks the Visit for deletion on commit.
func (vm *VisitManager) Destroy(visit *Visit) {
	if visit != nil {
		visit.destroyed = true
	}
}

// CookieName returns the cookie identifier.
func (vm *VisitManager) CookieName() string {
	return vm.cookieName
}

func (vm *VisitManager) newVisit() *Visit {
	return &Visit{
		ID:     uuid.NewString(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
	}
}

func visitKey(id string) string {
	return "visit:" + id
}

// Set stores a key-value pair on the Visit.
func (v *Visit) Set(key, value string) {
	if v.values == nil {
		v.values = make(map[string]string)
	}
	v.values[key] = value
	v.dirty = true
}

// Get retrieves a value, empty when absent.
func (v *Visit) Get(key string) string {
	return v.values[key]
}

// AddFlash queues a flash message.
func (v *Visit) AddFlash(kind, message string) {
	v.flashes = append(v.flashes, Flash{Kind: kind, Message: message})
	v.dirty = true
}

// PopFlash removes and returns the oldest flash, nil when none.
func (v *Visit) PopFlash() *Flash {
	if len(v.flashes) == 0 {
		return nil
	}
	flash := v.flashes[0]
	v.flashes = v.flashes[1:]
	v.dirty = true
	return &flash
}

type visitContextKey struct{}

// ContextWithVisit stores the Visit in the context.
func ContextWithVisit(ctx context.Context, visit *Visit) context.Context {
	return context.WithValue(ctx, visitContextKey{}, visit)
}

// VisitFromContext extracts the Visit, nil when absent.
func VisitFromContext(ctx context.Context) *Visit {
	visit, _ := ctx.Value(visitContextKey{}).(*Visit)
	return visit
}
