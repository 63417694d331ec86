package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/niaxtu/niaxtu-admin/internal/credstore"
	jobmetrics "github.com/niaxtu/niaxtu-admin/internal/jobs"
	"github.com/niaxtu/niaxtu-admin/internal/session"
)

// SessionVerifier re-validates the cached console session against the
// API. The console itself trusts the cache on startup; this job is the
// compensating check that eventually drops a token the server no
// longer honours.
type SessionVerifier struct {
	api     session.API
	store   credstore.Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSessionVerifier wires the verifier over the shared credential store.
func NewSessionVerifier(api session.API, store credstore.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionVerifier {
	return &SessionVerifier{api: api, store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskVerifySession tasks.
func (v *SessionVerifier) Handle(ctx context.Context, _ *asynq.Task) error {
	return v.metrics.Track("verify_session").End(v.verify(ctx))
}

func (v *SessionVerifier) verify(ctx context.Context) error {
	// A fresh manager per run picks up whatever the console stored
	// since the previous tick. Strict mode forces the server round-trip.
	mgr := session.NewManager(v.api, v.store, v.logger, session.Options{TrustCachedSession: false})
	if err := mgr.Initialize(ctx); err != nil {
		return err
	}
	if !mgr.IsAuthenticated() {
		v.logger.Debug("no cached session to verify")
		return nil
	}

	ok, err := mgr.VerifyToken(ctx)
	if err != nil {
		// Transport failures surface here; asynq retries the task.
		return err
	}
	if !ok {
		v.logger.Info("cached session no longer valid, credentials cleared")
	}
	return nil
}
