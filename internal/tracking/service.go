package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/eldavido7/taxi-tracker/internal/presence"
	"github.com/eldavido7/taxi-tracker/internal/session"
	"github.com/eldavido7/taxi-tracker/internal/stream"
)

// liveWindow decides live vs. stale on the poll path. Trackers report every
// few seconds, so a quiet 45s means several missed reports, not jitter.
const liveWindow = 45 * time.Second

// ActiveWindow is the coarser "driver is out working" window used by the
// driver detail endpoint.
const ActiveWindow = 5 * time.Minute

var (
	ErrUnauthorized = errors.New("invalid or missing credential")
	ErrMissingKey   = errors.New("session_id or driver_id required")
	ErrMissingCoord = errors.New("latitude and longitude required")
)

// SessionGetter is the one-hop lookup the poll path needs from the registry.
type SessionGetter interface {
	Get(ctx context.Context, id string) (session.Session, error)
}

// Verifier resolves a bearer credential to a principal id.
type Verifier interface {
	ValidateAccessToken(token string) (string, error)
}

type Service struct {
	presence    *presence.Store
	sessions    SessionGetter
	verifier    Verifier
	hub         *stream.Hub
	requireAuth bool
}

func NewService(store *presence.Store, sessions SessionGetter, verifier Verifier, hub *stream.Hub, requireAuth bool) *Service {
	return &Service{
		presence:    store,
		sessions:    sessions,
		verifier:    verifier,
		hub:         hub,
		requireAuth: requireAuth,
	}
}

// Report accepts a position from a tracker. The credential is checked before
// anything is written: a supplied token must always verify, and a missing one
// is rejected only when the service is configured to require auth.
func (s *Service) Report(ctx context.Context, key Key, lat, lng float64, token string) (presence.Position, error) {
	if token == "" && s.requireAuth {
		return presence.Position{}, ErrUnauthorized
	}
	if token != "" {
		if _, err := s.verifier.ValidateAccessToken(token); err != nil {
			return presence.Position{}, ErrUnauthorized
		}
	}

	p, err := s.presence.Upsert(ctx, key.String(), lat, lng)
	if err != nil {
		return presence.Position{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(p)
		s.hub.Broadcast(key.String(), payload)
	}
	return p, nil
}

// Poll returns the viewer-facing liveness state for a key. A session key is
// resolved through the registry first: an ended session short-circuits to
// StatusEnded without touching the presence store, and a session with no
// record of its own falls back one hop to its driver's key.
func (s *Service) Poll(ctx context.Context, key Key) (PollResult, error) {
	if !key.IsSession() {
		p, err := s.presence.Get(ctx, key.String())
		if err != nil {
			return PollResult{}, err
		}
		return s.resultFor(p), nil
	}

	sess, err := s.sessions.Get(ctx, key.ID())
	if err != nil {
		return PollResult{}, err
	}
	if sess.Ended() {
		return PollResult{Status: StatusEnded}, nil
	}

	p, err := s.presence.Get(ctx, key.String())
	if errors.Is(err, presence.ErrNotFound) {
		p, err = s.presence.Get(ctx, DriverKey(sess.DriverID).String())
	}
	if err != nil {
		return PollResult{}, err
	}
	return s.resultFor(p), nil
}

// Stop clears the stored position for a key, following the same one-hop
// driver-key fallback as Poll so a stop addressed by session id reaches a
// record the tracker wrote under its driver id. Session status is untouched:
// a tracker going offline and a trip ending are independent signals.
func (s *Service) Stop(ctx context.Context, key Key) error {
	err := s.presence.Delete(ctx, key.String())
	if !key.IsSession() || !errors.Is(err, presence.ErrNotFound) {
		return err
	}

	sess, serr := s.sessions.Get(ctx, key.ID())
	if serr != nil {
		return serr
	}
	return s.presence.Delete(ctx, DriverKey(sess.DriverID).String())
}

func (s *Service) resultFor(p presence.Position) PollResult {
	if s.presence.IsStale(p, liveWindow) {
		return PollResult{Status: StatusStale, Position: &p}
	}
	return PollResult{Status: StatusLive, Position: &p}
}
