// Package presence counts anonymous visitors that sent a heartbeat recently.
//
// Records are keyed by a client generated session id. Two windows apply: a
// record counts as online while its last heartbeat is within the online window,
// and it is deleted once it falls outside the retain window. Counting is
// best-effort: every failure is logged and reported as zero.
package presence

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// MaxSessionIDLength bounds client supplied session ids, in characters.
const MaxSessionIDLength = 100

const (
	DefaultOnlineWindow = 60 * time.Second
	DefaultRetainWindow = 5 * time.Minute
)

var (
	ErrEmptySessionID   = errors.New("session id is required")
	ErrSessionIDTooLong = errors.New("session id is too long")
)

// Store persists active session records. Implementations must upsert
// atomically per id and never move a record's last-seen time backwards.
type Store interface {
	Upsert(ctx context.Context, sessionID string, seen time.Time) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// Observer receives every count the tracker produces.
type Observer interface {
	SetPresenceOnline(count int)
}

// Options tunes a Tracker. Zero values fall back to the defaults.
type Options struct {
	OnlineWindow time.Duration
	RetainWindow time.Duration
	Now          func() time.Time
	Observer     Observer
}

// Tracker implements heartbeat and peek over a Store.
type Tracker struct {
	store    Store
	logger   *zap.Logger
	online   time.Duration
	retain   time.Duration
	now      func() time.Time
	observer Observer
}

// NewTracker builds a tracker.
func NewTracker(store Store, logger *zap.Logger, opts Options) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		store:    store,
		logger:   logger,
		online:   opts.OnlineWindow,
		retain:   opts.RetainWindow,
		now:      opts.Now,
		observer: opts.Observer,
	}
	if t.online <= 0 {
		t.online = DefaultOnlineWindow
	}
	if t.retain <= 0 {
		t.retain = DefaultRetainWindow
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// ValidateSessionID checks the client supplied id.
func ValidateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrEmptySessionID
	}
	if utf8.RuneCountInString(sessionID) > MaxSessionIDLength {
		return ErrSessionIDTooLong
	}
	return nil
}

// Heartbeat records sessionID as seen now, purges stale records and returns
// the number of sessions online.
func (t *Tracker) Heartbeat(ctx context.Context, sessionID string) int {
	if err := ValidateSessionID(sessionID); err != nil {
		t.logger.Debug("presence heartbeat rejected", zap.Error(err))
		return 0
	}

	now := t.now()
	if err := t.store.Upsert(ctx, sessionID, now); err != nil {
		t.logger.Warn("presence upsert failed", zap.Error(err))
		return 0
	}

	removed, err := t.store.DeleteBefore(ctx, now.Add(-t.retain))
	if err != nil {
		t.logger.Warn("presence cleanup failed", zap.Error(err))
		return 0
	}
	if removed > 0 {
		t.logger.Debug("presence cleanup", zap.Int64("removed", removed))
	}

	return t.count(ctx, now)
}

// Peek returns the number of sessions online without recording a heartbeat.
func (t *Tracker) Peek(ctx context.Context) int {
	return t.count(ctx, t.now())
}

func (t *Tracker) count(ctx context.Context, now time.Time) int {
	n, err := t.store.CountSince(ctx, now.Add(-t.online))
	if err != nil {
		t.logger.Warn("presence count failed", zap.Error(err))
		return 0
	}
	if t.observer != nil {
		t.observer.SetPresenceOnline(n)
	}
	return n
}
