package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Player is the playback collaborator a Looper drives.
type Player interface {
	Seek(ctx context.Context, seconds float64) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Position(ctx context.Context) (float64, error)
}

// ErrPlayerUnavailable is returned when no player is attached.
var ErrPlayerUnavailable = errors.New("player unavailable")

type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Looper confines playback to a MediaWindow. Preview plays the window once,
// Tick wraps playback back to the in point while continuous looping is on.
//
// mu serialises player calls, which may block on IPC. looping is written
// under mu but read without it so the UI never waits on the player.
type Looper struct {
	mu      sync.Mutex
	player  Player
	logger  *slog.Logger
	after   afterFunc
	pending stopper
	gen     uint64
	looping atomic.Bool
}

// NewLooper returns a looper bound to player. A nil logger discards output.
func NewLooper(player Player, logger *slog.Logger) *Looper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Looper{player: player, logger: logger, after: realAfterFunc}
}

// Preview seeks to the window start, plays, and pauses once the window
// width has elapsed. A pending pause from an earlier preview is cancelled.
func (l *Looper) Preview(ctx context.Context, w MediaWindow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelPendingLocked()
	if l.player == nil {
		return ErrPlayerUnavailable
	}
	if err := l.player.Seek(ctx, w.Start); err != nil {
		return fmt.Errorf("preview seek: %w", err)
	}
	if err := l.player.Play(ctx); err != nil {
		l.logger.Warn("player refused to play", "error", err, "start", w.Start)
		return nil
	}

	l.gen++
	gen := l.gen
	width := time.Duration(w.Width() * float64(time.Second))
	l.pending = l.after(width, func() { l.finishPreview(gen) })
	l.logger.Debug("preview scheduled", "start", w.Start, "end", w.End, "width", width)
	return nil
}

func (l *Looper) finishPreview(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// A newer preview or Stop already replaced this timer.
	if gen != l.gen || l.pending == nil {
		return
	}
	l.pending = nil
	if l.looping.Load() || l.player == nil {
		return
	}
	if err := l.player.Pause(context.Background()); err != nil {
		l.logger.Warn("pause after preview failed", "error", err)
	}
}

// PreviewPending reports whether a pause is scheduled.
func (l *Looper) PreviewPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != nil
}

// SetLooping turns continuous looping on or off. Turning it on seeks to the
// window start and starts playback.
func (l *Looper) SetLooping(ctx context.Context, on bool, w MediaWindow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelPendingLocked()
	l.looping.Store(on)
	if l.player == nil {
		return nil
	}
	if !on {
		return l.player.Pause(ctx)
	}
	if err := l.player.Seek(ctx, w.Start); err != nil {
		return fmt.Errorf("loop seek: %w", err)
	}
	if err := l.player.Play(ctx); err != nil {
		l.logger.Warn("player refused to play", "error", err, "start", w.Start)
	}
	return nil
}

// Looping reports whether continuous looping is on.
func (l *Looper) Looping() bool {
	return l.looping.Load()
}

// Tick wraps playback to the window start once the position reaches End.
// It reports whether a seek happened. Without a player, or while looping is
// off, it does nothing.
func (l *Looper) Tick(ctx context.Context, w MediaWindow) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.looping.Load() || l.player == nil {
		return false
	}
	pos, err := l.player.Position(ctx)
	if err != nil {
		l.logger.Debug("position unavailable", "error", err)
		return false
	}
	if pos < w.End {
		return false
	}
	if err := l.player.Seek(ctx, w.Start); err != nil {
		l.logger.Warn("loop seek failed", "error", err)
		return false
	}
	return true
}

// Stop cancels any pending preview pause and ends continuous looping.
func (l *Looper) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelPendingLocked()
	l.looping.Store(false)
}

func (l *Looper) cancelPendingLocked() {
	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
	l.gen++
}
