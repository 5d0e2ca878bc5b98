package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"redline/internal/config"
	"redline/internal/domain/models/doc"
)

// SaveStatus is the pipeline's user-visible state. It cycles
// idle -> saving -> saved -> idle, with saved held for a short display
// window before dropping back to idle.
type SaveStatus string

const (
	SaveIdle   SaveStatus = "idle"
	SaveSaving SaveStatus = "saving"
	SaveSaved  SaveStatus = "saved"
)

// SaveFunc persists a document snapshot. It runs off the session's lock and
// may take as long as the network does.
type SaveFunc func(ctx context.Context, state *doc.State) error

// SaverConfig tunes the pipeline intervals.
type SaverConfig struct {
	Debounce    time.Duration // delay from the last mutation to auto-save
	SavedWindow time.Duration // how long "saved" is displayed
}

func (c SaverConfig) withDefaults() SaverConfig {
	if c.Debounce <= 0 {
		c.Debounce = config.DefaultSaveDebounce
	}
	if c.SavedWindow <= 0 {
		c.SavedWindow = config.DefaultSavedWindow
	}
	return c
}

// Saver debounces document mutations into save calls. Saves are
// single-flight: a mutation arriving while a save is in flight marks the
// pipeline dirty and triggers exactly one follow-up save with the newest
// state once the current one completes. Failures return the pipeline to
// idle and are surfaced through OnError; there is no automatic retry, the
// next mutation or manual save re-attempts with the latest state.
type Saver struct {
	mu       sync.Mutex
	status   SaveStatus
	inflight bool
	dirty    bool
	closed   bool

	cfg    SaverConfig
	save   SaveFunc
	latest func() *doc.State
	logger *slog.Logger

	onStatus func(SaveStatus)
	onError  func(error)

	debounceTimer *time.Timer
	savedTimer    *time.Timer
}

func NewSaver(cfg SaverConfig, save SaveFunc, latest func() *doc.State, logger *slog.Logger) *Saver {
	cfg = cfg.withDefaults()
	return &Saver{
		status: SaveIdle,
		cfg:    cfg,
		save:   save,
		latest: latest,
		logger: logger,
	}
}

// OnStatus registers the status observer. Must be set before use.
func (s *Saver) OnStatus(fn func(SaveStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = fn
}

// OnError registers the failure observer.
func (s *Saver) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

func (s *Saver) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// NoteMutation restarts the debounce clock. Every mutation resets it, so a
// burst of keystrokes collapses to one save carrying the final state.
func (s *Saver) NoteMutation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.cfg.Debounce, func() {
		s.flush(context.Background())
	})
}

// SaveNow bypasses the debounce window and saves immediately.
func (s *Saver) SaveNow(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	s.mu.Unlock()
	s.flush(ctx)
}

// Close stops the timers. A save already in flight completes but triggers
// no follow-up.
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	if s.savedTimer != nil {
		s.savedTimer.Stop()
		s.savedTimer = nil
	}
}

func (s *Saver) flush(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.inflight {
		// Latest-wins: remember that newer state exists and let the
		// in-flight save's completion trigger one follow-up.
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.inflight = true
	s.dirty = false
	if s.savedTimer != nil {
		s.savedTimer.Stop()
		s.savedTimer = nil
	}
	s.status = SaveSaving
	notify := s.onStatus
	s.mu.Unlock()

	if notify != nil {
		notify(SaveSaving)
	}
	// Snapshot outside the saver lock: latest() takes the session's lock.
	snapshot := s.latest()
	err := s.save(ctx, snapshot)

	s.mu.Lock()
	s.inflight = false
	redo := s.dirty && !s.closed
	onErr := s.onError
	if err != nil {
		s.status = SaveIdle
		s.logger.Warn("save failed", "doc_id", snapshot.ID, "error", err)
	} else {
		s.status = SaveSaved
		s.savedTimer = time.AfterFunc(s.cfg.SavedWindow, func() {
			s.mu.Lock()
			if s.status != SaveSaved {
				s.mu.Unlock()
				return
			}
			s.status = SaveIdle
			fn := s.onStatus
			s.mu.Unlock()
			if fn != nil {
				fn(SaveIdle)
			}
		})
	}
	status := s.status
	s.mu.Unlock()

	if notify != nil {
		notify(status)
	}
	if err != nil && onErr != nil {
		onErr(err)
	}
	if redo {
		s.flush(context.Background())
	}
}
