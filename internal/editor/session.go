package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"redline/internal/config"
	"redline/internal/domain/models/doc"
	"redline/internal/template"
)

// SessionConfig tunes the session's timers and wires its collaborators.
type SessionConfig struct {
	Save            SaveFunc
	Debounce        time.Duration
	SavedWindow     time.Duration
	ReapplyThrottle time.Duration // coalesce highlight re-applies
	Feed            *ActivityFeed
	Sections        []template.Section
	Logger          *slog.Logger
}

// Session owns one document for its lifetime. All mutation goes through
// session commands; observers register on the bus and are released by
// Close. The session re-applies the full highlight set after every
// committed mutation, coalesced to at most one re-apply per throttle
// interval, and feeds mutations into the save pipeline.
type Session struct {
	mu    sync.Mutex
	state *doc.State

	bus    *Bus
	engine *Engine
	saver  *Saver
	feed   *ActivityFeed
	logger *slog.Logger

	comments    []doc.Comment
	suggestions []doc.Suggestion

	sections   []template.Section
	violations []template.Violation

	throttle     time.Duration
	lastReapply  time.Time
	reapplyTimer *time.Timer

	selection *Selection
	closed    bool
}

func NewSession(state *doc.State, cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ReapplyThrottle <= 0 {
		cfg.ReapplyThrottle = config.DefaultReapplyThrottle
	}
	if cfg.Feed == nil {
		cfg.Feed = NewActivityFeed()
	}
	s := &Session{
		state:    state,
		bus:      NewBus(),
		engine:   NewEngine(cfg.Logger),
		feed:     cfg.Feed,
		logger:   cfg.Logger,
		sections: cfg.Sections,
		throttle: cfg.ReapplyThrottle,
	}
	save := cfg.Save
	if save == nil {
		save = func(context.Context, *doc.State) error { return nil }
	}
	s.saver = NewSaver(
		SaverConfig{Debounce: cfg.Debounce, SavedWindow: cfg.SavedWindow},
		save,
		s.Snapshot,
		cfg.Logger,
	)
	s.saver.OnStatus(func(status SaveStatus) {
		s.feed.Publish(ActivityEvent{Kind: "save_status", Detail: map[string]string{"status": string(status)}})
	})
	s.checkTemplate()
	return s
}

// Bus exposes the session's event bus for handler registration.
func (s *Session) Bus() *Bus { return s.bus }

// Feed exposes the session's activity feed.
func (s *Session) Feed() *ActivityFeed { return s.feed }

// OnDocChange registers a named observer invoked with the state after every
// committed mutation.
func (s *Session) OnDocChange(name string, fn func(*doc.State)) {
	s.bus.Subscribe(EventDocumentMutated, name, func(ev Event) {
		if st, ok := ev.Data.(*doc.State); ok {
			fn(st)
		}
	})
}

// OnSelectionChange registers a named observer invoked with each resolved
// selection. The selection may be nil when focus leaves all blocks.
func (s *Session) OnSelectionChange(name string, fn func(*Selection)) {
	s.bus.Subscribe(EventSelectionChanged, name, func(ev Event) {
		sel, _ := ev.Data.(*Selection)
		fn(sel)
	})
}

// Snapshot returns a deep copy of the current document state.
func (s *Session) Snapshot() *doc.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// State returns the live document. Callers must not mutate it; use the
// session's commands.
func (s *Session) State() *doc.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SaveStatus reports the save pipeline's current state.
func (s *Session) SaveStatus() SaveStatus { return s.saver.Status() }

// OnSaveError registers the save failure observer.
func (s *Session) OnSaveError(fn func(error)) { s.saver.OnError(fn) }

// Violations returns the template check result from the last mutation.
func (s *Session) Violations() []template.Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.violations
}

// EditBlockText splices text over the rune range [start, end) of the
// block's concatenated content and commits the mutation.
func (s *Session) EditBlockText(blockID string, start, end int, text string) error {
	s.mu.Lock()
	block := s.state.BlockByID(blockID)
	if block == nil {
		s.mu.Unlock()
		return fmt.Errorf("block %s not found", blockID)
	}
	spliceSlots(doc.RunSlots(block), start, end, text)
	s.mu.Unlock()

	s.commit("edit", map[string]string{"block_id": blockID})
	return nil
}

// SetBlocks replaces the whole block list (structural edit) and commits.
func (s *Session) SetBlocks(blocks []doc.Block) {
	s.mu.Lock()
	s.state.Blocks = blocks
	s.mu.Unlock()
	s.commit("restructure", nil)
}

// SetSelection resolves a raw browser selection against the current state,
// records it, and publishes selectionChanged. Returns the resolved
// selection, nil when no block boundary was found.
func (s *Session) SetSelection(raw RawSelection) *Selection {
	s.mu.Lock()
	sel := ResolveSelection(s.state, raw)
	s.selection = sel
	s.mu.Unlock()
	s.bus.Publish(Event{Name: EventSelectionChanged, Data: sel})
	return sel
}

// Selection returns the last resolved selection, nil when none.
func (s *Session) Selection() *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// KeyPressed publishes a keyPressed event for subscribed handlers.
func (s *Session) KeyPressed(key string) {
	s.bus.Publish(Event{Name: EventKeyPressed, Data: key})
}

// SetComments replaces the comment list (e.g. after an API load) and
// re-applies highlights.
func (s *Session) SetComments(comments []doc.Comment) {
	s.mu.Lock()
	s.comments = comments
	s.mu.Unlock()
	s.requestReapply()
}

// SetSuggestions replaces the suggestion list and re-applies highlights.
func (s *Session) SetSuggestions(suggestions []doc.Suggestion) {
	s.mu.Lock()
	s.suggestions = suggestions
	s.mu.Unlock()
	s.requestReapply()
}

// AddComment appends a comment and applies its highlight immediately.
func (s *Session) AddComment(c doc.Comment) {
	s.mu.Lock()
	s.comments = append(s.comments, c)
	if c.Anchored() && !c.Resolved {
		s.engine.ApplyCommentHighlight(s.state, CommentHighlight{
			CommentID:    c.ID,
			BlockID:      c.BlockID,
			SelectedText: c.SelectedText,
			StartOffset:  *c.StartOffset,
			EndOffset:    *c.EndOffset,
		})
	}
	s.mu.Unlock()
	s.feed.Publish(ActivityEvent{Kind: "comment_added", Detail: map[string]string{"comment_id": c.ID, "block_id": c.BlockID}})
}

// RemoveComment drops a comment and clears its highlight.
func (s *Session) RemoveComment(commentID string) {
	s.mu.Lock()
	for i := range s.comments {
		if s.comments[i].ID == commentID {
			s.comments = append(s.comments[:i:i], s.comments[i+1:]...)
			break
		}
	}
	s.engine.RemoveCommentHighlight(s.state, commentID)
	s.mu.Unlock()
	s.feed.Publish(ActivityEvent{Kind: "comment_removed", Detail: map[string]string{"comment_id": commentID}})
}

// AddSuggestion appends a pending suggestion and applies its highlight.
func (s *Session) AddSuggestion(sug doc.Suggestion) {
	s.mu.Lock()
	s.suggestions = append(s.suggestions, sug)
	s.engine.ApplySuggestionHighlight(s.state, SuggestionHighlight{
		SuggestionID: sug.ID,
		BlockID:      sug.BlockID,
		Text:         sug.SelectionText,
		Status:       sug.Status.MarkStatus(),
		StartOffset:  sug.StartOffset,
		EndOffset:    sug.EndOffset,
	})
	s.mu.Unlock()
	s.feed.Publish(ActivityEvent{Kind: "suggestion_added", Detail: map[string]string{"suggestion_id": sug.ID, "block_id": sug.BlockID}})
}

// AcceptSuggestion replaces the suggested range with the improved text,
// marks the suggestion accepted, and commits the mutation. The accepted
// mark stays visible as an edit record.
func (s *Session) AcceptSuggestion(suggestionID string) error {
	s.mu.Lock()
	sug := s.suggestionByID(suggestionID)
	if sug == nil {
		s.mu.Unlock()
		return fmt.Errorf("suggestion %s not found", suggestionID)
	}
	if !s.engine.ReplaceTextBySuggestionID(s.state, sug, sug.ImprovedText) {
		s.mu.Unlock()
		return fmt.Errorf("suggestion %s anchor not found", suggestionID)
	}
	sug.Status = doc.SuggestionAccepted
	s.mu.Unlock()

	s.feed.Publish(ActivityEvent{Kind: "suggestion_accepted", Detail: map[string]string{"suggestion_id": suggestionID}})
	s.commit("suggestion_accept", map[string]string{"suggestion_id": suggestionID})
	return nil
}

// RejectSuggestion marks the suggestion rejected and recolors its mark.
func (s *Session) RejectSuggestion(suggestionID string) error {
	s.mu.Lock()
	sug := s.suggestionByID(suggestionID)
	if sug == nil {
		s.mu.Unlock()
		return fmt.Errorf("suggestion %s not found", suggestionID)
	}
	sug.Status = doc.SuggestionRejected
	s.engine.ApplySuggestionHighlight(s.state, SuggestionHighlight{
		SuggestionID: sug.ID,
		BlockID:      sug.BlockID,
		Text:         sug.SelectionText,
		Status:       doc.MarkRejected,
		StartOffset:  sug.StartOffset,
		EndOffset:    sug.EndOffset,
	})
	s.mu.Unlock()
	s.feed.Publish(ActivityEvent{Kind: "suggestion_rejected", Detail: map[string]string{"suggestion_id": suggestionID}})
	return nil
}

// RemoveSuggestion drops a suggestion and clears its mark.
func (s *Session) RemoveSuggestion(suggestionID string) {
	s.mu.Lock()
	for i := range s.suggestions {
		if s.suggestions[i].ID == suggestionID {
			s.suggestions = append(s.suggestions[:i:i], s.suggestions[i+1:]...)
			break
		}
	}
	s.engine.RemoveSuggestionHighlight(s.state, suggestionID)
	s.mu.Unlock()
}

// CommentIDsAt resolves a click at a block offset to every comment id
// covering that point.
func (s *Session) CommentIDsAt(blockID string, offset int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.CommentIDsAt(s.state, blockID, offset)
}

// Save persists immediately, bypassing the debounce window.
func (s *Session) Save(ctx context.Context) {
	s.saver.SaveNow(ctx)
}

// Close stops timers and detaches the session from its activity feed.
// The document state is discarded with the session.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.reapplyTimer != nil {
		s.reapplyTimer.Stop()
		s.reapplyTimer = nil
	}
	s.mu.Unlock()
	s.saver.Close()
}

// commit finalizes a mutation: template check, highlight re-apply request,
// observer notification, and the save pipeline's debounce clock.
func (s *Session) commit(kind string, detail map[string]string) {
	s.checkTemplate()
	s.requestReapply()
	s.bus.Publish(Event{Name: EventDocumentMutated, Data: s.State()})
	s.feed.Publish(ActivityEvent{Kind: kind, Detail: detail})
	s.saver.NoteMutation()
}

func (s *Session) checkTemplate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sections) == 0 {
		s.violations = nil
		return
	}
	s.violations = template.Check(s.sections, s.state.Headings())
}

// requestReapply coalesces highlight re-application: immediate when the
// throttle interval has passed, otherwise one trailing re-apply fires at
// the end of the interval no matter how many mutations arrived meanwhile.
func (s *Session) requestReapply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	since := time.Since(s.lastReapply)
	if since >= s.throttle {
		s.reapplyLocked()
		return
	}
	if s.reapplyTimer == nil {
		s.reapplyTimer = time.AfterFunc(s.throttle-since, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.reapplyTimer = nil
			if !s.closed {
				s.reapplyLocked()
			}
		})
	}
}

func (s *Session) reapplyLocked() {
	s.engine.Reapply(s.state, s.comments, s.suggestions)
	s.lastReapply = time.Now()
}

func (s *Session) suggestionByID(id string) *doc.Suggestion {
	for i := range s.suggestions {
		if s.suggestions[i].ID == id {
			return &s.suggestions[i]
		}
	}
	return nil
}
