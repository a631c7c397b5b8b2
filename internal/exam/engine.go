// Package exam implements the exam session engine: randomized selection,
// scoring, the attempt state machine, and the review projection.
package exam

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/certlab/kcnasim/internal/model"
)

// Defaults for a full-length attempt.
const (
	DefaultNumQuestions = 90
	DefaultDuration     = 40 * time.Minute
)

// ErrEmptyBank is returned by Start when the bank has no usable records.
var ErrEmptyBank = errors.New("cannot start an exam from an empty bank")

// Gateway is the durable storage the engine mirrors the attempt into.
// Saves happen on every mutating transition; the in-memory session stays
// authoritative, so save failures are logged and swallowed.
type Gateway interface {
	SaveSession(s *model.ExamSession) error
	// LoadSession returns (nil, nil) when the slot is absent or malformed.
	LoadSession() (*model.ExamSession, error)
	ClearSession() error
	ArchiveAttempt(s *model.ExamSession) error
}

// Config holds engine parameters. Zero values fall back to defaults, so
// tests can inject a seeded random source, a fixed clock, and a tick
// interval long enough to keep the background timer out of the way.
type Config struct {
	NumQuestions int
	Duration     time.Duration
	Rand         *rand.Rand
	Now          func() time.Time
	TickInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.NumQuestions <= 0 {
		c.NumQuestions = DefaultNumQuestions
	}
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Engine drives the single in-progress attempt. There is at most one
// session in memory; a mutex serializes transitions because the HTTP
// surface may call in concurrently, but every transition still runs to
// completion before the next one is processed.
type Engine struct {
	mu      sync.Mutex
	bank    model.QuestionBank
	gateway Gateway
	cfg     Config

	session     *model.ExamSession
	cancelTimer context.CancelFunc
}

// NewEngine creates an engine over a loaded bank.
func NewEngine(bank model.QuestionBank, gateway Gateway, cfg Config) *Engine {
	return &Engine{
		bank:    bank,
		gateway: gateway,
		cfg:     cfg.withDefaults(),
	}
}

// Start materializes a fresh attempt: a randomized selection from the bank,
// no answers, position zero, a full time budget. It fails on an empty bank
// and is a no-op when an attempt already exists (reset first).
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return nil
	}
	if len(e.bank) == 0 {
		return ErrEmptyBank
	}

	e.session = &model.ExamSession{
		ID:            uuid.NewString(),
		Questions:     Select(e.cfg.Rand, e.bank, e.cfg.NumQuestions),
		CurrentIndex:  0,
		Answers:       make(model.AnswerSet),
		StartTime:     e.cfg.Now(),
		TimeRemaining: int(e.cfg.Duration.Seconds()),
	}
	e.persistLocked()
	e.startTimerLocked()
	return nil
}

// Resume adopts a previously persisted in-progress attempt, restarting its
// countdown with the remaining budget. A missing, malformed, or completed
// slot leaves the engine in NotStarted and reports false.
func (e *Engine) Resume() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return false
	}
	s, err := e.gateway.LoadSession()
	if err != nil {
		slog.Warn("load persisted session", "error", err)
		return false
	}
	if s == nil || s.Completed || len(s.Questions) == 0 {
		return false
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return false
	}
	if s.Answers == nil {
		s.Answers = make(model.AnswerSet)
	}
	if s.TimeRemaining < 0 {
		s.TimeRemaining = 0
	}
	e.session = s
	e.startTimerLocked()
	return true
}

// SelectAnswer records or overwrites the answer for the current question.
// It does not advance. Calls with no active attempt, a finished attempt, or
// a letter the current question does not carry are tolerated no-ops.
func (e *Engine) SelectAnswer(o model.Option) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.session.Completed {
		return
	}
	current := e.session.Current()
	if _, ok := current.OptionText(o); !ok {
		return
	}
	e.session.Answers[current.ID] = o
	e.persistLocked()
}

// Advance moves to the next question. Skipping an unanswered question is
// allowed. At the last question it behaves exactly as Finish.
func (e *Engine) Advance() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.session.Completed {
		return
	}
	if e.session.CurrentIndex >= len(e.session.Questions)-1 {
		e.finishLocked()
		return
	}
	e.session.CurrentIndex++
	e.persistLocked()
}

// Retreat moves back one question; a no-op at position zero.
func (e *Engine) Retreat() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.session.Completed || e.session.CurrentIndex == 0 {
		return
	}
	e.session.CurrentIndex--
	e.persistLocked()
}

// Finish scores the attempt over its own questions and answers, marks it
// completed, and freezes it. Idempotent: repeated calls are no-ops.
func (e *Engine) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishLocked()
}

// Tick consumes one logical second of the time budget. Reaching zero
// expires the attempt, which behaves exactly as Finish. Ticks against an
// absent or completed attempt are no-ops.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.session.Completed {
		return
	}
	if e.session.TimeRemaining > 0 {
		e.session.TimeRemaining--
	}
	if e.session.TimeRemaining == 0 {
		e.finishLocked()
		return
	}
	e.persistLocked()
}

// Reset discards the attempt and its persisted copy, returning the engine
// to NotStarted from any state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimerLocked()
	e.session = nil
	if err := e.gateway.ClearSession(); err != nil {
		slog.Warn("clear persisted session", "error", err)
	}
}

// Close cancels the countdown without touching persisted state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
}

// Status reports the current lifecycle state.
func (e *Engine) Status() model.SessionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.session == nil:
		return model.StatusNotStarted
	case e.session.Completed:
		return model.StatusCompleted
	default:
		return model.StatusInProgress
	}
}

// Session returns a snapshot of the attempt, or nil when there is none.
func (e *Engine) Session() *model.ExamSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// ReviewEntries returns the review projection for a completed attempt and
// nil otherwise.
func (e *Engine) ReviewEntries() []model.ReviewEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || !e.session.Completed {
		return nil
	}
	return Review(e.session.Questions, e.session.Answers)
}

// BankSize returns the number of records available for selection.
func (e *Engine) BankSize() int {
	return len(e.bank)
}

// Config returns the engine parameters after defaulting.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) finishLocked() {
	if e.session == nil || e.session.Completed {
		return
	}
	score, err := Score(e.session.Questions, e.session.Answers)
	if err != nil {
		// Unreachable: Start rejects empty banks and Resume rejects
		// empty question sets.
		slog.Error("score attempt", "error", err)
		return
	}
	passed := Passed(score)
	e.session.Completed = true
	e.session.Score = &score
	e.session.Passed = &passed
	e.stopTimerLocked()
	e.persistLocked()
	if err := e.gateway.ArchiveAttempt(e.session.Clone()); err != nil {
		slog.Warn("archive attempt", "id", e.session.ID, "error", err)
	}
	slog.Info("attempt completed", "id", e.session.ID, "score", score, "passed", passed)
}

// persistLocked mirrors the full session into durable storage. Failures are
// logged, not propagated: the in-memory session is the source of truth.
func (e *Engine) persistLocked() {
	if err := e.gateway.SaveSession(e.session.Clone()); err != nil {
		slog.Warn("persist session", "error", err)
	}
}

// startTimerLocked scopes the countdown goroutine to the lifetime of the
// in-progress attempt. It is cancelled, not merely ignored, on any
// transition out of InProgress so a stray tick cannot revive cleared state.
func (e *Engine) startTimerLocked() {
	e.stopTimerLocked()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelTimer = cancel
	go e.runTimer(ctx)
}

func (e *Engine) stopTimerLocked() {
	if e.cancelTimer != nil {
		e.cancelTimer()
		e.cancelTimer = nil
	}
}

func (e *Engine) runTimer(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}
