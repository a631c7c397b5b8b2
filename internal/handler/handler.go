package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/certlab/kcnasim/internal/exam"
	"github.com/certlab/kcnasim/internal/model"
)

// Handler exposes the exam engine over a JSON API. Per state it returns
// exactly the data a frontend needs to render it, and accepts the five user
// actions plus reset; expiry is the engine's own business.
type Handler struct {
	engine *exam.Engine
}

// New creates a new Handler.
func New(engine *exam.Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/state", h.handleState)
	r.Post("/api/exam/start", h.handleStart)
	r.Post("/api/exam/answer", h.handleAnswer)
	r.Post("/api/exam/next", h.handleNext)
	r.Post("/api/exam/previous", h.handlePrevious)
	r.Post("/api/exam/finish", h.handleFinish)
	r.Post("/api/exam/reset", h.handleReset)
	r.Get("/api/exam/review", h.handleReview)
}

// statePayload is the discriminated render payload for the current state.
type statePayload struct {
	Status model.SessionStatus `json:"status"`

	// NotStarted
	BankSize      int `json:"bank_size,omitempty"`
	ExamSize      int `json:"exam_size,omitempty"`
	Duration      int `json:"duration_seconds,omitempty"`
	PassThreshold int `json:"pass_threshold,omitempty"`

	// InProgress
	Question       *questionPayload `json:"question,omitempty"`
	Position       int              `json:"position,omitempty"`
	TotalQuestions int              `json:"total_questions,omitempty"`
	Answered       int              `json:"answered,omitempty"`
	TimeRemaining  int              `json:"time_remaining,omitempty"`

	// Completed
	Score  *int  `json:"score,omitempty"`
	Passed *bool `json:"passed,omitempty"`
}

type questionPayload struct {
	ID       string         `json:"id"`
	Prompt   string         `json:"prompt"`
	Options  []model.Choice `json:"options"`
	Selected model.Option   `json:"selected,omitempty"`
}

func (h *Handler) currentState() statePayload {
	sess := h.engine.Session()
	switch {
	case sess == nil:
		cfg := h.engine.Config()
		examSize := cfg.NumQuestions
		if bankSize := h.engine.BankSize(); examSize > bankSize {
			examSize = bankSize
		}
		return statePayload{
			Status:        model.StatusNotStarted,
			BankSize:      h.engine.BankSize(),
			ExamSize:      examSize,
			Duration:      int(cfg.Duration.Seconds()),
			PassThreshold: exam.PassThreshold,
		}
	case sess.Completed:
		return statePayload{
			Status:         model.StatusCompleted,
			TotalQuestions: len(sess.Questions),
			Answered:       len(sess.Answers),
			Score:          sess.Score,
			Passed:         sess.Passed,
			PassThreshold:  exam.PassThreshold,
		}
	default:
		current := sess.Current()
		selected, _ := sess.Answers.Get(current.ID)
		return statePayload{
			Status: model.StatusInProgress,
			Question: &questionPayload{
				ID:       current.ID,
				Prompt:   current.Prompt,
				Options:  current.Options(),
				Selected: selected,
			},
			Position:       sess.CurrentIndex + 1,
			TotalQuestions: len(sess.Questions),
			Answered:       len(sess.Answers),
			TimeRemaining:  sess.TimeRemaining,
		}
	}
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentState())
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, h.currentState())
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option model.Option `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Option.IsValid() {
		http.Error(w, "option must be one of A-E", http.StatusBadRequest)
		return
	}
	h.engine.SelectAnswer(req.Option)
	writeJSON(w, http.StatusOK, h.currentState())
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.engine.Advance()
	writeJSON(w, http.StatusOK, h.currentState())
}

func (h *Handler) handlePrevious(w http.ResponseWriter, r *http.Request) {
	h.engine.Retreat()
	writeJSON(w, http.StatusOK, h.currentState())
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	h.engine.Finish()
	writeJSON(w, http.StatusOK, h.currentState())
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	writeJSON(w, http.StatusOK, h.currentState())
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	entries := h.engine.ReviewEntries()
	if entries == nil {
		http.Error(w, "no completed attempt to review", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
