package presentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/render"
	"github.com/LydiaBrothers/filmslides/internal/session"
	"github.com/LydiaBrothers/filmslides/internal/slides"
)

// Redraw outcomes reported to the RedrawRecorder.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeBusy    = "busy"
	OutcomeError   = "error"
)

// DatasetProvider is the part of *dataset.Loader the API depends on.
type DatasetProvider interface {
	Current() (*dataset.Dataset, error)
	State() dataset.State
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// RedrawRecorder receives redraw telemetry. *metrics.Collector implements it.
type RedrawRecorder interface {
	ObserveRedraw(slide, outcome string, elapsed time.Duration)
}

// Service serves the slides, their controls and per-session redraws over HTTP.
type Service struct {
	datasets DatasetProvider
	deck     *slides.Deck
	sessions *session.Store
	canvas   render.Canvas
	recorder RedrawRecorder
}

// NewService wires the API. rec may be nil.
func NewService(datasets DatasetProvider, deck *slides.Deck, sessions *session.Store, canvas render.Canvas, rec RedrawRecorder) *Service {
	return &Service{
		datasets: datasets,
		deck:     deck,
		sessions: sessions,
		canvas:   canvas,
		recorder: rec,
	}
}

// LogRedraw is a session.Observer that logs every completed redraw.
func LogRedraw(_ context.Context, s *session.Session, r session.Result) {
	slog.Debug("Redrew slide",
		"session_id", s.ID,
		"slide", r.Frame.Slide,
		"seq", r.Seq,
		"matched", r.Frame.Matched,
		"enter", len(r.Plan.Changes.Enter),
		"update", len(r.Plan.Changes.Update),
		"exit", len(r.Plan.Changes.Exit),
	)
}

func (s *Service) observe(slide, outcome string, elapsed time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveRedraw(slide, outcome, elapsed)
	}
}
