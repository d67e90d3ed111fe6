package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LydiaBrothers/filmslides/internal/core/annotate"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/slides"
)

// Status is the state of a session's redraw machine.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRedrawing Status = "redrawing"
)

var (
	// ErrBusy is returned when a redraw is requested from inside another
	// redraw of the same session.
	ErrBusy = errors.New("session is redrawing")

	// ErrNotFound is returned for unknown or evicted session ids.
	ErrNotFound = errors.New("session not found")
)

// Result is the outcome of one redraw.
type Result struct {
	Frame slides.Frame
	Scene reconcile.Scene
	Plan  reconcile.Plan
	// Seq numbers the redraws of a session, starting at 1.
	Seq int
}

// Observer is called after every redraw, once the session is Idle again.
// ctx identifies that redraw.
type Observer func(ctx context.Context, s *Session, r Result)

type redrawKey struct{}

// Session is one viewer's presentation state: the scene on screen per slide
// and the annotation state carried between redraws. It captures the dataset
// current when it was created.
type Session struct {
	ID        string
	CreatedAt time.Time

	dataset  *dataset.Dataset
	deck     *slides.Deck
	observer Observer

	mu          sync.Mutex
	redrawing   atomic.Bool
	scenes      map[string]reconcile.Scene
	annotations annotate.State
	seq         int
}

// New returns an idle session with nothing on screen.
func New(id string, ds *dataset.Dataset, deck *slides.Deck, observer Observer) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		dataset:   ds,
		deck:      deck,
		observer:  observer,
		scenes:    make(map[string]reconcile.Scene),
	}
}

// Status reports whether a redraw is in progress.
func (s *Session) Status() Status {
	if s.redrawing.Load() {
		return StatusRedrawing
	}
	return StatusIdle
}

// Dataset returns the dataset snapshot the session draws from.
func (s *Session) Dataset() *dataset.Dataset {
	return s.dataset
}

// Scene returns what is on screen for the named slide.
func (s *Session) Scene(slide string) reconcile.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenes[slide]
}

// Annotations returns the annotation state after the last redraw. The map
// is shared with the session and must not be modified.
func (s *Session) Annotations() annotate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.annotations
}

// Apply redraws slide with controls c: Idle -> Redrawing -> Idle. The whole
// filter, aggregate, layout, reconcile and annotate pass runs under the
// session lock, so concurrent requests for one session queue up and each
// starts from the scene the previous one left. The Observer runs once the
// session is Idle again; calling Apply with the context it was given
// returns ErrBusy.
func (s *Session) Apply(ctx context.Context, slide string, c slides.Controls) (Result, error) {
	if owner, _ := ctx.Value(redrawKey{}).(*Session); owner == s {
		return Result{}, ErrBusy
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	sl, err := s.deck.Get(slide)
	if err != nil {
		return Result{}, err
	}
	resolved, err := s.deck.Resolve(s.dataset, sl, c)
	if err != nil {
		return Result{}, err
	}

	res := s.redraw(slide, sl, resolved)
	if s.observer != nil {
		s.observer(context.WithValue(ctx, redrawKey{}, s), s, res)
	}
	return res, nil
}

func (s *Session) redraw(name string, sl slides.Slide, c slides.Controls) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redrawing.Store(true)
	defer s.redrawing.Store(false)

	frame, next := sl.Draw(s.dataset, c, s.annotations)
	scene, plan := reconcile.Reconcile(s.scenes[name], frame.Nodes, sl.Definition().Transition)
	s.scenes[name] = scene
	s.annotations = next
	s.seq++

	return Result{Frame: frame, Scene: scene, Plan: plan, Seq: s.seq}
}

func (s *Session) String() string {
	return fmt.Sprintf("session %s (%s)", s.ID, s.Status())
}
