package slides

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LydiaBrothers/filmslides/internal/core/aggregation"
	"github.com/LydiaBrothers/filmslides/internal/core/annotate"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/render"
)

// Slide is one chart of the presentation. Draw is a pure function of its
// arguments: the same dataset, controls and annotation state always give
// the same frame.
type Slide interface {
	Name() string
	Definition() Definition

	// Controls lists the dropdown options and slider bounds for ds.
	Controls(ds *dataset.Dataset) ControlSpec

	// Draw runs filter, aggregate, layout and annotate for resolved
	// controls. The returned state replaces s for the next redraw.
	Draw(ds *dataset.Dataset, c Controls, s annotate.State) (Frame, annotate.State)
}

// Frame is the outcome of one Draw: the nodes to reconcile plus everything
// drawn around them.
type Frame struct {
	Slide    string               `json:"slide"`
	Controls Controls             `json:"controls"`
	Matched  int                  `json:"matched"` // records left after filtering
	Nodes    []reconcile.Node     `json:"nodes"`
	Label    annotate.Label       `json:"annotation"`
	Change   *annotate.Change     `json:"change,omitempty"`
	Buckets  []aggregation.Bucket `json:"buckets,omitempty"`
	Groups   []aggregation.Group  `json:"groups,omitempty"`
	Document render.Document      `json:"-"`
}

// New builds the slide described by def.
func New(def Definition, canvas render.Canvas) (Slide, error) {
	b := base{def: def, canvas: canvas}
	switch def.Kind {
	case KindHistogram:
		return &histogram{base: b}, nil
	case KindBubbles:
		return &bubbles{base: b}, nil
	case KindViolin:
		return &violin{base: b}, nil
	default:
		return nil, fmt.Errorf("slide %q: unsupported kind %q", def.Name, def.Kind)
	}
}

type base struct {
	def    Definition
	canvas render.Canvas
}

func (b base) Name() string           { return b.def.Name }
func (b base) Definition() Definition { return b.def }

func (b base) document(x, y *render.Axis, label *annotate.Label) render.Document {
	return render.Document{Title: b.def.Title, Canvas: b.canvas, XAxis: x, YAxis: y, Label: label}
}

// labelY is the baseline of the annotation text inside the plot area.
const labelY = 12

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Deck is the ordered set of slides served by one process.
type Deck struct {
	slides []Slide
	byName map[string]Slide

	mu      sync.Mutex
	cacheDS *dataset.Dataset
	specs   map[string]ControlSpec
}

// NewDeck builds every slide listed by repo. defaultTransition applies to
// definitions that set no transition of their own.
func NewDeck(ctx context.Context, repo Repository, canvas render.Canvas, defaultTransition time.Duration) (*Deck, error) {
	defs, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no slides defined")
	}

	d := &Deck{byName: make(map[string]Slide, len(defs))}
	for _, def := range defs {
		if def.Transition <= 0 {
			def.Transition = defaultTransition
		}
		s, err := New(def, canvas)
		if err != nil {
			return nil, err
		}
		d.slides = append(d.slides, s)
		d.byName[def.Name] = s
	}
	return d, nil
}

// Get returns the slide with the given name.
func (d *Deck) Get(name string) (Slide, error) {
	s, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlide, name)
	}
	return s, nil
}

// Slides returns the slides in presentation order.
func (d *Deck) Slides() []Slide {
	out := make([]Slide, len(d.slides))
	copy(out, d.slides)
	return out
}

// Controls returns the control spec of slide s for ds, computing it once
// per dataset.
func (d *Deck) Controls(ds *dataset.Dataset, s Slide) ControlSpec {
	d.mu.Lock()
	if d.cacheDS == ds {
		if spec, ok := d.specs[s.Name()]; ok {
			d.mu.Unlock()
			return spec
		}
	}
	d.mu.Unlock()

	spec := s.Controls(ds)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cacheDS != ds {
		d.cacheDS = ds
		d.specs = make(map[string]ControlSpec, len(d.slides))
	}
	d.specs[s.Name()] = spec
	return spec
}

// Resolve checks c against the controls slide s offers for ds.
func (d *Deck) Resolve(ds *dataset.Dataset, s Slide, c Controls) (Controls, error) {
	return Resolve(d.Controls(ds, s), c)
}

// Prerender draws and renders the default frame of every slide
// concurrently. It warms the controls cache and surfaces a slide that
// cannot draw before the first viewer arrives.
func (d *Deck) Prerender(ctx context.Context, ds *dataset.Dataset) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range d.slides {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			c, err := d.Resolve(ds, s, Controls{})
			if err != nil {
				return fmt.Errorf("slide %q: default controls: %w", s.Name(), err)
			}
			frame, _ := s.Draw(ds, c, nil)
			_, plan := reconcile.Reconcile(reconcile.Scene{}, frame.Nodes, s.Definition().Transition)
			if err := render.Animated(io.Discard, frame.Document, plan); err != nil {
				return fmt.Errorf("slide %q: render: %w", s.Name(), err)
			}
			slog.Debug("Prerendered slide", "slide", s.Name(), "nodes", len(frame.Nodes), "elapsed", time.Since(start))
			return nil
		})
	}
	return g.Wait()
}
