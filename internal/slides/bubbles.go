package slides

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LydiaBrothers/filmslides/internal/core/aggregation"
	"github.com/LydiaBrothers/filmslides/internal/core/annotate"
	"github.com/LydiaBrothers/filmslides/internal/core/filter"
	"github.com/LydiaBrothers/filmslides/internal/core/layout"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
)

const defaultBubblePadding = 3

// palette is d3's schemeTableau10.
var palette = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// bubbles packs one circle per genre, sized by the number of films that
// premiered in or before the selected year, and tracks how the selected
// (or largest) genre changed since the last redraw.
type bubbles struct {
	base
}

func (b *bubbles) Controls(ds *dataset.Dataset) ControlSpec {
	lo, hi, _ := ds.YearRange()
	return ControlSpec{
		Dropdown: genreDropdown(ds),
		Slider: &Slider{
			Name:    ControlYear,
			Label:   "Premiered in or before",
			Min:     float64(lo),
			Max:     float64(hi),
			Step:    1,
			Default: float64(hi),
		},
	}
}

func (b *bubbles) Draw(ds *dataset.Dataset, c Controls, s annotate.State) (Frame, annotate.State) {
	width, height := b.canvas.InnerWidth(), b.canvas.InnerHeight()
	padding := b.def.Padding
	if padding <= 0 {
		padding = defaultBubblePadding
	}

	records := ds.Records
	if c.Year != nil {
		records = filter.Filter(records, filter.YearAtMost(*c.Year))
	}
	groups := aggregation.CountBy(records, aggregation.ByEachGenre)

	items := make([]layout.Weighted, len(groups))
	for i, g := range groups {
		items[i] = layout.Weighted{Key: g.Key, Weight: g.Value.InexactFloat64()}
	}
	packing := layout.PackInto(items, width, height, padding)

	colors := genreColors(ds)
	nodes := make([]reconcile.Node, 0, len(packing.Circles))
	for _, circle := range packing.Circles {
		nodes = append(nodes, reconcile.Node{
			Key:      circle.Key,
			Kind:     reconcile.KindCircle,
			Geometry: reconcile.Geometry{X: circle.X, Y: circle.Y, R: circle.R},
			Baseline: reconcile.Geometry{X: circle.X, Y: circle.Y},
			Class:    "bubble",
			Fill:     colors[circle.Key],
			Label:    fmt.Sprintf("%s: %s", circle.Key, formatNumber(circle.Weight)),
		})
	}

	frame := Frame{
		Slide:    b.def.Name,
		Controls: c,
		Matched:  len(records),
		Nodes:    nodes,
		Groups:   groups,
	}

	tracked := c.Genre
	if tracked == "" || strings.EqualFold(tracked, filter.AllGenres) {
		tracked = ""
		if sorted := aggregation.SortByValueDesc(groups); len(sorted) > 0 {
			tracked = sorted[0].Key
		}
	}

	next := s
	if tracked == "" {
		frame.Label = annotate.Empty(width/2, labelY)
	} else {
		current := decimal.Zero
		if g, ok := aggregation.Lookup(groups, tracked); ok {
			current = g.Value
		}
		var change annotate.Change
		change, next = annotate.Delta(s, b.def.Name+"/"+tracked, current)
		change.Key = tracked
		frame.Change = &change
		frame.Label = annotate.DeltaLabel(change, width/2, labelY)
	}

	label := frame.Label
	frame.Document = b.document(nil, nil, &label)
	return frame, next
}

// genreColors assigns palette colours by genre rank in the whole dataset,
// so a genre keeps its colour whatever the controls are.
func genreColors(ds *dataset.Dataset) map[string]string {
	genres := ds.Genres()
	out := make(map[string]string, len(genres))
	for i, g := range genres {
		out[g.Key] = palette[i%len(palette)]
	}
	return out
}
