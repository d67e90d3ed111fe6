package slides

import (
	"fmt"
	"math"

	"github.com/LydiaBrothers/filmslides/internal/core/aggregation"
	"github.com/LydiaBrothers/filmslides/internal/core/annotate"
	"github.com/LydiaBrothers/filmslides/internal/core/filter"
	"github.com/LydiaBrothers/filmslides/internal/core/layout"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/render"
)

const (
	defaultBins = 40
	defaultFill = "#69b3a2"
)

// histogram bins one numeric field of the films in the selected genre and
// marks the median.
type histogram struct {
	base
}

func (h *histogram) Controls(ds *dataset.Dataset) ControlSpec {
	return ControlSpec{Dropdown: genreDropdown(ds)}
}

func (h *histogram) Draw(ds *dataset.Dataset, c Controls, s annotate.State) (Frame, annotate.State) {
	width, height := h.canvas.InnerWidth(), h.canvas.InnerHeight()
	dom := h.def.Domain
	bins := h.def.Bins
	if bins <= 0 {
		bins = defaultBins
	}
	fill := h.def.Fill
	if fill == "" {
		fill = defaultFill
	}

	records := filter.Filter(ds.Records, filter.GenreIs(c.Genre))
	buckets := aggregation.Histogram(records, h.def.Field, dom, aggregation.NiceThresholds(dom, bins))

	top := 0
	for _, b := range buckets {
		top = max(top, b.Count)
	}
	x := layout.NewLinear(dom.Lo, dom.Hi, 0, width)
	y := layout.NewLinear(0, float64(max(top, 1)), height, 0)

	nodes := make([]reconcile.Node, 0, len(buckets))
	for _, b := range buckets {
		left := x.Map(b.Start) + 1
		w := math.Max(0, x.Map(b.End)-x.Map(b.Start)-1)
		barTop := y.Map(float64(b.Count))
		nodes = append(nodes, reconcile.Node{
			Key:      formatNumber(b.Start),
			Kind:     reconcile.KindRect,
			Geometry: reconcile.Geometry{X: left, Y: barTop, W: w, H: height - barTop},
			Baseline: reconcile.Geometry{X: left, Y: height, W: w},
			Class:    "bar",
			Fill:     fill,
			Label:    fmt.Sprintf("%s to %s: %d", formatNumber(b.Start), formatNumber(b.End), b.Count),
		})
	}

	values := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := aggregation.FloatValue(r, h.def.Field); ok && dom.Contains(v) {
			values = append(values, v)
		}
	}
	label := annotate.MedianLabel("Median", annotate.Median(values), x.Map, width/2, labelY)

	frame := Frame{
		Slide:    h.def.Name,
		Controls: c,
		Matched:  len(records),
		Nodes:    nodes,
		Label:    label,
		Buckets:  buckets,
	}
	frame.Document = h.document(
		&render.Axis{Scale: x, Ticks: 10, Label: h.def.XLabel},
		&render.Axis{Scale: y, Ticks: 5, Label: h.def.YLabel},
		&label,
	)
	return frame, s
}

// genreDropdown offers "All" followed by every genre, most frequent first.
func genreDropdown(ds *dataset.Dataset) *Dropdown {
	genres := ds.Genres()
	opts := make([]string, 0, len(genres)+1)
	opts = append(opts, filter.AllGenres)
	for _, g := range genres {
		opts = append(opts, g.Key)
	}
	return &Dropdown{Name: ControlGenre, Label: "Genre", Options: opts, Default: filter.AllGenres}
}
