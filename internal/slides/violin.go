package slides

import (
	"math"
	"strconv"
	"strings"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/LydiaBrothers/filmslides/internal/core/aggregation"
	"github.com/LydiaBrothers/filmslides/internal/core/annotate"
	"github.com/LydiaBrothers/filmslides/internal/core/filter"
	"github.com/LydiaBrothers/filmslides/internal/core/layout"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/render"
)

const (
	defaultMaxGroups = 6
	defaultPointSize = 3
	scoreStep        = 0.5
)

// violin draws the score distribution of the most common languages as
// mirrored density shapes with one jittered point per film, keeping only
// films at or above the selected minimum score.
type violin struct {
	base
}

func (v *violin) Controls(ds *dataset.Dataset) ControlSpec {
	dom := v.def.Domain
	hi := dom.Hi
	if _, top, ok := ds.ScoreRange(); ok {
		hi = math.Max(dom.Lo, math.Floor(top/scoreStep)*scoreStep)
	}
	return ControlSpec{Slider: &Slider{
		Name:    ControlScore,
		Label:   "Minimum score",
		Min:     dom.Lo,
		Max:     hi,
		Step:    scoreStep,
		Default: dom.Lo,
	}}
}

// languages returns the categories drawn on the x axis. They depend on the
// dataset only, so the axis stays put while the slider moves.
func (v *violin) languages(ds *dataset.Dataset) []string {
	n := v.def.MaxGroups
	if n <= 0 {
		n = defaultMaxGroups
	}
	var out []string
	for _, g := range ds.Languages() {
		if len(out) == n {
			break
		}
		out = append(out, g.Key)
	}
	return out
}

func (v *violin) Draw(ds *dataset.Dataset, c Controls, s annotate.State) (Frame, annotate.State) {
	width, height := v.canvas.InnerWidth(), v.canvas.InnerHeight()
	dom := v.def.Domain
	field := v.def.Field
	radius := v.def.PointSize
	if radius <= 0 {
		radius = defaultPointSize
	}
	fill := v.def.Fill
	if fill == "" {
		fill = defaultFill
	}

	records := ds.Records
	if c.Score != nil {
		records = filter.Filter(records, filter.ScoreAtLeast(*c.Score))
	}

	langs := v.languages(ds)
	byLang := make(map[string][]v1.Record, len(langs))
	for _, l := range langs {
		byLang[strings.ToLower(l)] = nil
	}
	matched := 0
	for _, r := range records {
		k := strings.ToLower(r.Language)
		if rs, ok := byLang[k]; ok {
			byLang[k] = append(rs, r)
			matched++
		}
	}

	y := layout.NewLinear(dom.Lo, dom.Hi, height, 0)
	band := width
	if len(langs) > 0 {
		band = width / float64(len(langs))
	}
	half := band * 0.45

	profiles := make([]layout.Profile, len(langs))
	groups := make([]aggregation.Group, 0, len(langs))
	maxPeak := 0.0
	for i, l := range langs {
		values := fieldValues(byLang[strings.ToLower(l)], field)
		profiles[i] = layout.Violin(l, values, dom.Lo, dom.Hi, v.def.Points)
		maxPeak = math.Max(maxPeak, profiles[i].Peak)
	}

	var (
		nodes      []reconcile.Node
		categories []render.Category
		all        []float64
	)
	for i, l := range langs {
		cx := band * (float64(i) + 0.5)
		categories = append(categories, render.Category{Label: l, Pos: cx})
		nodes = append(nodes, reconcile.Node{
			Key:      "violin/" + l,
			Kind:     reconcile.KindPath,
			Geometry: reconcile.Geometry{X: cx, D: violinPath(profiles[i], cx, y, maxPeak, half)},
			Baseline: reconcile.Geometry{X: cx, D: violinPath(profiles[i], cx, y, maxPeak, 0)},
			Class:    "violin",
			Fill:     fill,
			Label:    l + ": " + strconv.Itoa(profiles[i].N) + " films",
		})

		members := byLang[strings.ToLower(l)]
		if grouped, _ := aggregation.GroupBy(members, aggregation.ByLanguage, field, aggregation.OpMean); len(grouped) > 0 {
			groups = append(groups, grouped...)
		}
		seen := make(map[string]int, len(members))
		for _, r := range members {
			score, ok := aggregation.FloatValue(r, field)
			if !ok {
				continue
			}
			all = append(all, score)
			key := filmKey(r, l, seen)
			px := cx + layout.Jitter(key, band*0.2)
			py := y.Map(score)
			nodes = append(nodes, reconcile.Node{
				Key:      key,
				Kind:     reconcile.KindPoint,
				Geometry: reconcile.Geometry{X: px, Y: py, R: radius},
				Baseline: reconcile.Geometry{X: px, Y: py},
				Class:    "film",
				Fill:     "#333",
				Label:    r.Title + " (" + formatNumber(score) + ")",
			})
		}
	}

	label := annotate.MedianLabelY("Median", annotate.Median(all), y.Map, width-band/2, labelY)
	frame := Frame{
		Slide:    v.def.Name,
		Controls: c,
		Matched:  matched,
		Nodes:    nodes,
		Label:    label,
		Groups:   groups,
	}
	frame.Document = v.document(
		&render.Axis{Categories: categories, Label: v.def.XLabel},
		&render.Axis{Scale: y, Ticks: 5, Label: v.def.YLabel},
		&label,
	)
	return frame, s
}

func fieldValues(records []v1.Record, field string) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := aggregation.FloatValue(r, field); ok {
			out = append(out, v)
		}
	}
	return out
}

// violinPath outlines p mirrored around cx. With halfWidth 0 it collapses
// to a vertical line with the same number of points, which is what a
// violin grows from and shrinks back to.
func violinPath(p layout.Profile, cx float64, y layout.Linear, maxPeak, halfWidth float64) string {
	if len(p.At) == 0 {
		return ""
	}
	var b strings.Builder
	point := func(cmd byte, x, py float64) {
		b.WriteByte(cmd)
		b.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(py, 'f', 2, 64))
	}
	for i, at := range p.At {
		cmd := byte('L')
		if i == 0 {
			cmd = 'M'
		}
		point(cmd, cx+p.Width(i, maxPeak, halfWidth), y.Map(at))
	}
	for i := len(p.At) - 1; i >= 0; i-- {
		point('L', cx-p.Width(i, maxPeak, halfWidth), y.Map(p.At[i]))
	}
	b.WriteByte('Z')
	return b.String()
}

// filmKey identifies a film point. Films sharing title, year and language
// get an occurrence suffix in dataset order.
func filmKey(r v1.Record, lang string, seen map[string]int) string {
	key := "film/" + lang + "/" + r.Title + "/" + strconv.Itoa(r.Year)
	n := seen[key]
	seen[key] = n + 1
	if n > 0 {
		key += "#" + strconv.Itoa(n)
	}
	return key
}
