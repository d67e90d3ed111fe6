package render

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/LydiaBrothers/filmslides/internal/core/annotate"
	"github.com/LydiaBrothers/filmslides/internal/core/layout"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
)

// ContainerID is the id of the group every chart is drawn into.
const ContainerID = "chart"

// ContentType is the media type of everything this package writes.
const ContentType = "image/svg+xml"

const fontStyle = `font-family="Helvetica Neue,Helvetica,Arial,sans-serif" font-size="12px"`

// Margin is the space around the plot area, in pixels.
type Margin struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Canvas is the size of the SVG document.
type Canvas struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Margin Margin `json:"margin"`
}

// DefaultCanvas is 800x500 with room for axes on the left and bottom.
func DefaultCanvas() Canvas {
	return Canvas{Width: 800, Height: 500, Margin: Margin{Top: 20, Right: 30, Bottom: 40, Left: 40}}
}

// InnerWidth is the width of the plot area.
func (c Canvas) InnerWidth() float64 {
	return float64(c.Width - c.Margin.Left - c.Margin.Right)
}

// InnerHeight is the height of the plot area.
func (c Canvas) InnerHeight() float64 {
	return float64(c.Height - c.Margin.Top - c.Margin.Bottom)
}

// Category is a labelled position on a categorical axis.
type Category struct {
	Label string  `json:"label"`
	Pos   float64 `json:"pos"`
}

// Axis describes one axis. Numeric axes draw Scale ticks; categorical axes
// draw Categories instead.
type Axis struct {
	Scale      layout.Linear
	Ticks      int
	Label      string
	Categories []Category
}

// Document is everything around the nodes: canvas, axes, title and the
// annotation label.
type Document struct {
	Title  string
	Canvas Canvas
	XAxis  *Axis
	YAxis  *Axis
	Label  *annotate.Label
}

// Animated writes the plan as an SVG whose shapes start at their From
// geometry and animate to To with SMIL. Exiting shapes fade out.
func Animated(w io.Writer, d Document, plan reconcile.Plan) error {
	ew := &errWriter{w: w}
	canvas := begin(ew, d)

	dur := plan.Duration.Seconds()
	if dur <= 0 {
		dur = reconcile.DefaultDuration.Seconds()
	}
	canvas.Group(`class="nodes"`)
	for _, t := range plan.Transitions {
		drawTransition(canvas, t, dur)
	}
	canvas.Gend()

	end(canvas, d)
	return ew.err
}

// Snapshot writes the final state of a scene without animation.
func Snapshot(w io.Writer, d Document, scene reconcile.Scene) error {
	ew := &errWriter{w: w}
	canvas := begin(ew, d)

	canvas.Group(`class="nodes"`)
	for _, n := range scene.Nodes {
		drawNode(canvas, n, n.Geometry, "")
	}
	canvas.Gend()

	end(canvas, d)
	return ew.err
}

// Bytes renders a snapshot into memory.
func Bytes(d Document, scene reconcile.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := Snapshot(&buf, d, scene); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Failure renders the visible "failed to load" state.
func Failure(w io.Writer, c Canvas, title, msg string) error {
	return message(w, c, title, "Failed to load data", msg, "#b00020")
}

// Loading renders the placeholder shown until the dataset arrives.
func Loading(w io.Writer, c Canvas, title string) error {
	return message(w, c, title, "Loading data…", "", "#666")
}

func message(w io.Writer, c Canvas, title, headline, detail, color string) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(c.Width, c.Height, fontStyle)
	if title != "" {
		canvas.Title(title)
	}
	canvas.Group(`id="`+ContainerID+`"`, `class="status"`)
	canvas.Rect(0, 0, c.Width, c.Height, `fill="#fafafa"`)
	canvas.Text(c.Width/2, c.Height/2, headline, `text-anchor="middle"`, `font-size="20px"`, `fill="`+color+`"`)
	if detail != "" {
		canvas.Text(c.Width/2, c.Height/2+28, detail, `text-anchor="middle"`, `fill="#666"`)
	}
	canvas.Gend()
	canvas.End()
	return ew.err
}

func begin(w io.Writer, d Document) *svg.SVG {
	canvas := svg.New(w)
	canvas.Start(d.Canvas.Width, d.Canvas.Height, fontStyle)
	if d.Title != "" {
		canvas.Title(d.Title)
	}
	canvas.Group(`id="`+ContainerID+`"`, fmt.Sprintf(`transform="translate(%d,%d)"`, d.Canvas.Margin.Left, d.Canvas.Margin.Top))
	return canvas
}

func end(canvas *svg.SVG, d Document) {
	width, height := d.Canvas.InnerWidth(), d.Canvas.InnerHeight()
	if d.XAxis != nil {
		drawXAxis(canvas, *d.XAxis, width, height)
	}
	if d.YAxis != nil {
		drawYAxis(canvas, *d.YAxis, height)
	}
	if d.Label != nil {
		drawLabel(canvas, *d.Label, width, height)
	}
	canvas.Gend()
	canvas.End()
}

func drawTransition(canvas *svg.SVG, t reconcile.Transition, dur float64) {
	id := NodeID(t.Key)
	drawNode(canvas, t.Node, t.From, string(t.Phase))
	animate(canvas, id, t.Node.Kind, t.From, t.To, dur)
	if t.Phase == reconcile.PhaseExit {
		canvas.Animate("#"+id, "opacity", 1, 0, dur, 1, `fill="freeze"`)
	}
}

func drawNode(canvas *svg.SVG, n reconcile.Node, g reconcile.Geometry, phase string) {
	attrs := []string{`id="` + NodeID(n.Key) + `"`}
	class := strings.TrimSpace(n.Class + " " + phase)
	if class != "" {
		attrs = append(attrs, `class="`+class+`"`)
	}
	if n.Fill != "" {
		attrs = append(attrs, `fill="`+n.Fill+`"`)
	}
	attrs = append(attrs, `data-key="`+attrEscape(n.Key)+`"`)

	if n.Label != "" {
		canvas.Group()
		canvas.Title(n.Label)
		defer canvas.Gend()
	}

	switch n.Kind {
	case reconcile.KindRect:
		canvas.Rect(px(g.X), px(g.Y), px(g.W), px(g.H), attrs...)
	case reconcile.KindCircle, reconcile.KindPoint:
		canvas.Circle(px(g.X), px(g.Y), px(g.R), attrs...)
	case reconcile.KindPath:
		canvas.Path(g.D, attrs...)
	}
}

func animate(canvas *svg.SVG, id string, kind reconcile.Kind, from, to reconcile.Geometry, dur float64) {
	link := "#" + id
	step := func(attr string, a, b float64) {
		if px(a) != px(b) {
			canvas.Animate(link, attr, px(a), px(b), dur, 1, `fill="freeze"`)
		}
	}
	switch kind {
	case reconcile.KindRect:
		step("x", from.X, to.X)
		step("y", from.Y, to.Y)
		step("width", from.W, to.W)
		step("height", from.H, to.H)
	case reconcile.KindCircle, reconcile.KindPoint:
		step("cx", from.X, to.X)
		step("cy", from.Y, to.Y)
		step("r", from.R, to.R)
	case reconcile.KindPath:
		if from.D != to.D && from.D != "" && to.D != "" {
			fmt.Fprintf(canvas.Writer, `<animate xlink:href="%s" attributeName="d" from="%s" to="%s" dur="%gs" repeatCount="1" fill="freeze" />`+"\n",
				link, from.D, to.D, dur)
		}
	}
}

func drawXAxis(canvas *svg.SVG, a Axis, width, height float64) {
	y := px(height)
	canvas.Group(`class="axis x-axis"`, fmt.Sprintf(`transform="translate(0,%d)"`, y))
	canvas.Line(0, 0, px(width), 0, `stroke="#888"`)
	for _, t := range axisTicks(a) {
		x := px(t.Pos)
		canvas.Line(x, 0, x, 6, `stroke="#888"`)
		canvas.Text(x, 9, t.Label, `text-anchor="middle"`, `dy=".71em"`, `fill="#666"`)
	}
	if a.Label != "" {
		canvas.Text(px(width/2), 34, a.Label, `text-anchor="middle"`, `class="axis-label"`)
	}
	canvas.Gend()
}

func drawYAxis(canvas *svg.SVG, a Axis, height float64) {
	canvas.Group(`class="axis y-axis"`)
	canvas.Line(0, 0, 0, px(height), `stroke="#888"`)
	for _, t := range axisTicks(a) {
		y := px(t.Pos)
		canvas.Line(-6, y, 0, y, `stroke="#888"`)
		canvas.Text(-9, y, t.Label, `text-anchor="end"`, `dy=".32em"`, `fill="#666"`)
	}
	if a.Label != "" {
		canvas.Text(6, 6, a.Label, `dy=".71em"`, `class="axis-label"`)
	}
	canvas.Gend()
}

func axisTicks(a Axis) []Category {
	if len(a.Categories) > 0 {
		return a.Categories
	}
	n := a.Ticks
	if n <= 0 {
		n = 10
	}
	values := a.Scale.Ticks(n)
	out := make([]Category, len(values))
	for i, v := range values {
		out[i] = Category{Label: strconv.FormatFloat(v, 'f', -1, 64), Pos: a.Scale.Map(v)}
	}
	return out
}

func drawLabel(canvas *svg.SVG, l annotate.Label, width, height float64) {
	canvas.Group(`class="annotation"`)
	switch {
	case l.HasMarker && l.Horizontal:
		y := px(l.Marker)
		canvas.Line(0, y, px(width), y, `stroke="#333"`, `stroke-dasharray="4,3"`)
	case l.HasMarker:
		x := px(l.Marker)
		canvas.Line(x, 0, x, px(height), `stroke="#333"`, `stroke-dasharray="4,3"`)
	}
	canvas.Text(px(l.X), px(l.Y), l.Text, `text-anchor="middle"`, `font-weight="bold"`)
	canvas.Gend()
}

// NodeID turns a node key into an XML id that is stable across redraws.
func NodeID(key string) string {
	var b strings.Builder
	b.WriteString("n-")
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	fmt.Fprintf(&b, "-%08x", h.Sum32())
	return b.String()
}

// px rounds to whole pixels. Non-finite values collapse to 0 so a bad
// value can never produce an invalid attribute.
func px(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func attrEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}
