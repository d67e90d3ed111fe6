package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LydiaBrothers/filmslides/internal/core/annotate"
	"github.com/LydiaBrothers/filmslides/internal/core/layout"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
)

func bar(key string, x, h float64) reconcile.Node {
	return reconcile.Node{
		Key:      key,
		Kind:     reconcile.KindRect,
		Geometry: reconcile.Geometry{X: x, Y: 100 - h, W: 9, H: h},
		Baseline: reconcile.Geometry{X: x, Y: 100, W: 9},
		Fill:     "#69b3a2",
	}
}

func testDocument() Document {
	c := DefaultCanvas()
	return Document{
		Title:  "IMDB scores",
		Canvas: c,
		XAxis:  &Axis{Scale: layout.NewLinear(0, 10, 0, c.InnerWidth()), Ticks: 10, Label: "IMDB Score"},
		YAxis:  &Axis{Scale: layout.NewLinear(0, 20, c.InnerHeight(), 0), Ticks: 5, Label: "Count"},
		Label:  &annotate.Label{Text: "Median: 6.40", X: 300, Y: 10, Marker: 300, HasMarker: true},
	}
}

func TestCanvas(t *testing.T) {
	c := DefaultCanvas()
	require.Equal(t, 730.0, c.InnerWidth())
	require.Equal(t, 440.0, c.InnerHeight())
}

func TestSnapshot(t *testing.T) {
	scene := reconcile.Scene{Nodes: []reconcile.Node{bar("6.0", 10, 40), bar("6.5", 20, 60)}}

	var buf bytes.Buffer
	require.NoError(t, Snapshot(&buf, testDocument(), scene))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "<?xml"))
	require.Contains(t, out, `<g id="chart" transform="translate(40,20)"`)
	require.Contains(t, out, `id="`+NodeID("6.0")+`"`)
	require.Contains(t, out, `data-key="6.5"`)
	require.Contains(t, out, "Median: 6.40")
	require.Contains(t, out, "IMDB Score")
	require.Contains(t, out, `stroke-dasharray="4,3"`)
	require.NotContains(t, out, "<animate")
	require.NotContains(t, out, "NaN")
}

func TestSnapshot_Deterministic(t *testing.T) {
	scene := reconcile.Scene{Nodes: []reconcile.Node{bar("a", 1, 2), bar("b", 3, 4)}}
	a, err := Bytes(testDocument(), scene)
	require.NoError(t, err)
	b, err := Bytes(testDocument(), scene)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestAnimated(t *testing.T) {
	prev, _ := reconcile.Reconcile(reconcile.Scene{}, []reconcile.Node{bar("a", 10, 20), bar("gone", 30, 10)}, 0)
	_, plan := reconcile.Reconcile(prev, []reconcile.Node{bar("a", 10, 50), bar("new", 50, 5)}, 500*time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, Animated(&buf, testDocument(), plan))
	out := buf.String()

	require.Contains(t, out, `xlink:href="#`+NodeID("a")+`"`)
	require.Contains(t, out, `attributeName="height"`)
	require.Contains(t, out, `dur="0.5s"`)
	require.Contains(t, out, `fill="freeze"`)
	require.Contains(t, out, `class="enter"`)
	require.Contains(t, out, `class="exit"`)
	require.Contains(t, out, `attributeName="opacity"`)
}

func TestAnimated_PathMorph(t *testing.T) {
	node := reconcile.Node{Key: "English", Kind: reconcile.KindPath, Geometry: reconcile.Geometry{D: "M0,0L1,1Z"}}
	prev, _ := reconcile.Reconcile(reconcile.Scene{}, []reconcile.Node{node}, 0)
	node.Geometry.D = "M0,0L2,2Z"
	_, plan := reconcile.Reconcile(prev, []reconcile.Node{node}, 0)

	var buf bytes.Buffer
	require.NoError(t, Animated(&buf, Document{Canvas: DefaultCanvas()}, plan))
	require.Contains(t, buf.String(), `attributeName="d" from="M0,0L1,1Z" to="M0,0L2,2Z"`)
}

func TestFailureAndLoading(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Failure(&buf, DefaultCanvas(), "Histogram", "fetch: 404 Not Found"))
	require.Contains(t, buf.String(), "Failed to load data")
	require.Contains(t, buf.String(), "fetch: 404 Not Found")
	require.Contains(t, buf.String(), `id="chart"`)

	buf.Reset()
	require.NoError(t, Loading(&buf, DefaultCanvas(), "Histogram"))
	require.Contains(t, buf.String(), "Loading data")
}

func TestNodeID(t *testing.T) {
	tests := []struct {
		key    string
		prefix string
	}{
		{key: "Drama", prefix: "n-Drama-"},
		{key: "6.5", prefix: "n-6_5-"},
		{key: "Science fiction/Drama", prefix: "n-Science_fiction_Drama-"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			id := NodeID(tc.key)
			require.True(t, strings.HasPrefix(id, tc.prefix), id)
			require.Equal(t, id, NodeID(tc.key))
		})
	}
	require.NotEqual(t, NodeID("a.b"), NodeID("a/b"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestSnapshot_WriteError(t *testing.T) {
	err := Snapshot(failingWriter{}, testDocument(), reconcile.Scene{})
	require.EqualError(t, err, "broken pipe")
}
