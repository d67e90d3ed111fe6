package reconcile

// Kind is the shape drawn for a node.
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindPath   Kind = "path"
	KindPoint  Kind = "point"
)

// Geometry is the screen-space state of a shape. Which fields matter depends
// on the Kind: rects use X, Y, W, H; circles and points use X, Y, R; paths
// use D.
type Geometry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`
	R float64 `json:"r,omitempty"`
	D string  `json:"d,omitempty"`
}

// Node is one drawn shape keyed by a stable identity (bucket start, group
// label, record title).
type Node struct {
	Key      string   `json:"key"`
	Kind     Kind     `json:"kind"`
	Geometry Geometry `json:"geometry"`

	// Baseline is the collapsed state a node enters from and exits to:
	// zero height on the axis for bars, zero radius for circles.
	Baseline Geometry `json:"-"`

	Class string `json:"class,omitempty"`
	Fill  string `json:"fill,omitempty"`
	Label string `json:"label,omitempty"`
}

// Scene is the set of nodes on screen after a redraw, in draw order.
type Scene struct {
	Nodes []Node `json:"nodes"`
}

// Keys returns the node keys in draw order.
func (s Scene) Keys() []string {
	keys := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		keys[i] = n.Key
	}
	return keys
}

// Lookup returns the node with the given key.
func (s Scene) Lookup(key string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}

// Len reports the number of nodes in the scene.
func (s Scene) Len() int { return len(s.Nodes) }
