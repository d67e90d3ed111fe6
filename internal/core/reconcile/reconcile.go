package reconcile

import "time"

// DefaultDuration is the transition length used when a slide sets none.
const DefaultDuration = 750 * time.Millisecond

// Phase tells how a node takes part in a redraw.
type Phase string

const (
	PhaseEnter  Phase = "enter"
	PhaseUpdate Phase = "update"
	PhaseExit   Phase = "exit"
)

// Changes is the key-level outcome of comparing two scenes. The three sets
// are disjoint and together hold every key of prev and next exactly once.
type Changes struct {
	Enter  []string `json:"enter"`
	Update []string `json:"update"`
	Exit   []string `json:"exit"`
}

// Transition animates one node between two geometries.
type Transition struct {
	Key   string   `json:"key"`
	Phase Phase    `json:"phase"`
	From  Geometry `json:"from"`
	To    Geometry `json:"to"`
	Node  Node     `json:"-"`
}

// Plan is everything an adapter needs to animate from the previous scene to
// the next one.
type Plan struct {
	Transitions []Transition  `json:"transitions"`
	Changes     Changes       `json:"changes"`
	Duration    time.Duration `json:"duration"`
}

// Diff splits prev and next into entering, updating and exiting keys.
// Enter and Update follow next order, Exit follows prev order. Repeated keys
// count once at their first position.
func Diff(prev, next []string) Changes {
	c := Changes{Enter: []string{}, Update: []string{}, Exit: []string{}}

	inPrev := make(map[string]struct{}, len(prev))
	for _, k := range prev {
		inPrev[k] = struct{}{}
	}
	inNext := make(map[string]struct{}, len(next))
	for _, k := range next {
		if _, dup := inNext[k]; dup {
			continue
		}
		inNext[k] = struct{}{}
		if _, ok := inPrev[k]; ok {
			c.Update = append(c.Update, k)
		} else {
			c.Enter = append(c.Enter, k)
		}
	}

	seen := make(map[string]struct{}, len(prev))
	for _, k := range prev {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := inNext[k]; !ok {
			c.Exit = append(c.Exit, k)
		}
	}
	return c
}

// Reconcile computes the scene that replaces prev and the transitions that
// get there. It does not touch prev or next.
//
// Updating nodes start from the target geometry of prev, so a redraw that
// interrupts another simply continues from where the last one was headed.
// Exiting nodes animate to their baseline and are not part of the returned
// scene.
func Reconcile(prev Scene, next []Node, duration time.Duration) (Scene, Plan) {
	if duration <= 0 {
		duration = DefaultDuration
	}

	nodes := make([]Node, 0, len(next))
	seen := make(map[string]struct{}, len(next))
	for _, n := range next {
		if _, dup := seen[n.Key]; dup {
			continue
		}
		seen[n.Key] = struct{}{}
		nodes = append(nodes, n)
	}
	scene := Scene{Nodes: nodes}

	old := make(map[string]Node, len(prev.Nodes))
	for _, n := range prev.Nodes {
		if _, dup := old[n.Key]; !dup {
			old[n.Key] = n
		}
	}

	plan := Plan{
		Transitions: make([]Transition, 0, len(nodes)+len(prev.Nodes)),
		Changes:     Diff(prev.Keys(), scene.Keys()),
		Duration:    duration,
	}
	for _, n := range nodes {
		t := Transition{Key: n.Key, Phase: PhaseEnter, From: n.Baseline, To: n.Geometry, Node: n}
		if o, ok := old[n.Key]; ok && o.Kind == n.Kind {
			t.Phase = PhaseUpdate
			t.From = o.Geometry
		} else if ok {
			// Same key drawn as a different shape: nothing to morph from.
			t.Phase = PhaseUpdate
		}
		plan.Transitions = append(plan.Transitions, t)
	}
	for _, k := range plan.Changes.Exit {
		o := old[k]
		plan.Transitions = append(plan.Transitions, Transition{
			Key: k, Phase: PhaseExit, From: o.Geometry, To: o.Baseline, Node: o,
		})
	}
	return scene, plan
}
