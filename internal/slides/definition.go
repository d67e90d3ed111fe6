package slides

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/LydiaBrothers/filmslides/internal/core/aggregation"
)

// Slide kinds.
const (
	KindHistogram = "histogram"
	KindBubbles   = "bubbles"
	KindViolin    = "violin"
)

//go:embed definitions/*.yaml
var builtin embed.FS

// Definition configures one slide. Definitions are loaded at startup from
// YAML files and fingerprinted so a changed file is visible in /v1/slides.
type Definition struct {
	Name        string             `json:"name"`
	Kind        string             `json:"kind"`
	Title       string             `json:"title"`
	Order       int                `json:"order"`
	Field       string             `json:"field"`
	Domain      aggregation.Domain `json:"domain"`
	XLabel      string             `json:"x_label,omitempty"`
	YLabel      string             `json:"y_label,omitempty"`
	Bins        int                `json:"bins,omitempty"`       // histogram threshold count
	Padding     float64            `json:"padding,omitempty"`    // bubble gap in pixels
	MaxGroups   int                `json:"max_groups,omitempty"` // violin categories
	Points      int                `json:"points,omitempty"`     // violin profile resolution
	PointSize   float64            `json:"point_size,omitempty"` // jitter point radius
	Transition  time.Duration      `json:"transition"`
	Fill        string             `json:"fill,omitempty"`
	Fingerprint string             `json:"fingerprint"`
}

// rawDefinition is the on-disk YAML shape.
type rawDefinition struct {
	Name         string    `yaml:"name"`
	Kind         string    `yaml:"kind"`
	Title        string    `yaml:"title"`
	Order        int       `yaml:"order"`
	Field        string    `yaml:"field"`
	Domain       []float64 `yaml:"domain"`
	XLabel       string    `yaml:"x_label"`
	YLabel       string    `yaml:"y_label"`
	Bins         int       `yaml:"bins"`
	Padding      float64   `yaml:"padding"`
	MaxGroups    int       `yaml:"max_groups"`
	Points       int       `yaml:"points"`
	PointSize    float64   `yaml:"point_size"`
	TransitionMS int       `yaml:"transition_ms"`
	Fill         string    `yaml:"fill"`
}

func (r rawDefinition) definition(fingerprint string) (Definition, error) {
	d := Definition{
		Name:        r.Name,
		Kind:        r.Kind,
		Title:       r.Title,
		Order:       r.Order,
		Field:       r.Field,
		Domain:      aggregation.Domain{Lo: 0, Hi: 10},
		XLabel:      r.XLabel,
		YLabel:      r.YLabel,
		Bins:        r.Bins,
		Padding:     r.Padding,
		MaxGroups:   r.MaxGroups,
		Points:      r.Points,
		PointSize:   r.PointSize,
		Transition:  time.Duration(r.TransitionMS) * time.Millisecond,
		Fill:        r.Fill,
		Fingerprint: fingerprint,
	}

	switch r.Kind {
	case KindHistogram, KindBubbles, KindViolin:
	default:
		return Definition{}, fmt.Errorf("slide %q: unsupported kind %q", r.Name, r.Kind)
	}
	if d.Title == "" {
		d.Title = r.Name
	}
	if d.Field == "" {
		d.Field = aggregation.FieldScore
	}
	d.Field = strings.ToLower(d.Field)
	if _, ok := aggregation.FloatValue(v1.Record{}, d.Field); !ok {
		return Definition{}, fmt.Errorf("slide %q: unsupported field %q", r.Name, r.Field)
	}
	if len(r.Domain) != 0 {
		if len(r.Domain) != 2 {
			return Definition{}, fmt.Errorf("slide %q: domain must be [lo, hi]", r.Name)
		}
		d.Domain = aggregation.Domain{Lo: r.Domain[0], Hi: r.Domain[1]}
	}
	if !d.Domain.Valid() {
		return Definition{}, fmt.Errorf("slide %q: invalid domain [%g, %g]", r.Name, d.Domain.Lo, d.Domain.Hi)
	}
	if r.TransitionMS < 0 {
		return Definition{}, fmt.Errorf("slide %q: transition_ms must be >= 0", r.Name)
	}
	if d.Bins < 0 || d.Padding < 0 || d.MaxGroups < 0 || d.Points < 0 || d.PointSize < 0 {
		return Definition{}, fmt.Errorf("slide %q: sizes must not be negative", r.Name)
	}
	return d, nil
}

// Repository defines how slide definitions are looked up.
type Repository interface {
	// Get returns the definition with the given name.
	Get(ctx context.Context, name string) (*Definition, error)

	// List returns every definition in presentation order.
	List(ctx context.Context) ([]Definition, error)
}

// FileSystemRepository loads slide definitions from *.yaml files, one slide
// per file. Definitions are read once; there is no hot reload.
type FileSystemRepository struct {
	dir  string
	defs map[string]Definition
}

// NewFileSystemRepository loads every definition in dir. An empty dir or a
// directory that does not exist yields the built-in slides.
func NewFileSystemRepository(dir string) (*FileSystemRepository, error) {
	repo := &FileSystemRepository{dir: dir, defs: make(map[string]Definition)}

	if dir == "" {
		return repo, repo.load(builtin, "definitions")
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		repo.dir = ""
		return repo, repo.load(builtin, "definitions")
	}
	if err != nil {
		return nil, fmt.Errorf("slide definition dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("slide definition path %q is not a directory", dir)
	}
	if err := repo.load(os.DirFS(dir), "."); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemRepository) load(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading slide definition dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		name := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading slide file %s: %w", name, err)
		}

		var raw rawDefinition
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing slide file %s: %w", name, err)
		}
		if raw.Name == "" {
			continue // comment-only file
		}

		def, err := raw.definition(fmt.Sprintf("%x", sha256.Sum256(data)))
		if err != nil {
			return err
		}
		if _, exists := r.defs[def.Name]; exists {
			return fmt.Errorf("slide %q: duplicate slide name (check multiple YAML files)", def.Name)
		}
		r.defs[def.Name] = def
	}
	return nil
}

// Dir returns the directory definitions were read from, or "" for the
// built-in set.
func (r *FileSystemRepository) Dir() string {
	return r.dir
}

// Get returns the definition with the given name.
func (r *FileSystemRepository) Get(_ context.Context, name string) (*Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlide, name)
	}
	return &def, nil
}

// List returns every definition ordered by Order, then name.
func (r *FileSystemRepository) List(_ context.Context) ([]Definition, error) {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
