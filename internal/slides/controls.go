package slides

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownSlide is returned for a slide name that has no definition.
	ErrUnknownSlide = errors.New("unknown slide")

	// ErrInvalidControls is returned when a dropdown value is not one of the
	// options or a slider value is outside its bounds.
	ErrInvalidControls = errors.New("invalid controls")
)

// Control names as they appear in query strings.
const (
	ControlGenre = "genre"
	ControlYear  = "year"
	ControlScore = "score"
)

// Controls is the state of a slide's dropdown and slider. Nil sliders take
// their default value.
type Controls struct {
	Genre string   `json:"genre,omitempty"`
	Year  *int     `json:"year,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// Dropdown is a single-choice control.
type Dropdown struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
	Default string   `json:"default"`
}

// Slider is a numeric range control.
type Slider struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// ControlSpec lists the controls a slide offers for one dataset.
type ControlSpec struct {
	Dropdown *Dropdown `json:"dropdown,omitempty"`
	Slider   *Slider   `json:"slider,omitempty"`
}

// Resolve fills defaults into c and checks it against spec. Controls the
// slide does not offer are dropped, so the result only carries what the
// slide draws from.
func Resolve(spec ControlSpec, c Controls) (Controls, error) {
	var out Controls

	if d := spec.Dropdown; d != nil {
		genre := strings.TrimSpace(c.Genre)
		if genre == "" {
			genre = d.Default
		}
		match := ""
		for _, opt := range d.Options {
			if strings.EqualFold(opt, genre) {
				match = opt
				break
			}
		}
		if match == "" {
			return Controls{}, fmt.Errorf("%w: %s %q is not an option", ErrInvalidControls, d.Name, genre)
		}
		out.Genre = match
	}

	if s := spec.Slider; s != nil {
		switch s.Name {
		case ControlYear:
			year := int(s.Default)
			if c.Year != nil {
				year = *c.Year
			}
			if float64(year) < s.Min || float64(year) > s.Max {
				return Controls{}, fmt.Errorf("%w: year %d outside [%g, %g]", ErrInvalidControls, year, s.Min, s.Max)
			}
			out.Year = &year
		case ControlScore:
			score := s.Default
			if c.Score != nil {
				score = *c.Score
			}
			if math.IsNaN(score) || score < s.Min || score > s.Max {
				return Controls{}, fmt.Errorf("%w: score %g outside [%g, %g]", ErrInvalidControls, score, s.Min, s.Max)
			}
			out.Score = &score
		default:
			return Controls{}, fmt.Errorf("%w: unsupported slider %q", ErrInvalidControls, s.Name)
		}
	}
	return out, nil
}

// Key is a canonical text form of c, equal for equal control states.
func (c Controls) Key() string {
	var b strings.Builder
	b.WriteString(ControlGenre + "=" + c.Genre)
	if c.Year != nil {
		fmt.Fprintf(&b, "&%s=%d", ControlYear, *c.Year)
	}
	if c.Score != nil {
		fmt.Fprintf(&b, "&%s=%g", ControlScore, *c.Score)
	}
	return b.String()
}
