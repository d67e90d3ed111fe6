package presentation

import (
	"time"

	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/slides"
)

// SlideInfo describes one slide and, once the dataset is loaded, its controls.
type SlideInfo struct {
	Name     string              `json:"name"`
	Kind     string              `json:"kind"`
	Title    string              `json:"title"`
	Order    int                 `json:"order"`
	Controls *slides.ControlSpec `json:"controls,omitempty"`
}

// SlideListResponse is the body of GET /v1/slides.
type SlideListResponse struct {
	Dataset dataset.State `json:"dataset"`
	Slides  []SlideInfo   `json:"slides"`
}

// SessionResponse is the body of POST /v1/sessions.
type SessionResponse struct {
	SessionID string        `json:"session_id"`
	CreatedAt time.Time     `json:"created_at"`
	Dataset   *dataset.Meta `json:"dataset,omitempty"`
}

// RedrawResponse is the JSON body of a session redraw.
type RedrawResponse struct {
	SessionID string            `json:"session_id"`
	Seq       int               `json:"seq"`
	Status    string            `json:"status"`
	Frame     slides.Frame      `json:"frame"`
	Changes   reconcile.Changes `json:"changes"`
	Duration  time.Duration     `json:"duration_ns"`
}

// controlsQuery binds the dropdown and slider values of a slide request.
type controlsQuery struct {
	Genre  string   `form:"genre"`
	Year   *int     `form:"year"`
	Score  *float64 `form:"score"`
	Format string   `form:"format"`
}

func (q controlsQuery) controls() slides.Controls {
	return slides.Controls{Genre: q.Genre, Year: q.Year, Score: q.Score}
}
