package presentation

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/LydiaBrothers/filmslides/internal/core/errors"
	"github.com/LydiaBrothers/filmslides/internal/core/reconcile"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/render"
	"github.com/LydiaBrothers/filmslides/internal/session"
	"github.com/LydiaBrothers/filmslides/internal/slides"
)

const (
	msgDatasetLoading   = "Dataset is still loading"
	msgDatasetFailed    = "Failed to load dataset"
	msgInvalidControls  = "Invalid slide controls"
	msgSlideNotFound    = "Slide not found"
	msgSessionNotFound  = "Session not found"
	msgSessionBusy      = "Session is redrawing"
	msgRenderFailed     = "Failed to render slide"
	msgInvalidPathParam = "Invalid path parameters"
)

// RegisterRoutes registers all presentation API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/slides", s.HandleListSlides)
	r.GET("/v1/slides/:slide/aggregate", s.HandleAggregate)

	r.POST("/v1/sessions", s.HandleCreateSession)
	r.DELETE("/v1/sessions/:session_id", s.HandleDeleteSession)
	r.GET("/v1/sessions/:session_id/slides/:slide", s.HandleRedraw)

	r.GET("/v1/dataset", s.HandleDatasetState)
	r.POST("/v1/dataset/reload", s.HandleReload)
}

// HandleListSlides handles GET /v1/slides. Controls are included once the
// dataset is loaded, since dropdown options and slider bounds come from it.
func (s *Service) HandleListSlides(c *gin.Context) {
	ds, _ := s.datasets.Current()

	resp := SlideListResponse{Dataset: s.datasets.State()}
	for _, sl := range s.deck.Slides() {
		def := sl.Definition()
		info := SlideInfo{Name: def.Name, Kind: def.Kind, Title: def.Title, Order: def.Order}
		if ds != nil {
			spec := s.deck.Controls(ds, sl)
			info.Controls = &spec
		}
		resp.Slides = append(resp.Slides, info)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCreateSession handles POST /v1/sessions.
func (s *Service) HandleCreateSession(c *gin.Context) {
	ds, ok := s.requireDataset(c, "")
	if !ok {
		return
	}
	sess := s.sessions.Create(ds)
	meta := ds.Meta()
	slog.Info("Created session", "session_id", sess.ID, "dataset", meta.Checksum)

	c.JSON(http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
		Dataset:   &meta,
	})
}

// HandleDeleteSession handles DELETE /v1/sessions/:session_id.
func (s *Service) HandleDeleteSession(c *gin.Context) {
	if !s.sessions.Delete(c.Param("session_id")) {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpSessionNotFoundError,
			Message:   msgSessionNotFound,
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleRedraw handles GET /v1/sessions/:session_id/slides/:slide
// Query parameters: genre, year, score, format (svg | json)
func (s *Service) HandleRedraw(c *gin.Context) {
	var uri struct {
		SessionID string `uri:"session_id" binding:"required"`
		Slide     string `uri:"slide" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   msgInvalidPathParam,
			Details:   err.Error(),
		})
		return
	}
	query, ok := bindControls(c)
	if !ok {
		s.observe(uri.Slide, OutcomeInvalid, 0)
		return
	}
	if _, ok := s.requireDataset(c, uri.Slide); !ok {
		return
	}

	sess, err := s.sessions.Get(uri.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpSessionNotFoundError,
			Message:   msgSessionNotFound,
			Details:   uri.SessionID,
		})
		return
	}

	start := time.Now()
	res, err := sess.Apply(c.Request.Context(), uri.Slide, query.controls())
	elapsed := time.Since(start)
	if err != nil {
		s.writeRedrawError(c, uri.Slide, err)
		return
	}

	if wantsSVG(c, query.Format) {
		var buf bytes.Buffer
		if err := render.Animated(&buf, res.Frame.Document, res.Plan); err != nil {
			s.observe(uri.Slide, OutcomeError, elapsed)
			slog.Error("Failed to render slide", "slide", uri.Slide, "session_id", sess.ID, "error", err)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   msgRenderFailed,
			})
			return
		}
		s.observe(uri.Slide, OutcomeSuccess, time.Since(start))
		c.Data(http.StatusOK, render.ContentType, buf.Bytes())
		return
	}

	s.observe(uri.Slide, OutcomeSuccess, elapsed)
	c.JSON(http.StatusOK, RedrawResponse{
		SessionID: sess.ID,
		Seq:       res.Seq,
		Status:    string(sess.Status()),
		Frame:     res.Frame,
		Changes:   res.Plan.Changes,
		Duration:  res.Plan.Duration,
	})
}

// HandleAggregate handles GET /v1/slides/:slide/aggregate. It draws the
// slide for the given controls without any session state.
func (s *Service) HandleAggregate(c *gin.Context) {
	name := c.Param("slide")
	query, ok := bindControls(c)
	if !ok {
		return
	}
	ds, ok := s.requireDataset(c, name)
	if !ok {
		return
	}

	sl, err := s.deck.Get(name)
	if err != nil {
		writeSlideError(c, err)
		return
	}
	controls, err := s.deck.Resolve(ds, sl, query.controls())
	if err != nil {
		writeSlideError(c, err)
		return
	}
	frame, _ := sl.Draw(ds, controls, nil)

	if wantsSVG(c, query.Format) {
		scene, _ := reconcile.Reconcile(reconcile.Scene{}, frame.Nodes, 0)
		out, err := render.Bytes(frame.Document, scene)
		if err != nil {
			slog.Error("Failed to render slide", "slide", name, "error", err)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   msgRenderFailed,
			})
			return
		}
		c.Data(http.StatusOK, render.ContentType, out)
		return
	}
	c.JSON(http.StatusOK, frame)
}

// HandleDatasetState handles GET /v1/dataset.
func (s *Service) HandleDatasetState(c *gin.Context) {
	c.JSON(http.StatusOK, s.datasets.State())
}

// HandleReload handles POST /v1/dataset/reload. A failed reload keeps the
// previous dataset, so existing sessions are unaffected either way.
func (s *Service) HandleReload(c *gin.Context) {
	ds, err := s.datasets.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpDatasetUnavailableError,
			Message:   msgDatasetFailed,
			Details:   s.datasets.State(),
		})
		return
	}
	if err := s.deck.Prerender(c.Request.Context(), ds); err != nil {
		slog.Warn("Failed to prerender slides after reload", "error", err)
	}
	c.JSON(http.StatusOK, s.datasets.State())
}

// requireDataset returns the current dataset, or writes a 503 and returns
// false. SVG clients get the loading or failure placeholder.
func (s *Service) requireDataset(c *gin.Context, title string) (*dataset.Dataset, bool) {
	ds, err := s.datasets.Current()
	if err == nil {
		return ds, true
	}

	msg := msgDatasetFailed
	if errors.Is(err, dataset.ErrNotReady) {
		msg = msgDatasetLoading
	}

	if wantsSVG(c, c.Query("format")) {
		var buf bytes.Buffer
		var rerr error
		if errors.Is(err, dataset.ErrNotReady) {
			rerr = render.Loading(&buf, s.canvas, title)
		} else {
			rerr = render.Failure(&buf, s.canvas, title, err.Error())
		}
		if rerr == nil {
			c.Data(http.StatusServiceUnavailable, render.ContentType, buf.Bytes())
			return nil, false
		}
		slog.Error("Failed to render status placeholder", "error", rerr)
	}

	c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
		ErrorType: httperr.HttpDatasetUnavailableError,
		Message:   msg,
		Details:   s.datasets.State(),
	})
	return nil, false
}

func (s *Service) writeRedrawError(c *gin.Context, slide string, err error) {
	switch {
	case errors.Is(err, session.ErrBusy):
		s.observe(slide, OutcomeBusy, 0)
		c.JSON(http.StatusConflict, httperr.ErrorResponse{
			ErrorType: httperr.HttpSessionBusyError,
			Message:   msgSessionBusy,
		})
	case errors.Is(err, slides.ErrUnknownSlide), errors.Is(err, slides.ErrInvalidControls):
		s.observe(slide, OutcomeInvalid, 0)
		writeSlideError(c, err)
	default:
		s.observe(slide, OutcomeError, 0)
		slog.Error("Failed to redraw slide", "slide", slide, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to redraw slide",
			Details:   err.Error(),
		})
	}
}

func writeSlideError(c *gin.Context, err error) {
	if errors.Is(err, slides.ErrUnknownSlide) {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpSlideNotFoundError,
			Message:   msgSlideNotFound,
			Details:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidControlsError,
		Message:   msgInvalidControls,
		Details:   err.Error(),
	})
}

func bindControls(c *gin.Context) (controlsQuery, bool) {
	var q controlsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidControlsError,
			Message:   msgInvalidControls,
			Details:   err.Error(),
		})
		return q, false
	}
	return q, true
}

// wantsSVG reports whether the client asked for the SVG document rather
// than the JSON frame. An explicit format wins over the Accept header.
func wantsSVG(c *gin.Context, format string) bool {
	switch strings.ToLower(format) {
	case "svg":
		return true
	case "json":
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), render.ContentType)
}
