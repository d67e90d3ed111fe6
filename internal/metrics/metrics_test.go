package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_Recorders(t *testing.T) {
	c := NewCollector("filmslides")

	c.ObserveLoad("success", 20*time.Millisecond)
	c.AddExcludedRows("not_numeric", 3)
	c.AddExcludedRows("not_numeric", 1)
	c.ObserveRedraw("histogram", "ok", time.Millisecond)
	c.ObserveRedraw("histogram", "busy", 0)
	c.SetSessions(4)
	c.SessionEvicted()

	require.Equal(t, 1.0, testutil.ToFloat64(c.DatasetLoads.WithLabelValues("success")))
	require.Equal(t, 4.0, testutil.ToFloat64(c.RowsExcluded.WithLabelValues("not_numeric")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Redraws.WithLabelValues("histogram", "busy")))
	require.Equal(t, 4.0, testutil.ToFloat64(c.SessionsActive))
	require.Equal(t, 1.0, testutil.ToFloat64(c.SessionsEvicted))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("filmslides")
	b := NewCollector("filmslides")
	a.SessionEvicted()
	require.Equal(t, 0.0, testutil.ToFloat64(b.SessionsEvicted))
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewCollector("filmslides")

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/v1/slides/:slide", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(c.Handler()))

	for _, path := range []string{"/v1/slides/histogram", "/v1/slides/violin", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/v1/slides/:slide", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "filmslides_http_requests_total"))
}
