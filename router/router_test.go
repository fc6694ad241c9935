package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

type pingServer struct{}

func (pingServer) RegisterPing(api huma.API) {
	huma.Get(api, "/ping", func(context.Context, *struct{}) (*struct{ Body string }, error) {
		return &struct{ Body string }{Body: "pong"}, nil
	})
}

func TestNew(t *testing.T) {
	var seen []string
	h := New("test", "1.0.0",
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("metric 1\n")) },
		OptUseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
			seen = append(seen, ctx.Operation().Path)
			next(ctx)
		}),
		OptGroup("/api", OptGroup("/v1", OptAutoRegister(pingServer{}))),
	)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/liveness").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get("/readiness").Code)
	assert.Equal(t, "metric 1\n", get("/metrics").Body.String())

	rec := get("/api/v1/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"pong"`, rec.Body.String())
	assert.Equal(t, []string{"/api/v1/ping"}, seen)

	assert.Equal(t, http.StatusNotFound, get("/ping").Code)
}
