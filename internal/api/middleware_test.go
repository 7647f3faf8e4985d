package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/pkg/logging"
)

func TestRequestID_ScopesHeaderAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())

	var gotLogger *zap.Logger
	engine.GET("/ping", func(c *gin.Context) {
		gotLogger = requestLogger(c)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if gotLogger == nil {
		t.Fatal("handler saw no logger")
	}
	if gotLogger == logging.GetLogger() {
		t.Error("handler logger is not scoped with the request id")
	}
}

func TestTracing_StartsSpanPerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	defer otel.SetTracerProvider(prev)

	engine := gin.New()
	engine.Use(Tracing())
	engine.GET("/posts/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/hello-world", nil))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "GET /posts/:id" {
		t.Errorf("span name = %q, want %q", got, "GET /posts/:id")
	}
}
