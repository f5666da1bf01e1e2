package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/platform/ctxutil"
)

func traceRouter(capture *ctxutil.TraceData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) {
		if data := ctxutil.GetTraceData(c.Request.Context()); data != nil {
			*capture = *data
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestAttachTraceContextEchoesCallerIDs(t *testing.T) {
	var seen ctxutil.TraceData
	router := traceRouter(&seen)

	traceID, reqID := uuid.New().String(), uuid.New().String()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerTraceID, traceID)
	req.Header.Set(headerRequestID, reqID)
	router.ServeHTTP(rec, req)

	if seen.TraceID != traceID {
		t.Fatalf("trace id on context: want=%s got=%s", traceID, seen.TraceID)
	}
	if seen.RequestID != reqID {
		t.Fatalf("request id on context: want=%s got=%s", reqID, seen.RequestID)
	}
	if got := rec.Header().Get(headerTraceID); got != traceID {
		t.Fatalf("trace id echoed: want=%s got=%s", traceID, got)
	}
	if got := rec.Header().Get(headerRequestID); got != reqID {
		t.Fatalf("request id echoed: want=%s got=%s", reqID, got)
	}
}

func TestAttachTraceContextMintsMissingIDs(t *testing.T) {
	var seen ctxutil.TraceData
	router := traceRouter(&seen)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if seen.TraceID == "" || seen.RequestID == "" {
		t.Fatalf("ids not minted: trace=%q request=%q", seen.TraceID, seen.RequestID)
	}
	if rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("minted trace id not echoed on response")
	}
}
