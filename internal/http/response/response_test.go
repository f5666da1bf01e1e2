package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/campstack/evalboard-backend/internal/platform/apierr"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, map[string]int{"count": 3})

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	env := decode(t, w)
	if !env.Success {
		t.Fatalf("success: want=true got=false")
	}
	if env.Data == nil {
		t.Fatalf("data missing from success envelope")
	}
	if env.Error != "" {
		t.Fatalf("error code on success envelope: got=%q", env.Error)
	}
}

func TestFailMapsAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, apierr.Validation(errors.New("rating outside scale")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
	env := decode(t, w)
	if env.Success {
		t.Fatalf("success: want=false got=true")
	}
	if env.Error != apierr.CodeValidation {
		t.Fatalf("error code: want=%q got=%q", apierr.CodeValidation, env.Error)
	}
	if env.Message != "rating outside scale" {
		t.Fatalf("message: want original error text got=%q", env.Message)
	}
}

func TestFailDefaultsToServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, errors.New("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status for unclassified error: want=500 got=%d", w.Code)
	}
	if env := decode(t, w); env.Error != "" {
		t.Fatalf("error code for unclassified error: want empty got=%q", env.Error)
	}
}

func TestFailStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid leader id"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
	env := decode(t, w)
	if env.Error != "validation_error" || env.Message != "invalid leader id" {
		t.Fatalf("envelope: got=%+v", env)
	}
}
