package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/services"
)

func TestClientAutoSaveDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/evaluations/auto-save" {
			t.Errorf("path: want=/api/evaluations/auto-save got=%s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"saved":3,"created":1,"failed":0}}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second, testLogger(t))
	result, err := c.AutoSave(context.Background(), services.SaveBatchRequest{LeaderID: uuid.New()})
	if err != nil {
		t.Fatalf("AutoSave: %v", err)
	}
	if result.Saved != 3 || result.Created != 1 {
		t.Fatalf("result: want saved=3 created=1 got=%+v", result)
	}
}

func TestClientFailureBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"rating outside scale","error":"validation_error"}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second, testLogger(t))
	_, err := c.Submit(context.Background(), services.SaveBatchRequest{LeaderID: uuid.New()})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "validation_error" {
		t.Fatalf("decoded rejection: got=%+v", apiErr)
	}
	if Transient(err) {
		t.Fatalf("validation rejection marked transient")
	}
}

func TestClientCanSubmit(t *testing.T) {
	leaderID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/api/evaluations/can-submit/" + leaderID.String()
		if r.URL.Path != want {
			t.Errorf("path: want=%s got=%s", want, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"can_submit":false,"total_required":10,"completed":7,"incomplete":3}}`))
	}))
	defer server.Close()

	c := New(server.URL, time.Second, testLogger(t))
	readiness, err := c.CanSubmit(context.Background(), leaderID)
	if err != nil {
		t.Fatalf("CanSubmit: %v", err)
	}
	if readiness.CanSubmit || readiness.Incomplete != 3 {
		t.Fatalf("readiness: got=%+v", readiness)
	}
}
