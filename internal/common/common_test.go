package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("product: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("cart: %w", ErrInvalidInput), http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{fmt.Errorf("order: %w", ErrConflict), http.StatusConflict, "CONFLICT"},
		{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
		{NewAppError("PIN_INVALID", "wrong pin", http.StatusUnauthorized, nil), http.StatusUnauthorized, "PIN_INVALID"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var body struct {
			Error ErrorBody `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Error.Code != tc.code {
			t.Fatalf("%v: code = %q, want %q", tc.err, body.Error.Code, tc.code)
		}
	}
}

func TestIdemMiddlewareBlocksReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	idem := Idem{R: client, TTL: time.Minute}
	calls := 0
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	req.Header.Set("Idempotency-Key", "abc-123")

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	if first.Code != http.StatusCreated {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	if second.Code != http.StatusConflict {
		t.Fatalf("replay status = %d, want 409", second.Code)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestIdemMiddlewarePassThroughWithoutKey(t *testing.T) {
	idem := Idem{}
	called := false
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	if !called {
		t.Fatal("handler not called without Idempotency-Key")
	}
}
