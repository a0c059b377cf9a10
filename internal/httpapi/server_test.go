package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

type mockService struct {
	status   types.StatusResponse
	ready    bool
	inferErr error
	tokErr   error
	lastReq  types.InferRequest
}

func (m *mockService) Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error) {
	m.lastReq = req
	if m.inferErr != nil {
		return types.InferResponse{}, m.inferErr
	}
	return types.InferResponse{Response: engine.BuildPrompt(req.SystemPrompt, req.UserPrompt) + "ok"}, nil
}

func (m *mockService) Tokenize(ctx context.Context, req types.TokenizeRequest) (types.TokenizeResponse, error) {
	if m.tokErr != nil {
		return types.TokenizeResponse{}, m.tokErr
	}
	return types.TokenizeResponse{Tokens: []int32{1, 2}, Count: 2}, nil
}

func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestRootReturnsHelloCollection(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `["Hello"]` {
		t.Fatalf("body=%q want [\"Hello\"]", got)
	}
}

func TestInferRoundtrip(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postJSON(t, r, "/infer", `{"system_prompt":"S","user_prompt":"U"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.InferResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Response == "" {
		t.Fatalf("empty response")
	}
	if svc.lastReq.SystemPrompt != "S" || svc.lastReq.UserPrompt != "U" {
		t.Fatalf("decoded req=%+v", svc.lastReq)
	}
}

func TestInferMissingFieldsDefaultEmpty(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postJSON(t, r, "/infer", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.lastReq.SystemPrompt != "" || svc.lastReq.UserPrompt != "" {
		t.Fatalf("fields should default to empty: %+v", svc.lastReq)
	}
}

func TestInferUnknownKeysIgnored(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postJSON(t, r, "/infer", `{"something_else":42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferBadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/infer", "not-json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error payload not JSON: %v", err)
	}
	if e.Code != http.StatusBadRequest {
		t.Fatalf("error code=%d", e.Code)
	}
}

func TestInferUnsupportedMediaType(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewBufferString(`{"user_prompt":"hi"}`))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferBodyTooLarge(t *testing.T) {
	r := NewMux(&mockService{})
	big := make([]byte, (1<<20)+10)
	for i := range big {
		big[i] = 'a'
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestInferTooBusyMaps429(t *testing.T) {
	// Exercise the real engine error type through the mapping.
	r := NewMux(&mockService{inferErr: engine.ErrTooBusy("m")})
	w := postJSON(t, r, "/infer", `{"user_prompt":"hi"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferDependencyUnavailableMaps503(t *testing.T) {
	r := NewMux(&mockService{inferErr: engine.ErrDependencyUnavailable("runtime missing")})
	w := postJSON(t, r, "/infer", `{"user_prompt":"hi"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferHTTPErrorMapping(t *testing.T) {
	r := NewMux(&mockService{inferErr: mockHTTPError{msg: "gone", code: http.StatusGone}})
	w := postJSON(t, r, "/infer", `{"user_prompt":"hi"}`)
	if w.Code != http.StatusGone {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInferGenericErrorMaps500(t *testing.T) {
	r := NewMux(&mockService{inferErr: context.DeadlineExceeded})
	w := postJSON(t, r, "/infer", `{"user_prompt":"hi"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestTokenizeHandler(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/tokenize", `{"content":"hello world"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.TokenizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Count != 2 || len(body.Tokens) != 2 {
		t.Fatalf("body=%+v", body)
	}
}

func TestTokenizeBadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/tokenize", `{`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	r := NewMux(&mockService{status: types.StatusResponse{ModelID: "m1", State: "ready"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.ModelID != "m1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyzNotReady(t *testing.T) {
	r := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
