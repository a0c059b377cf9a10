package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inferd/internal/engine"
	"inferd/internal/httpapi"
	"inferd/internal/modelfile"
	"inferd/pkg/types"
)

// slowRuntime blocks each generation until released, to make queue behavior
// deterministic.
type slowRuntime struct {
	release chan struct{}
}

func (s *slowRuntime) Tokenize(text string) ([]int32, error) { return []int32{1}, nil }

func (s *slowRuntime) Generate(ctx context.Context, prompt string, params engine.GenParams, onToken func(string) error) (string, error) {
	select {
	case <-s.release:
		return "slow answer", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *slowRuntime) Close() error { return nil }

// echoRuntime completes immediately with a fixed string.
type echoRuntime struct{}

func (echoRuntime) Tokenize(text string) ([]int32, error) { return []int32{1, 2}, nil }
func (echoRuntime) Generate(ctx context.Context, prompt string, params engine.GenParams, onToken func(string) error) (string, error) {
	return "echo", nil
}
func (echoRuntime) Close() error { return nil }

func newServer(t *testing.T, rt engine.Runtime, mut func(*engine.EngineConfig)) *httptest.Server {
	t.Helper()
	cfg := engine.EngineConfig{
		Model:   modelfile.Model{ID: "alpha", Path: "/tmp/alpha.gguf"},
		Runtime: rt,
	}
	if mut != nil {
		mut(&cfg)
	}
	eng, err := engine.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	srv := httptest.NewServer(httpapi.NewMux(eng))
	t.Cleanup(srv.Close)
	return srv
}

func postInfer(t *testing.T, base, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(base+"/infer", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp, b
}

// TestE2E_InferRoundtrip drives a full request through mux, engine, and
// runtime and checks the echoed-prompt contract.
func TestE2E_InferRoundtrip(t *testing.T) {
	srv := newServer(t, echoRuntime{}, nil)
	resp, body := postInfer(t, srv.URL, `{"system_prompt":"S","user_prompt":"U"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var out types.InferResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	want := "System-Prompt: S\nUser-Prompt: U\n Assistant-Answer: echo"
	if out.Response != want {
		t.Fatalf("response=%q want %q", out.Response, want)
	}
}

// TestE2E_Backpressure429 verifies we return 429 Too Many Requests when the
// queue is full and the wait timeout elapses.
func TestE2E_Backpressure429(t *testing.T) {
	rt := &slowRuntime{release: make(chan struct{})}
	srv := newServer(t, rt, func(cfg *engine.EngineConfig) {
		cfg.MaxQueueDepth = 1 // one waiting request besides the in-flight
		cfg.MaxWait = 5 * time.Millisecond
	})
	defer close(rt.release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = postInfer(t, srv.URL, `{"user_prompt":"first"}`)
	}()
	time.Sleep(20 * time.Millisecond) // first request occupies the slot

	resp, _ := postInfer(t, srv.URL, `{"user_prompt":"second"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", resp.StatusCode)
	}
	rt.release <- struct{}{}
	<-done
}

// TestE2E_RootAndHealth checks the fixed root payload and health endpoints
// over a real connection.
func TestE2E_RootAndHealth(t *testing.T) {
	srv := newServer(t, echoRuntime{}, nil)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get /: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if got := strings.TrimSpace(string(b)); got != `["Hello"]` {
		t.Fatalf("root body=%q", got)
	}

	resp, err = http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("get /readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}
}

// TestE2E_StatusReflectsWork exercises /status after a few generations.
func TestE2E_StatusReflectsWork(t *testing.T) {
	srv := newServer(t, echoRuntime{}, nil)
	for i := 0; i < 2; i++ {
		if resp, _ := postInfer(t, srv.URL, `{"user_prompt":"x"}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("infer status=%d", resp.StatusCode)
		}
	}
	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get /status: %v", err)
	}
	defer resp.Body.Close()
	var st types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.ModelID != "alpha" || st.GenerationsTotal != 2 {
		t.Fatalf("status=%+v", st)
	}
}

// TestE2E_StubRuntime503 checks the no-CGO build refuses inference with 503
// instead of fabricating output.
func TestE2E_StubRuntime503(t *testing.T) {
	eng, err := engine.NewWithConfig(engine.EngineConfig{
		Model: modelfile.Model{ID: "alpha", Path: "/tmp/alpha.gguf"},
	})
	if err != nil {
		t.Skip("runtime construction failed; llama build")
	}
	t.Cleanup(func() { _ = eng.Close() })
	srv := httptest.NewServer(httpapi.NewMux(eng))
	t.Cleanup(srv.Close)

	resp, _ := postInfer(t, srv.URL, `{"user_prompt":"x"}`)
	if resp.StatusCode == http.StatusOK {
		t.Skip("real runtime available")
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", resp.StatusCode)
	}
}
