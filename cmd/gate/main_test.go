package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/gate/internal/bus"
	"github.com/alfredjeanlab/gate/internal/client"
	"github.com/alfredjeanlab/gate/internal/config"
	"github.com/alfredjeanlab/gate/internal/model"
	"github.com/alfredjeanlab/gate/internal/server"
	"github.com/alfredjeanlab/gate/internal/store/memory"
)

// execute runs the root command with args against an isolated client
// config and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GATE_CONFIG", filepath.Join(t.TempDir(), "client.toml"))
	t.Setenv("GATE_ENDPOINT", "")
	t.Setenv("GATE_LOG_LEVEL", "")
	t.Setenv("NO_COLOR", "1")

	jsonOutput, logLevel, endpoint = false, "", ""
	if f := rootCmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	eventsBackend, eventsLimit = defaultBackendURL(), 50
	healthBackend, healthGRPC = defaultBackendURL(), ""
	whoBackend, whoWithin = defaultBackendURL(), 24*time.Hour
	backupStdout = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOpen_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := execute(t, "open", "--endpoint", srv.URL+"/api/open")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}  UTC: 😄 opened\n$`).MatchString(out) {
		t.Errorf("output = %q", out)
	}
}

func TestOpen_FailureIsSilentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, err := execute(t, "open", "--endpoint", srv.URL+"/api/open")
	if !errors.Is(err, errSilent) {
		t.Fatalf("err = %v, want errSilent", err)
	}
	if !strings.Contains(out, `😧 failed to open, response: {"status":500`) {
		t.Errorf("output = %q", out)
	}
}

func TestOpen_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := execute(t, "open", "--json", "--endpoint", srv.URL+"/api/open")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var got openResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !got.Outcome.OK() || got.Outcome.Status != http.StatusOK {
		t.Errorf("outcome = %+v", got.Outcome)
	}
	if !strings.HasSuffix(got.Entry, " UTC: 😄 opened") {
		t.Errorf("entry = %q", got.Entry)
	}
}

func TestRoot_NonInteractiveOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// Test binaries never run with a terminal on stdin and stdout.
	if _, err := execute(t, "--endpoint", srv.URL+"/api/open"); err != nil {
		t.Fatalf("gate: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("hits = %d, want 1", n)
	}
}

// acceptPublisher accepts every command without a bus.
type acceptPublisher struct{}

func (acceptPublisher) Publish(context.Context, string, any) error { return nil }
func (acceptPublisher) Close() error                               { return nil }

var _ bus.Publisher = acceptPublisher{}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gs := server.NewGateServer(memory.New(), acceptPublisher{}, "home/gate")
	srv := httptest.NewServer(gs.NewHTTPHandler())
	t.Cleanup(srv.Close)
	return srv
}

func TestEvents_JSON(t *testing.T) {
	srv := newBackend(t)
	api := client.NewHTTPClient(srv.URL)
	for _, id := range []string{"op-a", "op-b"} {
		if err := api.ReportLog(context.Background(), &model.LogReport{Event: model.EventGateOpen, RequestID: id}); err != nil {
			t.Fatalf("ReportLog: %v", err)
		}
	}

	out, err := execute(t, "events", "--json", "--backend", srv.URL, "--limit", "1")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	var events []*model.AccessEvent
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(events) != 1 || events[0].RequestID != "op-b" {
		t.Errorf("events = %+v, want newest only", events)
	}
}

func TestEvents_Table(t *testing.T) {
	srv := newBackend(t)
	api := client.NewHTTPClient(srv.URL)
	if err := api.ReportLog(context.Background(), &model.LogReport{Event: model.EventGateOpen, RequestID: "op-a"}); err != nil {
		t.Fatalf("ReportLog: %v", err)
	}

	out, err := execute(t, "events", "--backend", srv.URL)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	for _, want := range []string{"TIME", "KIND", "gate_open", "op-a"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHealth(t *testing.T) {
	srv := newBackend(t)

	out, err := execute(t, "health", "--backend", srv.URL)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if out != "Health: ok\n" {
		t.Errorf("output = %q", out)
	}
}

func TestHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := execute(t, "health", "--backend", url); err == nil {
		t.Fatal("expected error for unreachable backend")
	}
}

func TestConfig_SetThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")

	// execute isolates GATE_CONFIG per call; pin it for both.
	run := func(args ...string) string {
		t.Helper()
		t.Setenv("GATE_CONFIG", path)
		jsonOutput, logLevel, endpoint = false, "", ""
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		defer func() {
			rootCmd.SetOut(nil)
			rootCmd.SetArgs(nil)
		}()
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}
	t.Setenv("GATE_ENDPOINT", "")
	t.Setenv("GATE_LOG_LEVEL", "")

	run("config", "set", "endpoint", "http://127.0.0.1:9/api/open")
	out := run("config", "show")
	if !strings.Contains(out, "endpoint  = http://127.0.0.1:9/api/open") {
		t.Errorf("show = %q", out)
	}
	if got := strings.TrimSpace(run("config", "path")); got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestConfig_SetRepairsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	if err := os.WriteFile(path, []byte("endpoint = \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) string {
		t.Helper()
		t.Setenv("GATE_CONFIG", path)
		jsonOutput, logLevel, endpoint = false, "", ""
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		defer func() {
			rootCmd.SetOut(nil)
			rootCmd.SetArgs(nil)
		}()
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}
	t.Setenv("GATE_ENDPOINT", "")
	t.Setenv("GATE_LOG_LEVEL", "")

	if got := strings.TrimSpace(run("config", "path")); got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	run("config", "set", "endpoint", "http://127.0.0.1:9/api/open")

	cfg, err := config.LoadClientFile(path)
	if err != nil {
		t.Fatalf("file still unreadable after set: %v", err)
	}
	if cfg.Endpoint != "http://127.0.0.1:9/api/open" {
		t.Errorf("Endpoint = %q, want the value just set", cfg.Endpoint)
	}
}

func TestConfig_SetUnknownKey(t *testing.T) {
	if _, err := execute(t, "config", "set", "colour", "blue"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestBackup_NoDestination(t *testing.T) {
	t.Setenv("GATE_DATABASE_URL", "")
	t.Setenv("GATE_SYNC_S3_BUCKET", "")
	t.Setenv("GATE_SYNC_FILE", "")
	t.Setenv("GATE_NATS_URL", "")
	t.Setenv("GATE_MQTT_BROKER", "")

	_, err := execute(t, "backup")
	if err == nil || !strings.Contains(err.Error(), "no backup destination") {
		t.Fatalf("err = %v", err)
	}
}

func TestBackup_Stdout(t *testing.T) {
	t.Setenv("GATE_DATABASE_URL", "")
	t.Setenv("GATE_NATS_URL", "")
	t.Setenv("GATE_MQTT_BROKER", "")

	out, err := execute(t, "backup", "--stdout")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	var header map[string]any
	if err := json.Unmarshal([]byte(strings.SplitN(out, "\n", 2)[0]), &header); err != nil {
		t.Fatalf("first line is not JSON: %v\n%s", err, out)
	}
	if header["type"] != "header" {
		t.Errorf("header = %v", header)
	}
}

func TestController_RequiresBus(t *testing.T) {
	t.Setenv("GATE_NATS_URL", "")
	t.Setenv("GATE_MQTT_BROKER", "")

	_, err := execute(t, "controller")
	if err == nil || !strings.Contains(err.Error(), "GATE_NATS_URL") {
		t.Fatalf("err = %v", err)
	}
}

func TestWho(t *testing.T) {
	srv := newBackend(t)
	body := `{"action":"open","toServer":{"shortResponse":true},"passthrough":{"who":"phone"}}`
	resp, err := http.Post(srv.URL+"/api/open", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	resp.Body.Close()

	out, err := execute(t, "who", "--backend", srv.URL)
	if err != nil {
		t.Fatalf("who: %v", err)
	}
	for _, want := range []string{"WHO", "phone", "open_requested"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
