package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRun_Panels(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"panels"}, &stdout, &stderr); err != nil {
		t.Fatalf("panels: %v (%s)", err, stderr.String())
	}
	for _, want := range []string{"agri", "agri-aoi-name", "facilities-limit", "/api/simulate/risk-profile/{simulation_id}", "fanout: elevation, slope, roughness, flow_direction"} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout.String())
		}
	}
}

func TestRun_ActionWithSampleAndOverrides(t *testing.T) {
	var body map[string]any
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/simulate/calamity" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"simulation_id":"sim-7"}`)
	}))
	defer backend.Close()

	var stdout, stderr bytes.Buffer
	args := []string{"run", "-base-url", backend.URL, "-panel", "simulation", "-action", "start", "-sample", "-set", "magnitude=4", "-set", "sim-unit=meters"}
	if err := run(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v (%s)", err, stderr.String())
	}

	if body["magnitude"] != float64(4) || body["unit"] != "meters" || body["site_id"] != "ind_site_taloja_44" {
		t.Fatalf("unexpected body %v", body)
	}
	if !strings.Contains(stdout.String(), `"simulation_id": "sim-7"`) {
		t.Fatalf("unexpected output %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "sim-simulation-id = sim-7") {
		t.Fatalf("expected captured id on stderr, got %s", stderr.String())
	}
}

func TestRun_PollWithoutIDIsSkipped(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"run", "-base-url", "http://127.0.0.1:1", "-panel", "agri", "-action", "results"}
	if err := run(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no output, got %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "skipped: agri-task-id is empty") {
		t.Fatalf("unexpected stderr %s", stderr.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := [][]string{
		nil,
		{"bogus"},
		{"run", "-panel", "agri"},
		{"run", "-panel", "nope", "-action", "start"},
		{"run", "-panel", "agri", "-action", "start", "-set", "missing=1"},
		{"run", "-panel", "agri", "-action", "start", "-set", "novalue"},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		if err := run(context.Background(), args, &stdout, &stderr); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestRun_LintEmbeddedContract(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"lint"}, &stdout, &stderr); err != nil {
		t.Fatalf("lint: %v\n%s", err, stdout.String())
	}
	if !strings.Contains(stdout.String(), "7 panels match the backend contract") {
		t.Fatalf("unexpected output %s", stdout.String())
	}
}
