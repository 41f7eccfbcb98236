package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FORMBRIDGE_BASE_URL", "FORMBRIDGE_REQUEST_TIMEOUT", "FORMBRIDGE_OPENAPI",
		"FORMBRIDGE_CATALOG_DIR", "FORMBRIDGE_ADDR", "READ_TIMEOUT", "WRITE_TIMEOUT",
		"SHUTDOWN_TIMEOUT", "FORMBRIDGE_CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &Config{
		BaseURL:         "http://localhost:8000",
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		LogFormat:       "console",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "FORMBRIDGE_BASE_URL=http://backend:9000/api\nFORMBRIDGE_REQUEST_TIMEOUT=15\nLOG_FORMAT=json\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FORMBRIDGE_REQUEST_TIMEOUT", "2m")
	t.Setenv("FORMBRIDGE_CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://backend:9000/api" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 2*time.Minute {
		t.Fatalf("environment should win over .env, got %s", cfg.RequestTimeout)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("unexpected log format %q", cfg.LogFormat)
	}
	if diff := cmp.Diff([]string{"http://a.test", "http://b.test"}, cfg.CORSOrigins); diff != "" {
		t.Fatalf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "ok", cfg: Config{BaseURL: "https://x.test", LogFormat: "json"}},
		{name: "relative base", cfg: Config{BaseURL: "/api", LogFormat: "json"}, wantErr: true},
		{name: "negative timeout", cfg: Config{BaseURL: "https://x.test", LogFormat: "json", RequestTimeout: -time.Second}, wantErr: true},
		{name: "bad format", cfg: Config{BaseURL: "https://x.test", LogFormat: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
