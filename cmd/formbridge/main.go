package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbridge"
	"github.com/goliatone/go-formbridge/internal/config"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
	"github.com/goliatone/go-formbridge/pkg/viewmodel"
)

const usage = `usage: formbridge <command> [flags]

commands:
  panels       list panels, fields and actions
  run          invoke one panel action and print its output
  interactive  drive the panels from terminal prompts
  serve        start the web dashboard
  lint         check the panel catalog against the backend OpenAPI document
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a := &app{
		cfg:    cfg,
		logger: logging.New(stderr, cfg.LogLevel, cfg.LogFormat),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "panels":
		return a.panels(rest)
	case "run":
		return a.runAction(ctx, rest)
	case "interactive":
		return a.interactive(ctx, rest)
	case "serve":
		return a.serve(ctx, rest)
	case "lint":
		return a.lint(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// flagSet returns a flag set with the flags every command shares.
func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&a.cfg.BaseURL, "base-url", a.cfg.BaseURL, "backend base URL")
	fs.StringVar(&a.cfg.CatalogDir, "catalog-dir", a.cfg.CatalogDir, "directory with YAML/JSON panel overrides")
	return fs
}

func (a *app) catalog() (*panel.Catalog, error) {
	return formbridge.LoadCatalog(a.cfg.CatalogDir)
}

func (a *app) viewModel(catalog *panel.Catalog, observers ...bridge.Observer) (*viewmodel.ViewModel, error) {
	options := []bridge.Option{bridge.WithObserver(logging.Observer(a.logger))}
	if a.cfg.RequestTimeout > 0 {
		options = append(options, bridge.WithTimeout(a.cfg.RequestTimeout))
	}
	for _, o := range observers {
		options = append(options, bridge.WithObserver(o))
	}
	return formbridge.New(a.cfg.BaseURL,
		formbridge.WithCatalog(catalog),
		formbridge.WithClientOptions(options...),
	)
}

// keyValues collects repeated -set key=value flags.
type keyValues map[string]string

func (kv keyValues) String() string {
	parts := make([]string, 0, len(kv))
	for k, v := range kv {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (kv keyValues) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	kv[strings.TrimSpace(key)] = value
	return nil
}
