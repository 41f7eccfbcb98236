package formbridge

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
	"github.com/goliatone/go-formbridge/pkg/viewmodel"
)

// Envelope is the {status, data} pair rendered for every response.
type Envelope = bridge.Envelope

// Invocation reports the result of one panel action.
type Invocation = viewmodel.Invocation

// Option configures New.
type Option func(*config)

type config struct {
	catalog       *panel.Catalog
	overrides     fs.FS
	clientOptions []bridge.Option
}

// WithCatalog replaces the built-in panel catalog.
func WithCatalog(catalog *panel.Catalog) Option {
	return func(cfg *config) {
		if catalog != nil {
			cfg.catalog = catalog
		}
	}
}

// WithCatalogFS merges YAML/JSON panel files from fsys over the catalog.
func WithCatalogFS(fsys fs.FS) Option {
	return func(cfg *config) {
		cfg.overrides = fsys
	}
}

// WithClientOptions forwards options to the backend client.
func WithClientOptions(options ...bridge.Option) Option {
	return func(cfg *config) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// New builds a view-model bound to the backend at baseURL. It is the quick
// start entry point; hosts that need the client or catalog separately can
// wire the packages themselves.
func New(baseURL string, options ...Option) (*viewmodel.ViewModel, error) {
	cfg := config{catalog: panel.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	catalog := cfg.catalog
	if cfg.overrides != nil {
		merged, err := panel.LoadCatalog(catalog, cfg.overrides)
		if err != nil {
			return nil, err
		}
		catalog = merged
	}

	client, err := bridge.NewClient(baseURL, cfg.clientOptions...)
	if err != nil {
		return nil, err
	}
	return viewmodel.New(catalog, client)
}

// LoadCatalog returns the built-in catalog, merged with the panel files of
// dir when dir is set.
func LoadCatalog(dir string) (*panel.Catalog, error) {
	base := panel.Default()
	if strings.TrimSpace(dir) == "" {
		return base, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("formbridge: catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("formbridge: catalog dir %s is not a directory", dir)
	}
	return panel.LoadCatalog(base, os.DirFS(dir))
}
