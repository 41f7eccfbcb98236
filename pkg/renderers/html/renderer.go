package html

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/goliatone/go-formbridge/pkg/panel"
	"github.com/goliatone/go-formbridge/pkg/viewmodel"
)

// DashboardTemplate is the entry template rendered by the Renderer.
const DashboardTemplate = "dashboard"

// Option configures the Renderer.
type Option func(*config)

type config struct {
	templateFS  fs.FS
	templateDir string
	title      string
	pathPrefix string
	backendURL string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir layers a directory on disk over the template bundle.
// Templates found there win; anything missing, such as a partial, falls back
// to the bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(title) != "" {
			cfg.title = title
		}
	}
}

// WithPathPrefix mounts form targets below prefix (for example /ui).
func WithPathPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.pathPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithBackendURL shows the backend base URL in the page header.
func WithBackendURL(u string) Option {
	return func(cfg *config) {
		cfg.backendURL = u
	}
}

// Renderer turns a view-model snapshot into the dashboard page.
type Renderer struct {
	engine     *Engine
	pathPrefix string
}

// New constructs the renderer using the embedded templates unless another
// bundle is configured.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), title: "Form Bridge"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	engine, err := NewEngine(
		WithBaseDir(cfg.templateDir),
		WithFS(cfg.templateFS),
		WithExtension(".tmpl"),
		WithGlobalData(map[string]any{
			"title":       cfg.title,
			"backend_url": cfg.backendURL,
			"stylesheet":  defaultStylesheet(),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("html renderer: configure template engine: %w", err)
	}
	return &Renderer{engine: engine, pathPrefix: cfg.pathPrefix}, nil
}

// ActionPath is the form target of a panel action.
func (r *Renderer) ActionPath(panelID, actionID string) string {
	return r.pathPrefix + "/panels/" + url.PathEscape(panelID) + "/actions/" + url.PathEscape(actionID)
}

// SamplePath is the form target of a panel's "fill sample" button.
func (r *Renderer) SamplePath(panelID string) string {
	return r.pathPrefix + "/panels/" + url.PathEscape(panelID) + "/sample"
}

// Render writes the dashboard for the current view-model state. active is a
// navigation selector; the matching panel is highlighted in the nav bar.
func (r *Renderer) Render(w io.Writer, vm *viewmodel.ViewModel, active string) error {
	if vm == nil {
		return errors.New("html renderer: view-model is required")
	}
	page := r.page(vm, active)
	if _, err := r.engine.RenderTemplate(DashboardTemplate, page, w); err != nil {
		return fmt.Errorf("html renderer: %w", err)
	}
	return nil
}

type pageView struct {
	Active string      `json:"active"`
	Nav    []navItem   `json:"nav"`
	Panels []panelView `json:"panels"`
}

type navItem struct {
	Label  string `json:"label"`
	Anchor string `json:"anchor"`
}

type panelView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Anchor      string       `json:"anchor"`
	OutputID    string       `json:"output_id"`
	Output      string       `json:"output"`
	SampleURL   string       `json:"sample_url,omitempty"`
	Fields      []fieldView  `json:"fields"`
	Actions     []actionView `json:"actions"`
}

type fieldView struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Kind        string       `json:"kind"`
	Value       string       `json:"value"`
	Placeholder string       `json:"placeholder,omitempty"`
	Help        string       `json:"help,omitempty"`
	Options     []optionView `json:"options,omitempty"`
}

type optionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type actionView struct {
	ID        string `json:"id"`
	ElementID string `json:"element_id"`
	Label     string `json:"label"`
	URL       string `json:"url"`
}

func (r *Renderer) page(vm *viewmodel.ViewModel, active string) pageView {
	var page pageView
	if p, ok := vm.ScrollTo(active); ok {
		page.Active = p.Anchor()
	}

	fields := vm.Fields()
	for _, p := range vm.Catalog().Panels() {
		page.Nav = append(page.Nav, navItem{Label: p.Title, Anchor: p.Anchor()})
		page.Panels = append(page.Panels, r.panelView(vm, p, fields))
	}
	return page
}

func (r *Renderer) panelView(vm *viewmodel.ViewModel, p panel.Panel, fields map[string]string) panelView {
	output, _ := vm.Output(p.OutputID())
	view := panelView{
		ID:          p.ID,
		Title:       p.Title,
		Description: SanitizeDescriptor(p.Description),
		Anchor:      p.Anchor(),
		OutputID:    p.OutputID(),
		Output:      output,
	}
	if len(p.Sample) > 0 {
		view.SampleURL = r.SamplePath(p.ID)
	}

	for _, f := range p.Fields {
		id := p.FieldID(f.Name)
		kind := string(f.Kind)
		if kind == "" {
			kind = string(panel.KindText)
		}
		fv := fieldView{
			ID:          id,
			Label:       f.DisplayLabel(),
			Kind:        kind,
			Value:       fields[id],
			Placeholder: f.Default,
			Help:        SanitizeDescriptor(f.Help),
		}
		for _, option := range f.Options {
			fv.Options = append(fv.Options, optionView{Value: option, Selected: option == fv.Value})
		}
		view.Fields = append(view.Fields, fv)
	}

	for _, a := range p.Actions {
		view.Actions = append(view.Actions, actionView{
			ID:        a.ID,
			ElementID: p.IDPrefix() + "-" + a.ID + "-btn",
			Label:     a.DisplayLabel(),
			URL:       r.ActionPath(p.ID, a.ID),
		})
	}
	return view
}
