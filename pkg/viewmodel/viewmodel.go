package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
)

var (
	// ErrUnknownPanel is returned for panel ids missing from the catalog.
	ErrUnknownPanel = errors.New("viewmodel: unknown panel")
	// ErrUnknownAction is returned for action ids missing from a panel.
	ErrUnknownAction = errors.New("viewmodel: unknown action")
)

// Fetcher performs the HTTP call behind an action. *bridge.Client satisfies
// it.
type Fetcher interface {
	FetchJSON(ctx context.Context, method, target string, opts bridge.RequestOptions) bridge.Result
}

// ViewModel holds field values and rendered outputs for every panel of a
// catalog, and exposes the bound action handlers. All methods are safe for
// concurrent use; the state lock is never held across a network call.
type ViewModel struct {
	catalog  *panel.Catalog
	fetcher  Fetcher
	handlers map[string]map[string]Handler

	mu      sync.RWMutex
	fields  map[string]string
	outputs map[string]string
}

// New builds the view-model and binds every panel action once.
func New(catalog *panel.Catalog, fetcher Fetcher) (*ViewModel, error) {
	if catalog == nil {
		return nil, errors.New("viewmodel: catalog is required")
	}
	if fetcher == nil {
		return nil, errors.New("viewmodel: fetcher is required")
	}

	vm := &ViewModel{
		catalog:  catalog,
		fetcher:  fetcher,
		handlers: make(map[string]map[string]Handler, catalog.Len()),
		fields:   make(map[string]string),
		outputs:  make(map[string]string),
	}
	for _, p := range catalog.Panels() {
		for _, f := range p.Fields {
			vm.fields[p.FieldID(f.Name)] = ""
		}
		vm.outputs[p.OutputID()] = ""
		vm.handlers[p.ID] = Bind(vm, p)
	}
	return vm, nil
}

// Catalog returns the catalog the view-model was built from.
func (vm *ViewModel) Catalog() *panel.Catalog {
	return vm.catalog
}

// ReadField returns the trimmed value of a field; false when no such field
// exists.
func (vm *ViewModel) ReadField(id string) (string, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	value, ok := vm.fields[id]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// SetField writes a raw field value. Unknown ids are ignored and reported as
// false.
func (vm *ViewModel) SetField(id, value string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if _, ok := vm.fields[id]; !ok {
		return false
	}
	vm.fields[id] = value
	return true
}

// SetFields writes several values at once and returns the ids that were
// ignored because they do not exist.
func (vm *ViewModel) SetFields(values map[string]string) []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	var unknown []string
	for id, value := range values {
		if _, ok := vm.fields[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		vm.fields[id] = value
	}
	sort.Strings(unknown)
	return unknown
}

// Fields returns a snapshot of every field value keyed by field id.
func (vm *ViewModel) Fields() map[string]string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return cloneStrings(vm.fields)
}

// Output returns the rendered text of an output area.
func (vm *ViewModel) Output(id string) (string, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	text, ok := vm.outputs[id]
	return text, ok
}

// Outputs returns a snapshot of every output keyed by output id.
func (vm *ViewModel) Outputs() map[string]string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return cloneStrings(vm.outputs)
}

// Render pretty-prints payload into the named output. Unknown targets are
// ignored.
func (vm *ViewModel) Render(targetID string, payload any) {
	text := bridge.Pretty(payload)
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if _, ok := vm.outputs[targetID]; !ok {
		return
	}
	vm.outputs[targetID] = text
}

// PopulateSample writes the panel's canned demonstration values into its
// fields. No request is made.
func (vm *ViewModel) PopulateSample(panelID string) error {
	p, ok := vm.catalog.Panel(panelID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, panelID)
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for name, value := range p.Sample {
		id := p.FieldID(name)
		if _, exists := vm.fields[id]; exists {
			vm.fields[id] = value
		}
	}
	return nil
}

// ScrollTo resolves a navigation selector (#panel-agri, #agri, agri) to the
// first matching panel in catalog order.
func (vm *ViewModel) ScrollTo(selector string) (panel.Panel, bool) {
	target := strings.TrimPrefix(strings.TrimSpace(selector), "#")
	if target == "" {
		return panel.Panel{}, false
	}
	for _, p := range vm.catalog.Panels() {
		if target == p.Anchor() || target == p.ID || target == p.IDPrefix() {
			return p, true
		}
	}
	return panel.Panel{}, false
}

// Handler returns the bound handler for a panel action.
func (vm *ViewModel) Handler(panelID, actionID string) (Handler, error) {
	actions, ok := vm.handlers[panelID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, panelID)
	}
	h, ok := actions[actionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q on panel %q", ErrUnknownAction, actionID, panelID)
	}
	return h, nil
}

// Invoke runs a panel action. Transport failures are rendered and also
// returned as an error wrapping bridge.ErrTransport.
func (vm *ViewModel) Invoke(ctx context.Context, panelID, actionID string) (Invocation, error) {
	h, err := vm.Handler(panelID, actionID)
	if err != nil {
		return Invocation{}, err
	}
	inv := h(ctx)
	return inv, inv.Err
}

func (vm *ViewModel) snapshot() map[string]string {
	return vm.Fields()
}

func cloneStrings(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
