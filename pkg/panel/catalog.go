package panel

import (
	"fmt"
	"net/http"
	"strings"
)

// Catalog is an ordered, validated set of panels. It is safe for concurrent
// readers once constructed.
type Catalog struct {
	panels []Panel
	index  map[string]int
}

// NewCatalog validates the supplied panels and preserves their order.
func NewCatalog(panels ...Panel) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(panels))}
	for _, p := range panels {
		if err := Validate(p); err != nil {
			return nil, err
		}
		if _, exists := c.index[p.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate panel %q", ErrInvalidCatalog, p.ID)
		}
		c.index[p.ID] = len(c.panels)
		c.panels = append(c.panels, p.Clone())
	}
	return c, nil
}

// MustCatalog panics when the panels do not validate. Useful for built-ins
// and tests.
func MustCatalog(panels ...Panel) *Catalog {
	c, err := NewCatalog(panels...)
	if err != nil {
		panic(err)
	}
	return c
}

// Panels returns copies of the panels in declaration order.
func (c *Catalog) Panels() []Panel {
	if c == nil {
		return nil
	}
	out := make([]Panel, len(c.panels))
	for i, p := range c.panels {
		out[i] = p.Clone()
	}
	return out
}

// Panel returns a copy of the panel with the given id.
func (c *Catalog) Panel(id string) (Panel, bool) {
	if c == nil {
		return Panel{}, false
	}
	idx, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return Panel{}, false
	}
	return c.panels[idx].Clone(), true
}

// Len reports the number of panels.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.panels)
}

// Merge returns a new catalog where overrides replace panels with the same id
// and unknown ids are appended.
func (c *Catalog) Merge(overrides ...Panel) (*Catalog, error) {
	merged := c.Panels()
	for _, o := range overrides {
		replaced := false
		for i := range merged {
			if merged[i].ID == o.ID {
				merged[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, o)
		}
	}
	return NewCatalog(merged...)
}

// Validate checks a single panel descriptor for internal consistency.
func Validate(p Panel) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: panel id is required", ErrInvalidCatalog)
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("%w: panel %q defines no actions", ErrInvalidCatalog, p.ID)
	}

	fields := make(map[string]struct{}, len(p.Fields))
	for _, f := range p.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("%w: panel %q has a field without name", ErrInvalidCatalog, p.ID)
		}
		if _, dup := fields[name]; dup {
			return fmt.Errorf("%w: panel %q defines field %q twice", ErrInvalidCatalog, p.ID, name)
		}
		switch f.Kind {
		case "", KindText, KindNumber, KindJSON:
		default:
			return fmt.Errorf("%w: panel %q field %q has unknown kind %q", ErrInvalidCatalog, p.ID, name, f.Kind)
		}
		fields[name] = struct{}{}
	}
	for key := range p.Sample {
		if _, ok := fields[key]; !ok {
			return fmt.Errorf("%w: panel %q sample sets unknown field %q", ErrInvalidCatalog, p.ID, key)
		}
	}

	actions := make(map[string]struct{}, len(p.Actions))
	for _, a := range p.Actions {
		if err := validateAction(p.ID, a, fields); err != nil {
			return err
		}
		if _, dup := actions[a.ID]; dup {
			return fmt.Errorf("%w: panel %q defines action %q twice", ErrInvalidCatalog, p.ID, a.ID)
		}
		actions[a.ID] = struct{}{}
	}
	return nil
}

func validateAction(panelID string, a Action, fields map[string]struct{}) error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: panel %q has an action without id", ErrInvalidCatalog, panelID)
	}
	switch strings.ToUpper(a.Method) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return fmt.Errorf("%w: panel %q action %q has unsupported method %q", ErrInvalidCatalog, panelID, a.ID, a.Method)
	}
	switch a.In {
	case "", InBody, InQuery:
	default:
		return fmt.Errorf("%w: panel %q action %q has unknown location %q", ErrInvalidCatalog, panelID, a.ID, a.In)
	}

	if len(a.Fanout) > 0 {
		if a.Path != "" {
			return fmt.Errorf("%w: panel %q action %q sets both path and fanout", ErrInvalidCatalog, panelID, a.ID)
		}
		for _, t := range a.Fanout {
			if strings.TrimSpace(t.Name) == "" || !strings.HasPrefix(t.Path, "/") {
				return fmt.Errorf("%w: panel %q action %q has an invalid fanout target", ErrInvalidCatalog, panelID, a.ID)
			}
		}
	} else if !strings.HasPrefix(a.Path, "/") {
		return fmt.Errorf("%w: panel %q action %q path must start with /", ErrInvalidCatalog, panelID, a.ID)
	}

	for _, name := range a.Fields {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%w: panel %q action %q uses unknown field %q", ErrInvalidCatalog, panelID, a.ID, name)
		}
	}

	placeholder := PathPlaceholder(a.Path)
	switch {
	case a.Requires != "":
		if _, ok := fields[a.Requires]; !ok {
			return fmt.Errorf("%w: panel %q action %q requires unknown field %q", ErrInvalidCatalog, panelID, a.ID, a.Requires)
		}
		if placeholder == "" {
			return fmt.Errorf("%w: panel %q action %q requires %q but path has no placeholder", ErrInvalidCatalog, panelID, a.ID, a.Requires)
		}
	case placeholder != "":
		return fmt.Errorf("%w: panel %q action %q path placeholder {%s} has no requires field", ErrInvalidCatalog, panelID, a.ID, placeholder)
	}

	if a.Capture != nil {
		if strings.TrimSpace(a.Capture.From) == "" {
			return fmt.Errorf("%w: panel %q action %q capture needs a source path", ErrInvalidCatalog, panelID, a.ID)
		}
		if _, ok := fields[a.Capture.Into]; !ok {
			return fmt.Errorf("%w: panel %q action %q captures into unknown field %q", ErrInvalidCatalog, panelID, a.ID, a.Capture.Into)
		}
	}
	return nil
}

// PathPlaceholder returns the name inside the first {...} segment of path.
func PathPlaceholder(path string) string {
	start := strings.Index(path, "{")
	if start < 0 {
		return ""
	}
	end := strings.Index(path[start:], "}")
	if end < 0 {
		return ""
	}
	return path[start+1 : start+end]
}
