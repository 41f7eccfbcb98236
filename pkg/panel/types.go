package panel

import (
	"errors"
	"strings"
)

// ErrInvalidCatalog is returned when a catalog or panel descriptor fails
// validation.
var ErrInvalidCatalog = errors.New("panel: invalid catalog")

// FieldKind controls how a raw field value is turned into a payload value.
type FieldKind string

const (
	// KindText sends the trimmed value as a string.
	KindText FieldKind = "text"
	// KindNumber coerces the trimmed value to a number.
	KindNumber FieldKind = "number"
	// KindJSON runs the value through SafeParseJSON before sending.
	KindJSON FieldKind = "json"
)

// Location tells where an action places its field values.
type Location string

const (
	// InBody sends a JSON request body.
	InBody Location = "body"
	// InQuery appends values to the query string.
	InQuery Location = "query"
)

// Field describes one named input of a panel. Name is the wire name and may be
// dotted (coordinate.latitude) to build nested payloads.
type Field struct {
	Name    string    `json:"name" yaml:"name"`
	Label   string    `json:"label,omitempty" yaml:"label,omitempty"`
	Kind    FieldKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Default string    `json:"default,omitempty" yaml:"default,omitempty"`
	Help    string    `json:"help,omitempty" yaml:"help,omitempty"`
	Options []string  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Key is the DOM-style suffix for the field (aoi_name -> aoi-name).
func (f Field) Key() string {
	return fieldKey(f.Name)
}

// DisplayLabel falls back to the field name when no label is configured.
func (f Field) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

// Capture copies a value out of a successful response into a panel field.
// From is a gjson path evaluated against the response body.
type Capture struct {
	From string `json:"from" yaml:"from"`
	Into string `json:"into" yaml:"into"`
}

// Target is one leg of a fan-out action.
type Target struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Action binds a button to one HTTP call. Path may contain a single
// {placeholder} which is filled from the Requires field; an empty Requires
// value turns the action into a no-op.
type Action struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"`
	Method   string   `json:"method" yaml:"method"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	In       Location `json:"in,omitempty" yaml:"in,omitempty"`
	Fields   []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Requires string   `json:"requires,omitempty" yaml:"requires,omitempty"`
	Capture  *Capture `json:"capture,omitempty" yaml:"capture,omitempty"`
	Fanout   []Target `json:"fanout,omitempty" yaml:"fanout,omitempty"`
}

// DisplayLabel falls back to the action id.
func (a Action) DisplayLabel() string {
	if strings.TrimSpace(a.Label) != "" {
		return a.Label
	}
	return a.ID
}

// Location returns the configured placement, defaulting by method.
func (a Action) Location() Location {
	if a.In != "" {
		return a.In
	}
	switch strings.ToUpper(a.Method) {
	case "POST", "PUT", "PATCH":
		return InBody
	default:
		return InQuery
	}
}

// Panel groups a feature's fields, actions, output area and sample values.
type Panel struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	Prefix      string            `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field           `json:"fields,omitempty" yaml:"fields,omitempty"`
	Actions     []Action          `json:"actions" yaml:"actions"`
	Sample      map[string]string `json:"sample,omitempty" yaml:"sample,omitempty"`
}

// IDPrefix returns the element prefix, defaulting to the panel id.
func (p Panel) IDPrefix() string {
	if strings.TrimSpace(p.Prefix) != "" {
		return p.Prefix
	}
	return p.ID
}

// FieldID returns the <prefix>-<field> identifier for a field name.
func (p Panel) FieldID(name string) string {
	return p.IDPrefix() + "-" + fieldKey(name)
}

// OutputID returns the identifier of the panel's output area.
func (p Panel) OutputID() string {
	return p.IDPrefix() + "-output"
}

// Anchor is the navigation target used by scroll helpers.
func (p Panel) Anchor() string {
	return "panel-" + p.ID
}

// Field looks up a field by wire name.
func (p Panel) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Action looks up an action by id.
func (p Panel) Action(id string) (Action, bool) {
	for _, a := range p.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Clone returns a deep copy so callers can mutate descriptors safely.
func (p Panel) Clone() Panel {
	out := p
	out.Fields = make([]Field, len(p.Fields))
	for i, f := range p.Fields {
		f.Options = append([]string(nil), f.Options...)
		out.Fields[i] = f
	}
	out.Actions = make([]Action, len(p.Actions))
	for i, a := range p.Actions {
		a.Fields = append([]string(nil), a.Fields...)
		a.Fanout = append([]Target(nil), a.Fanout...)
		if a.Capture != nil {
			c := *a.Capture
			a.Capture = &c
		}
		out.Actions[i] = a
	}
	if p.Sample != nil {
		out.Sample = make(map[string]string, len(p.Sample))
		for k, v := range p.Sample {
			out.Sample[k] = v
		}
	}
	return out
}

func fieldKey(name string) string {
	replacer := strings.NewReplacer("_", "-", ".", "-")
	return replacer.Replace(strings.TrimSpace(name))
}
