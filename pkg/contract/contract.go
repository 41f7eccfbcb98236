package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbridge/pkg/panel"
)

//go:embed backend.yaml
var embeddedBackend []byte

// EmbeddedBackend returns the bundled OpenAPI description of the backend.
func EmbeddedBackend() []byte {
	return append([]byte(nil), embeddedBackend...)
}

// Issue describes a panel action that does not line up with the backend
// contract.
type Issue struct {
	Panel   string
	Action  string
	Path    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s/%s %s -> %s", i.Panel, i.Action, i.Path, i.Message)
}

// Document is a parsed backend contract.
type Document struct {
	api *openapi3.T
}

// Parse loads and validates an OpenAPI document from raw JSON or YAML.
func Parse(ctx context.Context, raw []byte) (*Document, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("contract: document is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx

	api, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := api.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	if api.Paths == nil || api.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}
	return &Document{api: api}, nil
}

// Load resolves location (file path or http(s) URL) and parses it. An empty
// location selects the embedded document.
func Load(ctx context.Context, location string, client *http.Client) (*Document, error) {
	location = strings.TrimSpace(location)
	var (
		raw []byte
		err error
	)
	switch {
	case location == "":
		raw = EmbeddedBackend()
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		raw, err = loadHTTP(ctx, client, location)
	default:
		raw, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("contract: read %s: %w", location, err)
	}
	return Parse(ctx, raw)
}

// Verify checks every action of the catalog against the document: the route
// and method must exist, query fields must be declared parameters and body
// fields must be declared request body properties.
func (d *Document) Verify(catalog *panel.Catalog) []Issue {
	var issues []Issue
	for _, p := range catalog.Panels() {
		for _, a := range p.Actions {
			paths := []string{a.Path}
			if len(a.Fanout) > 0 {
				paths = paths[:0]
				for _, t := range a.Fanout {
					paths = append(paths, t.Path)
				}
			}
			for _, path := range paths {
				issues = append(issues, d.verifyAction(p, a, path)...)
			}
		}
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Panel != issues[j].Panel {
			return issues[i].Panel < issues[j].Panel
		}
		if issues[i].Action != issues[j].Action {
			return issues[i].Action < issues[j].Action
		}
		return issues[i].Message < issues[j].Message
	})
	return issues
}

func (d *Document) verifyAction(p panel.Panel, a panel.Action, path string) []Issue {
	issue := func(format string, args ...any) Issue {
		return Issue{Panel: p.ID, Action: a.ID, Path: path, Message: fmt.Sprintf(format, args...)}
	}

	item := d.api.Paths.Find(path)
	if item == nil {
		return []Issue{issue("path is not declared by the backend")}
	}
	method := strings.ToUpper(a.Method)
	op := item.GetOperation(method)
	if op == nil {
		return []Issue{issue("method %s is not declared for this path", method)}
	}

	var issues []Issue
	if a.Location() == panel.InQuery {
		for _, name := range a.Fields {
			if op.Parameters.GetByInAndName(openapi3.ParameterInQuery, name) == nil {
				issues = append(issues, issue("query parameter %q is not declared", name))
			}
		}
		return issues
	}

	schema := requestSchema(op)
	for _, name := range a.Fields {
		if schema == nil {
			issues = append(issues, issue("operation declares no JSON request body for %q", name))
			continue
		}
		if !hasProperty(schema, name) {
			issues = append(issues, issue("body property %q is not declared", name))
		}
	}
	return issues
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

func hasProperty(schema *openapi3.Schema, dotted string) bool {
	current := schema
	for _, segment := range strings.Split(dotted, ".") {
		if current == nil {
			return false
		}
		ref, ok := current.Properties[segment]
		if !ok || ref == nil {
			return false
		}
		current = ref.Value
	}
	return true
}

func loadHTTP(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
