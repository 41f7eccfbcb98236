package viewmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
)

// request is the fully resolved call for one action leg.
type request struct {
	method string
	target string
	opts   bridge.RequestOptions
}

// buildPlan captures everything an action needs from the field snapshot.
type buildPlan struct {
	skip     bool
	invalid  bool
	requests []request
	names    []string
}

func planAction(p panel.Panel, a panel.Action, values map[string]string) buildPlan {
	path := a.Path
	if a.Requires != "" {
		id := strings.TrimSpace(values[p.FieldID(a.Requires)])
		if id == "" {
			return buildPlan{skip: true}
		}
		path = strings.Replace(path, "{"+panel.PathPlaceholder(path)+"}", url.PathEscape(id), 1)
	}

	payload := make(map[string]any, len(a.Fields))
	query := url.Values{}
	location := a.Location()

	for _, name := range a.Fields {
		field, _ := p.Field(name)
		value, ok := fieldValue(field, values[p.FieldID(name)])
		if !ok {
			return buildPlan{invalid: true}
		}
		if location == panel.InQuery {
			if value != nil {
				query.Set(name, queryString(value))
			}
			continue
		}
		if err := setPath(payload, name, value); err != nil {
			return buildPlan{invalid: true}
		}
	}

	opts := bridge.RequestOptions{}
	if location == panel.InQuery {
		if len(query) > 0 {
			opts.Query = query
		}
	} else {
		opts.Body = payload
	}

	method := strings.ToUpper(a.Method)
	if len(a.Fanout) == 0 {
		return buildPlan{requests: []request{{method: method, target: path, opts: opts}}}
	}

	plan := buildPlan{}
	for _, t := range a.Fanout {
		plan.requests = append(plan.requests, request{method: method, target: t.Path, opts: opts})
		plan.names = append(plan.names, t.Name)
	}
	return plan
}

// fieldValue converts a raw field value according to its kind. The boolean is
// false only when a JSON-bearing field fails to parse.
func fieldValue(field panel.Field, raw string) (any, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = field.Default
	}

	switch field.Kind {
	case panel.KindJSON:
		parsed := bridge.SafeParseJSON(value)
		if !parsed.OK() {
			return nil, false
		}
		return parsed.Value, true
	case panel.KindNumber:
		if value == "" {
			return nil, true
		}
		// NaN and Inf parse but cannot be encoded as JSON numbers
		if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, true
		}
		return value, true
	default:
		if value == "" {
			return nil, true
		}
		return value, true
	}
}

func queryString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

// setPath writes value at a dotted path, creating intermediate objects.
func setPath(root map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	current := root
	for i, segment := range segments {
		if segment == "" {
			return fmt.Errorf("viewmodel: empty segment in path %q", path)
		}
		if i == len(segments)-1 {
			current[segment] = value
			return nil
		}
		child, ok := current[segment].(map[string]any)
		if !ok {
			if _, exists := current[segment]; exists {
				return fmt.Errorf("viewmodel: path %q collides with a scalar at %q", path, segment)
			}
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	return nil
}
