package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/contract"
	"github.com/goliatone/go-formbridge/pkg/renderers/tui"
)

func (a *app) panels(args []string) error {
	fs := a.flagSet("panels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	catalog, err := a.catalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, p := range catalog.Panels() {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Title)
		for _, f := range p.Fields {
			kind := string(f.Kind)
			if kind == "" {
				kind = "text"
			}
			fmt.Fprintf(w, "  field\t%s\t%s\n", p.FieldID(f.Name), kind)
		}
		for _, act := range p.Actions {
			target := act.Path
			if len(act.Fanout) > 0 {
				names := make([]string, 0, len(act.Fanout))
				for _, t := range act.Fanout {
					names = append(names, t.Name)
				}
				target = "fanout: " + strings.Join(names, ", ")
			}
			fmt.Fprintf(w, "  action\t%s\t%s %s\n", act.ID, act.Method, target)
		}
	}
	return w.Flush()
}

func (a *app) runAction(ctx context.Context, args []string) error {
	fs := a.flagSet("run")
	panelID := fs.String("panel", "", "panel id")
	actionID := fs.String("action", "", "action id")
	sample := fs.Bool("sample", false, "fill the panel sample values first")
	values := keyValues{}
	fs.Var(values, "set", "field value as name=value or field-id=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *panelID == "" || *actionID == "" {
		return errors.New("run: -panel and -action are required")
	}

	catalog, err := a.catalog()
	if err != nil {
		return err
	}
	p, ok := catalog.Panel(*panelID)
	if !ok {
		return fmt.Errorf("run: unknown panel %q", *panelID)
	}
	vm, err := a.viewModel(catalog)
	if err != nil {
		return err
	}

	if *sample {
		if err := vm.PopulateSample(p.ID); err != nil {
			return err
		}
	}
	for key, value := range values {
		id := key
		if _, isName := p.Field(key); isName {
			id = p.FieldID(key)
		}
		if !vm.SetField(id, value) {
			return fmt.Errorf("run: panel %s has no field %q", p.ID, key)
		}
	}

	inv, err := vm.Invoke(ctx, p.ID, *actionID)
	if inv.Outcome == bridge.OutcomeSkipped {
		act, _ := p.Action(*actionID)
		fmt.Fprintf(a.stderr, "skipped: %s is empty\n", p.FieldID(act.Requires))
		return nil
	}
	if inv.Output != "" {
		fmt.Fprintln(a.stdout, inv.Output)
	}
	if inv.Captured != "" {
		act, _ := p.Action(*actionID)
		fmt.Fprintf(a.stderr, "%s = %s\n", p.FieldID(act.Capture.Into), inv.Captured)
	}
	return err
}

func (a *app) interactive(ctx context.Context, args []string) error {
	fs := a.flagSet("interactive")
	start := fs.String("panel", "", "open this panel first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	catalog, err := a.catalog()
	if err != nil {
		return err
	}
	vm, err := a.viewModel(catalog)
	if err != nil {
		return err
	}
	session, err := tui.NewSession(vm, tui.WithStartPanel(*start))
	if err != nil {
		return err
	}
	return session.Run(ctx)
}

func (a *app) lint(ctx context.Context, args []string) error {
	fs := a.flagSet("lint")
	source := fs.String("openapi", a.cfg.OpenAPI, "backend OpenAPI document path or URL (embedded document if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	catalog, err := a.catalog()
	if err != nil {
		return err
	}

	client := http.DefaultClient
	if a.cfg.RequestTimeout > 0 {
		client = &http.Client{Timeout: a.cfg.RequestTimeout}
	}
	doc, err := contract.Load(ctx, *source, client)
	if err != nil {
		return err
	}

	issues := doc.Verify(catalog)
	for _, issue := range issues {
		fmt.Fprintln(a.stdout, issue.String())
	}
	if len(issues) > 0 {
		return fmt.Errorf("lint: %d issue(s) found", len(issues))
	}
	fmt.Fprintf(a.stdout, "%d panels match the backend contract\n", catalog.Len())
	return nil
}
