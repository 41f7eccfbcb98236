package viewmodel

import (
	"context"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
)

// Handler runs one bound panel action against the current field values.
type Handler func(ctx context.Context) Invocation

// Invocation reports what a handler did. Output is empty when the handler
// was skipped.
type Invocation struct {
	Panel    string
	Action   string
	Outcome  bridge.Outcome
	Result   bridge.Result
	Captured string
	Output   string
	Err      error
}

// Bind is the handler factory: it turns every action of a panel descriptor
// into a Handler reading and writing the view-model state.
func Bind(vm *ViewModel, p panel.Panel) map[string]Handler {
	handlers := make(map[string]Handler, len(p.Actions))
	for _, a := range p.Actions {
		a := a
		handlers[a.ID] = func(ctx context.Context) Invocation {
			return vm.run(ctx, p, a)
		}
	}
	return handlers
}

func (vm *ViewModel) run(ctx context.Context, p panel.Panel, a panel.Action) Invocation {
	inv := Invocation{Panel: p.ID, Action: a.ID}

	plan := planAction(p, a, vm.snapshot())
	switch {
	case plan.skip:
		inv.Outcome = bridge.OutcomeSkipped
		return inv
	case plan.invalid:
		inv.Outcome = bridge.OutcomeInvalidInput
		inv.Result = bridge.Result{Outcome: bridge.OutcomeInvalidInput}
		inv.Output = vm.renderOutput(p, inv.Result.Display())
		return inv
	}

	var (
		res     bridge.Result
		display any
	)
	if len(a.Fanout) > 0 {
		// legs carry their own error detail, so the combined envelope is
		// always shown
		res = vm.fanout(ctx, plan)
		display = res.Envelope
	} else {
		req := plan.requests[0]
		res = vm.fetcher.FetchJSON(ctx, req.method, req.target, req.opts)
		display = res.Display()
	}

	inv.Result = res
	inv.Outcome = res.Outcome
	inv.Err = res.Err

	if res.Outcome == bridge.OutcomeSuccess && a.Capture != nil {
		if id := gjson.GetBytes(res.Raw, a.Capture.From); id.Exists() && id.String() != "" {
			inv.Captured = id.String()
			vm.SetField(p.FieldID(a.Capture.Into), inv.Captured)
		}
	}

	inv.Output = vm.renderOutput(p, display)
	return inv
}

func (vm *ViewModel) renderOutput(p panel.Panel, display any) string {
	vm.Render(p.OutputID(), display)
	return bridge.Pretty(display)
}

// fanout issues every leg concurrently and folds the results into a single
// envelope keyed by leg name. The combined status is the highest status seen.
func (vm *ViewModel) fanout(ctx context.Context, plan buildPlan) bridge.Result {
	results := make([]bridge.Result, len(plan.requests))

	var g errgroup.Group
	for i, req := range plan.requests {
		i, req := i, req
		g.Go(func() error {
			results[i] = vm.fetcher.FetchJSON(ctx, req.method, req.target, req.opts)
			return results[i].Err
		})
	}
	firstErr := g.Wait()

	data := make(map[string]any, len(results))
	combined := bridge.Result{Outcome: bridge.OutcomeSuccess}
	for i, r := range results {
		data[plan.names[i]] = r.Display()
		if r.Envelope.Status > combined.Envelope.Status {
			combined.Envelope.Status = r.Envelope.Status
		}
		combined.Outcome = worse(combined.Outcome, r.Outcome)
	}

	combined.Envelope.Data = data
	combined.Err = firstErr
	return combined
}

func worse(a, b bridge.Outcome) bridge.Outcome {
	rank := map[bridge.Outcome]int{
		bridge.OutcomeSuccess:        0,
		bridge.OutcomeHTTPError:      1,
		bridge.OutcomeTransportError: 2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
