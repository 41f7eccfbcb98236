package tui

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
	"github.com/goliatone/go-formbridge/pkg/viewmodel"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	textAreas    []string
	infoMessages []string
	selectTitles []string
	inputPos     int
	selectPos    int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

// Select aborts once the script runs out, like Ctrl+C at the prompt.
func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectTitles = append(s.selectTitles, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, ErrAborted
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type stubFetcher struct {
	mu      sync.Mutex
	targets []string
	result  bridge.Result
}

func (f *stubFetcher) FetchJSON(_ context.Context, method, target string, _ bridge.RequestOptions) bridge.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, method+" "+target)
	return f.result
}

// Top menu: Demo, Quit.
// Panel menu: Edit fields, Fill sample values, Start job, Job status, Back.
func demoCatalog() *panel.Catalog {
	return panel.MustCatalog(panel.Panel{
		ID:    "demo",
		Title: "Demo",
		Fields: []panel.Field{
			{Name: "name", Label: "Name"},
			{Name: "mode", Label: "Mode", Options: []string{"fast", "slow"}},
			{Name: "payload", Label: "Payload", Kind: panel.KindJSON},
			{Name: "job_id", Label: "Job id"},
		},
		Actions: []panel.Action{
			{
				ID:      "start",
				Label:   "Start job",
				Method:  http.MethodPost,
				Path:    "/api/jobs",
				Fields:  []string{"name", "mode", "payload"},
				Capture: &panel.Capture{From: "job_id", Into: "job_id"},
			},
			{
				ID:       "status",
				Label:    "Job status",
				Method:   http.MethodGet,
				Path:     "/api/jobs/{job_id}",
				Requires: "job_id",
			},
		},
		Sample: map[string]string{"name": "alpha"},
	})
}

func newTestSession(t *testing.T, fetcher *stubFetcher, driver *stubDriver, options ...Option) (*Session, *viewmodel.ViewModel) {
	t.Helper()
	vm, err := viewmodel.New(demoCatalog(), fetcher)
	if err != nil {
		t.Fatalf("view-model: %v", err)
	}
	s, err := NewSession(vm, append([]Option{WithPromptDriver(driver)}, options...)...)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s, vm
}

func TestSession_SampleThenStartCapturesID(t *testing.T) {
	envelope := bridge.Envelope{Status: http.StatusAccepted, Data: map[string]any{"job_id": "j-1"}}
	fetcher := &stubFetcher{result: bridge.Result{
		Outcome:  bridge.OutcomeSuccess,
		Envelope: envelope,
		Raw:      []byte(`{"job_id":"j-1"}`),
	}}
	driver := &stubDriver{selectIdx: []int{0, 1, 2, 4, 1}}
	s, vm := newTestSession(t, fetcher, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{
		"Sample values loaded for Demo",
		"demo-job-id = j-1",
		bridge.Pretty(envelope),
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"POST /api/jobs"}, fetcher.targets); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if got, _ := vm.ReadField("demo-name"); got != "alpha" {
		t.Fatalf("expected sample name, got %q", got)
	}
	if got, _ := vm.ReadField("demo-job-id"); got != "j-1" {
		t.Fatalf("expected captured id, got %q", got)
	}
}

func TestSession_ActionLabelsMatchingMenuEntries(t *testing.T) {
	catalog := panel.MustCatalog(panel.Panel{
		ID:    "nav",
		Title: "Nav",
		Actions: []panel.Action{
			{ID: "back", Label: "Back", Method: http.MethodGet, Path: "/api/back"},
			{ID: "edit", Label: "Edit fields", Method: http.MethodGet, Path: "/api/edit"},
		},
	})
	fetcher := &stubFetcher{result: bridge.Result{
		Outcome:  bridge.OutcomeSuccess,
		Envelope: bridge.Envelope{Status: http.StatusOK},
	}}
	vm, err := viewmodel.New(catalog, fetcher)
	if err != nil {
		t.Fatalf("view-model: %v", err)
	}
	// Panel menu: Back (action), Edit fields (action), Back.
	driver := &stubDriver{selectIdx: []int{0, 0, 1, 2, 1}}
	s, err := NewSession(vm, WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"GET /api/back", "GET /api/edit"}, fetcher.targets); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Panel", "Nav", "Nav", "Nav", "Panel"}, driver.selectTitles); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_EditFieldsThenPoll(t *testing.T) {
	fetcher := &stubFetcher{result: bridge.Result{
		Outcome:  bridge.OutcomeSuccess,
		Envelope: bridge.Envelope{Status: http.StatusOK, Data: map[string]any{"state": "done"}},
	}}
	driver := &stubDriver{
		selectIdx: []int{0, 0, 1, 3, 4, 1},
		inputs:    []string{"beta", "j/9"},
		textAreas: []string{`{"a":1}`},
	}
	s, vm := newTestSession(t, fetcher, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	wantFields := map[string]string{
		"demo-name":    "beta",
		"demo-mode":    "slow",
		"demo-payload": `{"a":1}`,
		"demo-job-id":  "j/9",
	}
	if diff := cmp.Diff(wantFields, vm.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"GET /api/jobs/j%2F9"}, fetcher.targets); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected one output, got %v", driver.infoMessages)
	}
}

func TestSession_PollWithoutIDPrintsNothing(t *testing.T) {
	fetcher := &stubFetcher{}
	driver := &stubDriver{selectIdx: []int{0, 3, 4, 1}}
	s, _ := newTestSession(t, fetcher, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fetcher.targets) != 0 {
		t.Fatalf("expected no requests, got %v", fetcher.targets)
	}
	if len(driver.infoMessages) != 0 {
		t.Fatalf("expected no output, got %v", driver.infoMessages)
	}
}

func TestSession_AbortEndsWithoutError(t *testing.T) {
	driver := &stubDriver{}
	s, _ := newTestSession(t, &stubFetcher{}, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("expected nil error on abort, got %v", err)
	}
}

func TestSession_StartPanelOpensDirectly(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{4, 1}}
	s, _ := newTestSession(t, &stubFetcher{}, driver, WithStartPanel("#panel-demo"))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Demo", "Panel"}, driver.selectTitles); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_ThemePrefixesOutput(t *testing.T) {
	fetcher := &stubFetcher{result: bridge.Result{
		Outcome:  bridge.OutcomeHTTPError,
		Envelope: bridge.Envelope{Status: http.StatusNotFound, Data: "missing"},
	}}
	driver := &stubDriver{selectIdx: []int{0, 2, 4, 1}}
	s, _ := newTestSession(t, fetcher, driver, WithTheme(Theme{OutputPrefix: "> "}))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "> " + bridge.Pretty(bridge.Envelope{Status: http.StatusNotFound, Data: "missing"})
	if diff := cmp.Diff([]string{want}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSession_RequiresViewModel(t *testing.T) {
	if _, err := NewSession(nil); !errors.Is(err, ErrNoViewModel) {
		t.Fatalf("expected ErrNoViewModel, got %v", err)
	}
}
