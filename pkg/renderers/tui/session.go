package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formbridge/pkg/bridge"
	"github.com/goliatone/go-formbridge/pkg/panel"
	"github.com/goliatone/go-formbridge/pkg/viewmodel"
)

const (
	menuQuit   = "Quit"
	menuBack   = "Back"
	menuEdit   = "Edit fields"
	menuSample = "Fill sample values"
)

// Session drives a view-model from the terminal: pick a panel, edit its
// fields, fill samples and fire actions. Outputs are printed after every
// action that produced one.
type Session struct {
	vm         *viewmodel.ViewModel
	driver     PromptDriver
	theme      Theme
	startPanel string
}

// NewSession constructs a Session backed by the survey driver unless another
// driver is supplied.
func NewSession(vm *viewmodel.ViewModel, options ...Option) (*Session, error) {
	if vm == nil {
		return nil, ErrNoViewModel
	}
	s := &Session{vm: vm, driver: newSurveyDriver()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Run loops until the user quits. Ctrl+C ends the session without error.
func (s *Session) Run(ctx context.Context) error {
	err := s.loop(ctx)
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}

func (s *Session) loop(ctx context.Context) error {
	if s.startPanel != "" {
		p, ok := s.vm.ScrollTo(s.startPanel)
		if ok {
			if err := s.runPanel(ctx, p); err != nil {
				return err
			}
		}
	}

	panels := s.vm.Catalog().Panels()
	options := make([]string, 0, len(panels)+1)
	for _, p := range panels {
		options = append(options, p.Title)
	}
	options = append(options, menuQuit)

	for {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      "Panel",
			Options:      options,
			DefaultIndex: 0,
			PageSize:     len(options),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(panels) {
			return nil
		}
		if err := s.runPanel(ctx, panels[idx]); err != nil {
			return err
		}
	}
}

type menuKind int

const (
	entryEdit menuKind = iota
	entrySample
	entryAction
	entryBack
)

// menuEntry ties a rendered option back to what it does. Labels are free
// text in catalog overrides, so choices are resolved by position only.
type menuEntry struct {
	kind   menuKind
	action panel.Action
}

func panelMenu(p panel.Panel) ([]string, []menuEntry) {
	var (
		labels  []string
		entries []menuEntry
	)
	add := func(label string, entry menuEntry) {
		labels = append(labels, label)
		entries = append(entries, entry)
	}
	if len(p.Fields) > 0 {
		add(menuEdit, menuEntry{kind: entryEdit})
	}
	if len(p.Sample) > 0 {
		add(menuSample, menuEntry{kind: entrySample})
	}
	for _, a := range p.Actions {
		add(a.DisplayLabel(), menuEntry{kind: entryAction, action: a})
	}
	add(menuBack, menuEntry{kind: entryBack})
	return labels, entries
}

func (s *Session) runPanel(ctx context.Context, p panel.Panel) error {
	options, entries := panelMenu(p)

	for {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:  p.Title,
			Options:  options,
			Help:     p.Description,
			PageSize: len(options),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(entries) {
			continue
		}

		switch entry := entries[idx]; entry.kind {
		case entryBack:
			return nil
		case entryEdit:
			if err := s.editFields(ctx, p); err != nil {
				return err
			}
		case entrySample:
			if err := s.vm.PopulateSample(p.ID); err != nil {
				return err
			}
			if err := s.info(ctx, fmt.Sprintf("Sample values loaded for %s", p.Title)); err != nil {
				return err
			}
		case entryAction:
			if err := s.runAction(ctx, p, entry.action); err != nil {
				return err
			}
		}
	}
}

func (s *Session) editFields(ctx context.Context, p panel.Panel) error {
	for _, f := range p.Fields {
		id := p.FieldID(f.Name)
		current, _ := s.vm.ReadField(id)
		help := f.Help
		if help == "" && f.Default != "" {
			help = "Defaults to " + f.Default
		}

		var (
			value string
			err   error
		)
		switch {
		case len(f.Options) > 0:
			value, err = s.selectOption(ctx, f, current)
		case f.Kind == panel.KindJSON:
			value, err = s.driver.TextArea(ctx, TextAreaConfig{Message: f.DisplayLabel(), Default: current, Help: help})
		default:
			value, err = s.driver.Input(ctx, InputConfig{Message: f.DisplayLabel(), Default: current, Help: help})
		}
		if err != nil {
			return err
		}
		s.vm.SetField(id, value)
	}
	return nil
}

func (s *Session) selectOption(ctx context.Context, f panel.Field, current string) (string, error) {
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      f.DisplayLabel(),
		Options:      f.Options,
		DefaultIndex: indexOf(f.Options, current),
		Help:         f.Help,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(f.Options) {
		return current, nil
	}
	return f.Options[idx], nil
}

func (s *Session) runAction(ctx context.Context, p panel.Panel, a panel.Action) error {
	inv, err := s.vm.Invoke(ctx, p.ID, a.ID)
	if err != nil && !errors.Is(err, bridge.ErrTransport) {
		return err
	}
	if inv.Outcome == bridge.OutcomeSkipped {
		return nil
	}
	if inv.Captured != "" && a.Capture != nil {
		if err := s.info(ctx, fmt.Sprintf("%s = %s", p.FieldID(a.Capture.Into), inv.Captured)); err != nil {
			return err
		}
	}
	return s.driver.Info(ctx, s.theme.OutputPrefix+inv.Output)
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}
