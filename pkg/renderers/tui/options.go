package tui

// Theme captures optional prefixes applied to printed messages.
type Theme struct {
	InfoPrefix   string
	OutputPrefix string
}

// Option configures the Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithStartPanel opens the session directly on the given panel.
func WithStartPanel(panelID string) Option {
	return func(s *Session) {
		s.startPanel = panelID
	}
}
