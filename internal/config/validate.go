package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

func (e *ValidationErrors) add(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks every section. Defaults must already be applied.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Listen == "" {
		errs.add("listen", "must not be empty")
	}
	c.validateLanguage(&errs)

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs.add("log.level", "%v", err)
	}

	p := c.Provider
	switch p.Backend {
	case BackendStub, BackendKV:
	default:
		errs.add("provider.backend", "unknown backend %q (want %s or %s)", p.Backend, BackendStub, BackendKV)
	}
	switch p.SystemSource {
	case SystemFixtures, SystemHost:
	default:
		errs.add("provider.system_source", "unknown source %q (want %s or %s)", p.SystemSource, SystemFixtures, SystemHost)
	}
	if d, err := p.LatencyDuration(); err != nil {
		errs.add("provider.latency", "%v", err)
	} else if d < 0 {
		errs.add("provider.latency", "must not be negative")
	}

	seen := make(map[string]bool)
	for _, f := range c.Faults {
		field := fmt.Sprintf("fault[%s.%s]", f.Kind, f.Op)
		kind, err := model.ParseKind(f.Kind)
		if err != nil {
			errs.add(field, "%v", err)
			continue
		}
		if !provider.Supports(kind, provider.Op(f.Op)) {
			errs.add(field, "%s has no %q operation", kind, f.Op)
			continue
		}
		if seen[field] {
			errs.add(field, "declared twice")
		}
		seen[field] = true
	}

	if c.Metrics.IsEnabled() && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs.add("metrics.path", "must start with /")
	}

	if l := c.LoginLimit; l.IsEnabled() {
		if l.Attempts < 1 {
			errs.add("login_limit.attempts", "must be at least 1")
		}
		if d, err := l.WindowDuration(); err != nil {
			errs.add("login_limit.window", "%v", err)
		} else if d <= 0 {
			errs.add("login_limit.window", "must be positive")
		}
	}

	return errs
}

func (c *Config) validateLanguage(errs *ValidationErrors) {
	tag, err := language.Parse(c.Language)
	if err != nil {
		errs.add("language", "invalid language %q", c.Language)
		return
	}
	base, _ := tag.Base()
	for _, supported := range i18n.SupportedLangs {
		if b, _ := supported.Base(); b == base {
			return
		}
	}
	errs.add("language", "unsupported language %q", c.Language)
}
