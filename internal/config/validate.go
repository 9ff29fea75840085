package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "metrics.pushgateway_url"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownKinds lists the storage kinds shipped in internal/storage/all.
var knownKinds = map[string]struct{}{
	"sqlite":   {},
	"postgres": {},
	"mysql":    {},
	"mssql":    {},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate performs static validation of a Config.
//
// It combines struct-tag rules with cross-field checks and returns every
// finding rather than stopping at the first. Callers decide whether warnings
// are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	issues = append(issues, tagIssues(c)...)
	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	return issues
}

// Errors returns the error-severity issues joined into one error, or nil.
func Errors(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}

// tagIssues converts validator field errors into Issues with koanf paths.
func tagIssues(c Config) []Issue {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     fieldPath(fe.Namespace()),
			Message:  tagMessage(fe),
		})
	}
	return issues
}

// fieldPath turns "Config.Storage.PingTimeout" into "storage.ping_timeout"
// using the koanf tags of the struct fields.
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if tag, ok := koanfNames[p]; ok {
			parts[i] = tag
		} else {
			parts[i] = strings.ToLower(p)
		}
	}
	return strings.Join(parts, ".")
}

// koanfNames maps Go field names to their koanf keys where they differ by
// more than case.
var koanfNames = map[string]string{
	"PingTimeout":     "ping_timeout",
	"AutoCreateTable": "auto_create_table",
	"PushgatewayURL":  "pushgateway_url",
	"DatadogAddr":     "datadog_addr",
	"RuleWidth":       "rule_width",
	"DSN":             "dsn",
	"JSON":            "json",
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("must be a URL, got %q", fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// validateStorage checks storage settings beyond struct tags.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if s.Kind != "" {
		if _, ok := knownKinds[s.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.kind",
				Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
			})
		}
	}
	if s.Kind == "sqlite" && strings.Contains(s.DSN, "://") && !strings.HasPrefix(s.DSN, "file:") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.dsn",
			Message:  "sqlite dsn looks like a network URL; expected a file path or file: URI",
		})
	}

	return issues
}

// validateMetrics checks that the selected backend has its address.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "prompush":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prompush backend requires pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires datadog_addr",
			})
		}
	}
	for i, tag := range m.Tags {
		if !strings.Contains(tag, ":") {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("metrics.tags[%d]", i),
				Message:  fmt.Sprintf("tag %q is not in key:value form", tag),
			})
		}
	}

	return issues
}
