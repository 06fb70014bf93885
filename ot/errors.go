package ot

import (
	"errors"
	"fmt"
)

// ErrorSeverity tells how much a problem found during parsing affects the
// usability of a font.
type ErrorSeverity int

const (
	SeverityCritical ErrorSeverity = iota // font is unusable
	SeverityMajor                         // a table has been dropped
	SeverityMinor                         // a table has been corrected or is incomplete
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	}
	return "UNKNOWN"
}

// FontError is a problem found while parsing a font. Tables failing to
// sanitize are reported as FontErrors and are not accessible from the font.
type FontError struct {
	Table    Tag    // table where the problem occurred
	Section  string // part of the table, e.g. "Sanitize" or "Bounds"
	Issue    string // description of the problem
	Severity ErrorSeverity
	Offset   uint32 // offset of the table within the font binary, if known
}

func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// FontWarning is a minor issue found while parsing a font, e.g. a table which
// needed in-place corrections.
type FontWarning struct {
	Table  Tag
	Issue  string
	Offset uint32
}

func (w FontWarning) String() string {
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates errors and warnings during font parsing.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	tracer().Errorf("%s/%s: %s", table, section, issue)
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{Table: table, Issue: issue, Offset: offset})
}

// critical wraps the first critical error, if any, for returning it from Parse.
func (ec *errorCollector) critical() error {
	for _, e := range ec.errors {
		if e.Severity == SeverityCritical {
			return errFontFormat(e)
		}
	}
	return nil
}

// ErrFontFormat is the error returned from Parse for fonts which cannot be
// used at all.
var ErrFontFormat = errors.New("OpenType font format")

func errFontFormat(e FontError) error {
	return fmt.Errorf("%w: %s", ErrFontFormat, e.Error())
}
