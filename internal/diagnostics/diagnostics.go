// Package diagnostics turns gcc/MinGW text output into structured diagnostics.
//
// Recognised lines look like
//
//	<path>:<line>:[<column>:] <severity>: <message>
//
// where severity is one of error, warning, note or "fatal error". Anything
// else (banners, "In function" context, bare linker errors) is skipped.
package diagnostics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Severity of a diagnostic
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Note    Severity = "note"
)

// Diagnostic is one message extracted from compiler output
type Diagnostic struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	// Column is zero when the compiler did not report one
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	}

	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

// The lazy path group lets Windows drive letters ("C:\src\a.c") through.
var lineRe = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)?\s*(fatal error|error|warning|note):\s*(.*)$`)

// Parse extracts diagnostics in emission order. Nothing is merged or deduplicated.
func Parse(text string) []Diagnostic {
	var diags []Diagnostic

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		lineNo, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		col := 0
		if m[3] != "" {
			if col, err = strconv.Atoi(m[3]); err != nil {
				continue
			}
		}

		diags = append(diags, Diagnostic{
			Severity: normalize(m[4]),
			File:     m[1],
			Line:     lineNo,
			Column:   col,
			Message:  strings.TrimSpace(m[5]),
		})
	}

	return diags
}

func normalize(kind string) Severity {
	switch kind {
	case "warning":
		return Warning
	case "note":
		return Note
	default:
		return Error
	}
}

// Count returns how many diagnostics have the given severity
func Count(diags []Diagnostic, sev Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}

	return n
}
