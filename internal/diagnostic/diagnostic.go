// Package diagnostic defines the stable error/warning codes emitted by
// the loader, validators, and scanner, and the shared Diagnostic shape
// they all report through.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Level is the severity of a diagnostic.
type Level int

const (
	// Warning diagnostics do not fail a check unless strict mode is on.
	Warning Level = iota

	// Error diagnostics always fail the check.
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "warning"
}

// Code is a stable diagnostic identifier: "E####" for errors, "W####"
// for warnings. Codes never change meaning once published.
type Code string

// RFC diagnostics (x1xx).
const (
	ErrRFCSchema            Code = "E0101"
	ErrRFCNotFound          Code = "E0102"
	ErrRFCIDMismatch        Code = "E0103"
	ErrRFCStatusPhase       Code = "E0104"
	ErrDuplicateClause      Code = "E0105"
	WarnRFCNoChangelog      Code = "W0101"
	WarnClauseNoSince       Code = "W0102"
)

// Clause diagnostics (x2xx).
const (
	ErrClauseSchema              Code = "E0201"
	ErrClauseNotFound            Code = "E0202"
	ErrClauseIDMismatch          Code = "E0203"
	ErrClausePathTraversal       Code = "E0204"
	ErrSupersededByMissing       Code = "E0205"
	ErrSupersededByInconsistent  Code = "E0206"
	ErrSupersededByNotActive     Code = "E0207"
	ErrSupersededByForeignRFC    Code = "E0208"
)

// ADR diagnostics (x3xx).
const (
	ErrADRSchema       Code = "E0301"
	ErrADRRefMissing   Code = "E0302"
	WarnADRNoRefs      Code = "W0301"
	WarnADRSkipped     Code = "W0302"
	WarnADRPlaceholder Code = "W0303"
	WarnADRStaleRef    Code = "W0304"
)

// Work item diagnostics (x4xx).
const (
	ErrWorkSchema     Code = "E0401"
	ErrWorkRefMissing Code = "E0402"
	WarnWorkSkipped   Code = "W0401"
	WarnWorkStaleRef  Code = "W0402"
)

// Release diagnostics (x5xx).
const (
	ErrReleaseSchema        Code = "E0501"
	ErrReleaseWorkMissing   Code = "E0502"
	ErrReleaseWorkDuplicate Code = "E0503"
)

// Signature diagnostics (x6xx).
const (
	ErrSignatureMismatch   Code = "E0601"
	ErrSignatureMissing    Code = "E0602"
	WarnRenderedUnreadable Code = "W0601"
)

// Source scan diagnostics (x7xx).
const (
	ErrScanRefUnknown   Code = "E0701"
	ErrScanConfig       Code = "E0702"
	WarnScanRefOutdated Code = "W0701"
)

// General diagnostics (x9xx).
const (
	ErrIO   Code = "E0901"
	ErrJSON Code = "E0902"
	ErrYAML Code = "E0903"
)

// Level derives the severity from the code prefix.
func (c Code) Level() Level {
	if strings.HasPrefix(string(c), "W") {
		return Warning
	}
	return Error
}

// Diagnostic is one leveled finding about a file or artifact.
type Diagnostic struct {
	Code    Code   `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`

	// File is the path of the artifact the finding concerns, relative
	// to the working directory where possible.
	File string `json:"file" yaml:"file"`
}

// New builds a diagnostic for the given code.
func New(code Code, file, message string) Diagnostic {
	return Diagnostic{Code: code, Message: message, File: file}
}

// Newf builds a diagnostic with a formatted message.
func Newf(code Code, file, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), File: file}
}

// Level returns the severity derived from the diagnostic's code.
func (d Diagnostic) Level() Level {
	return d.Code.Level()
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s]: %s (%s)", d.Level(), d.Code, d.Message, d.File)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// HasErrors reports whether any entry is error level.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Level() == Error {
			return true
		}
	}
	return false
}

// Counts returns the number of errors and warnings.
func (l List) Counts() (errors, warnings int) {
	for _, d := range l {
		if d.Level() == Error {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// Sort orders the list errors-first, then by file, then by code, so
// repeated runs over the same tree report identically.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Level() != l[j].Level() {
			return l[i].Level() > l[j].Level()
		}
		if l[i].File != l[j].File {
			return l[i].File < l[j].File
		}
		return l[i].Code < l[j].Code
	})
}
