// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"strings"
)

// Errors type which contains a list of errors observed during parsing.
//
// Errors are collected against the source active at the time they are
// reported. Nested sources, such as macro argument expansions, may be
// pushed and popped with EnterContext and ExitContext.
type Errors struct {
	errors            []errorWithSource
	sources           []Source
	numErrors         int
	maxErrorsToReport int
}

type errorWithSource struct {
	err    *Error
	source Source
}

// NewErrors creates a new instance of the Errors type with the source which
// serves as the root reporting context.
func NewErrors(source Source) *Errors {
	return &Errors{
		errors:            []errorWithSource{},
		sources:           []Source{source},
		maxErrorsToReport: 100,
	}
}

// EnterContext pushes a new reporting context described by the input source.
//
// Errors reported until the matching ExitContext call are rendered against
// the pushed source.
func (e *Errors) EnterContext(source Source) {
	e.sources = append(e.sources, source)
}

// ExitContext pops the current reporting context.
//
// The root context established at construction cannot be popped.
func (e *Errors) ExitContext() {
	if len(e.sources) > 1 {
		e.sources = e.sources[:len(e.sources)-1]
	}
}

// source returns the source of the active reporting context.
func (e *Errors) source() Source {
	return e.sources[len(e.sources)-1]
}

// ReportError records an error at a source location.
func (e *Errors) ReportError(l Location, format string, args ...interface{}) {
	e.ReportErrorAtID(0, l, format, args...)
}

// ReportErrorAtID records an error at a source location and expression id.
func (e *Errors) ReportErrorAtID(id int64, l Location, format string, args ...interface{}) {
	e.numErrors++
	if e.numErrors > e.maxErrorsToReport {
		return
	}
	err := &Error{
		ExprID:   id,
		Location: l,
		Message:  fmt.Sprintf(format, args...),
	}
	e.errors = append(e.errors, errorWithSource{err: err, source: e.source()})
}

// ReportErrorAtOffset records an error at a code point offset into the source
// of the active reporting context.
func (e *Errors) ReportErrorAtOffset(id int64, offset int32, format string, args ...interface{}) {
	location, found := e.source().OffsetLocation(offset)
	if !found {
		location = NoLocation
	}
	e.ReportErrorAtID(id, location, format, args...)
}

// GetErrors returns the list of observed errors in the order they were
// reported.
func (e *Errors) GetErrors() []*Error {
	errs := make([]*Error, len(e.errors))
	for i, err := range e.errors {
		errs[i] = err.err
	}
	return errs
}

// Append creates a new Errors object with the current and input errors.
func (e *Errors) Append(errs []*Error) *Errors {
	errors := make([]errorWithSource, len(e.errors), len(e.errors)+len(errs))
	copy(errors, e.errors)
	for _, err := range errs {
		errors = append(errors, errorWithSource{err: err, source: e.source()})
	}
	return &Errors{
		errors:            errors,
		sources:           e.sources,
		numErrors:         e.numErrors + len(errs),
		maxErrorsToReport: e.maxErrorsToReport,
	}
}

// ToDisplayString returns the error set to a newline delimited string.
func (e *Errors) ToDisplayString() string {
	errorsInString := len(e.errors)
	if e.numErrors >= e.maxErrorsToReport {
		errorsInString = e.maxErrorsToReport
	}

	result := make([]string, errorsInString)
	for i, err := range e.errors {
		if i >= e.maxErrorsToReport {
			break
		}
		result[i] = err.err.ToDisplayString(err.source)
	}

	if e.numErrors > e.maxErrorsToReport {
		result = append(result, fmt.Sprintf("%d more errors were truncated", e.numErrors-e.maxErrorsToReport))
	}
	return strings.Join(result, "\n")
}
