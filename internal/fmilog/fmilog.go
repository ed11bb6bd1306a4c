// Package fmilog bridges the FMI 2.0 logger callback
// (fmi2CallbackFunctions.logger) to structured logging, and lets a caller
// select which of the FMU's log categories are actually forwarded.
//
// The FMU may invoke the logger callback from any thread it creates (it is
// a C ABI; the importer has no control over the FMU's internal
// threading), so the dispatch table here is mutex-guarded.
package fmilog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Category is one of the FMI 2.0 logger categories, e.g. "logEvents",
// "logStatusError". Generalized from the teacher's WASI LogScopes bitmask
// to a string-keyed set, since FMI categories are exporter-defined strings
// rather than a fixed enum.
type Category string

const (
	CategoryEvents         Category = "logEvents"
	CategorySingularLinSys Category = "logSingularLinearSystems"
	CategoryNonlinSys      Category = "logNonlinearSystems"
	CategoryDynamicState   Category = "logDynamicStateSelection"
	CategoryStatusWarning  Category = "logStatusWarning"
	CategoryStatusDiscard  Category = "logStatusDiscard"
	CategoryStatusError    Category = "logStatusError"
	CategoryStatusFatal    Category = "logStatusFatal"
	CategoryStatusPending  Category = "logStatusPending"
	CategoryAll            Category = "logAll"
)

// Logger forwards FMU diagnostic messages to a structured sink, gated by a
// set of enabled categories.
type Logger struct {
	mu       sync.Mutex
	enabled  map[Category]bool
	all      bool
	entry    *logrus.Entry
}

// New returns a Logger that forwards to logrus, tagged with the instance
// name, and enabled for exactly the given categories. Passing CategoryAll
// enables every category.
func New(instanceName string, categories ...Category) *Logger {
	l := &Logger{
		enabled: make(map[Category]bool, len(categories)),
		entry:   logrus.WithField("instance", instanceName),
	}
	for _, c := range categories {
		if c == CategoryAll {
			l.all = true
		}
		l.enabled[c] = true
	}
	return l
}

// Enabled reports whether the given category should be forwarded.
func (l *Logger) Enabled(category string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.all || l.enabled[Category(category)]
}

// Log records one FMU-emitted diagnostic message. status is the FMI status
// string the FMU passed (e.g. "Warning"); it is used only to pick the
// logrus level, never to change control flow.
func (l *Logger) Log(category, status, message string) {
	if !l.Enabled(category) {
		return
	}
	l.mu.Lock()
	entry := l.entry.WithField("category", category)
	l.mu.Unlock()

	switch status {
	case "Warning":
		entry.Warn(message)
	case "Discard", "Error", "Fatal":
		entry.Error(message)
	default:
		entry.Debug(message)
	}
}
