// Copyright the corestatic authors.
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

// Package salog provides the leveled LogGroup shared by the CHA, points-to
// and taint solvers: one logger per
// level, a shared prefix, and a level gate checked before formatting.
package salog

import (
	"io"
	"log"
)

// Level is the verbosity threshold of a LogGroup.
type Level int

const (
	// ErrLevel is the minimum level: only errors are printed.
	ErrLevel Level = iota + 1
	// WarnLevel also prints warnings.
	WarnLevel
	// InfoLevel also prints high-level progress (new reachable method, ...).
	InfoLevel
	// DebugLevel also prints recoverable-error diagnostics (UnresolvableCall,
	// MissingIR) and per-edge solver activity. Safe on large programs.
	DebugLevel
	// TraceLevel prints everything, including per-worklist-step detail. Only
	// practical on small test programs.
	TraceLevel
)

// LogGroup is a set of level-gated loggers sharing a name prefix.
type LogGroup struct {
	level Level
	trace *log.Logger
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// New returns a LogGroup named name (used as the log prefix), gated at
// level, writing to the standard logger's default destination.
func New(name string, level Level) *LogGroup {
	mk := func(tag string) *log.Logger {
		l := log.Default()
		return log.New(l.Writer(), "["+tag+" "+name+"] ", l.Flags())
	}
	return &LogGroup{
		level: level,
		trace: mk("TRACE"),
		debug: mk("DEBUG"),
		info:  mk("INFO"),
		warn:  mk("WARN"),
		err:   mk("ERROR"),
	}
}

// SetAllOutput redirects every level's logger to w.
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.trace.SetOutput(w)
	l.debug.SetOutput(w)
	l.info.SetOutput(w)
	l.warn.SetOutput(w)
	l.err.SetOutput(w)
}

func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.trace.Printf(format, v...)
	}
}

func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.debug.Printf(format, v...)
	}
}

func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.info.Printf(format, v...)
	}
}

func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel {
		l.warn.Printf(format, v...)
	}
}

func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.err.Printf(format, v...)
	}
}
