// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
)

// 🎯 Logger handles structured logging with console output. It implements
// status.Reporter.
type Logger struct {
	zlog          zerolog.Logger
	console       io.Writer
	mu            sync.Mutex
	formatter     status.FileFormatter
	showUnchanged bool
	showDiffs     bool
}

// Option configures a Logger
type Option func(*Logger)

// WithZerolog replaces the structured logger
func WithZerolog(zlog zerolog.Logger) Option {
	return func(l *Logger) {
		l.zlog = zlog
	}
}

// WithUnchanged prints a console line for files no rule touched
func WithUnchanged(show bool) Option {
	return func(l *Logger) {
		l.showUnchanged = show
	}
}

// WithDiffs prints the diff carried by each record
func WithDiffs(show bool) Option {
	return func(l *Logger) {
		l.showDiffs = show
	}
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level, opts ...Option) *Logger {
	l := &Logger{
		zlog:      zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level),
		console:   console,
		formatter: status.NewDefaultFileFormatter(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a silent one when none was set
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, zerolog.Disabled)
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogChange prints one record
func (l *Logger) LogChange(ctx context.Context, rec status.ChangeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := l.zlog.Info()
	if rec.Err != nil {
		event = l.zlog.Error().Err(rec.Err)
	} else if !rec.Changed {
		event = l.zlog.Debug()
	}
	event.Str("file", rec.Path).
		Str("status", rec.Status().String()).
		Int("replacements", rec.Replacements).
		Bool("unstable", rec.Unstable).
		Msg("file processed")

	if rec.Status() == status.StatusUnchanged && !l.showUnchanged {
		return
	}

	fmt.Fprintln(l.console, status.FormatRecordLine(rec))

	if l.showDiffs && rec.Diff != "" {
		l.printDiff(rec.Diff)
	}
}

func (l *Logger) printDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(l.console, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(l.console, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(l.console, color.RedString("%s", line))
		default:
			fmt.Fprint(l.console, color.New(color.Faint).Sprint(line))
		}
	}
}

// 📊 Summary prints the totals of a run as a table followed by every failure
func (l *Logger) Summary(s status.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	table, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Files", "Changed", "Unchanged", "Unstable", "Failed"},
		{
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Changed),
			strconv.Itoa(s.Unchanged),
			strconv.Itoa(s.Unstable),
			strconv.Itoa(s.Failed),
		},
	}).Srender()
	if err != nil {
		// the table is decoration, the one line summary below says the same
		l.zlog.Debug().Err(err).Msg("rendering summary table")
	} else {
		fmt.Fprintf(l.console, "\n%s\n", table)
	}

	fmt.Fprintln(l.console, l.formatter.FormatSummary(s))
	for _, failure := range s.Failures {
		fmt.Fprintln(l.console, "  "+l.formatter.FormatRecord(failure))
	}

	l.zlog.Info().
		Int("files", s.Total).
		Int("changed", s.Changed).
		Int("unchanged", s.Unchanged).
		Int("unstable", s.Unstable).
		Int("failed", s.Failed).
		Msg("run complete")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rewriterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 💥 Failure reports an error that ended a run early
func (l *Logger) Failure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.FgRed).Sprint(l.formatter.FormatError(err)))
	l.zlog.Error().Err(err).Msg("run failed")
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
