// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package logging holds the logger shared by htmlview and its sub-packages.
//
// The root package exposes it as htmlview.SetLogger and htmlview.Logger.
// Sub-packages that the root package imports (assets, engine, engine/soft)
// read it from here to avoid an import cycle.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Nop returns a logger that discards all output.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(Nop())
}

// Set stores l as the shared logger. A nil l restores the silent default.
func Set(l *slog.Logger) {
	if l == nil {
		l = Nop()
	}
	loggerPtr.Store(l)
}

// Logger returns the shared logger. It is never nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
