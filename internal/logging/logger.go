// Package logging provides a small category-keyed registry of zap loggers
// shared across the module. Each subsystem asks for its own named logger
// once and reuses it; there is no per-call configuration.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Category names the subsystem a logger belongs to. Log lines from two
// different categories are distinguishable by the "logger" field zap adds
// for named loggers.
type Category string

const (
	Version  Category = "version"
	Atom     Category = "atom"
	Dep      Category = "dep"
	Restrict Category = "restrict"
	Repo     Category = "repo"
	Cache    Category = "cache"
	Regen    Category = "regen"
	Config   Category = "config"
	Target   Category = "target"
	Shell    Category = "shell"
)

var (
	mu      sync.RWMutex
	base    *zap.Logger
	named   = make(map[Category]*zap.Logger)
	initted bool
)

// Init installs the process-wide base logger every category logger derives
// from. Safe to call more than once; the first call wins. Callers that never
// call Init get a no-op logger so library code never panics for lack of
// configuration.
func Init(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if initted {
		return
	}
	base = l
	initted = true
}

// Get returns the logger for category, constructing it from the base logger
// on first use. Concurrent callers racing to construct the same category's
// logger is safe: duplicate construction produces equivalent loggers.
func Get(c Category) *zap.Logger {
	mu.RLock()
	l, ok := named[c]
	b := base
	init := initted
	mu.RUnlock()
	if ok {
		return l
	}

	if !init {
		b = zap.NewNop()
	}
	l = b.Named(string(c))

	mu.Lock()
	named[c] = l
	mu.Unlock()
	return l
}
