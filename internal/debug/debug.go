// Package debug provides tag-gated debug logging for flexset's internal
// packages. It is disabled by default (zero overhead beyond a boolean
// check) and enabled by setting FLEXSET_DEBUG: env-var gated,
// lazily-initialised, glob-matched tag filter, backed by zap instead of
// log.Logger.
package debug

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	once sync.Once
	opts struct {
		enabled bool
		logger  *zap.SugaredLogger
		tags    map[string]bool
	}
)

func init() {
	once.Do(initDebug)
}

func initDebug() {
	env := os.Getenv("FLEXSET_DEBUG")
	if env == "" {
		return
	}

	opts.tags = parseTags(env)

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "flexset debug: unable to build logger: %v\n", err)
		return
	}

	opts.logger = logger.Sugar()
	opts.enabled = true
}

func parseTags(env string) map[string]bool {
	tags := make(map[string]bool)
	for _, t := range strings.Split(env, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tags[t] = true
	}
	return tags
}

// Enabled reports whether any tag is currently active.
func Enabled() bool {
	return opts.enabled
}

// tagMatches reports whether tag is selected by the active filter. "all"
// and "*" both enable every tag.
func tagMatches(tag string) bool {
	if opts.tags["all"] || opts.tags["*"] {
		return true
	}
	for pattern := range opts.tags {
		if ok, _ := path.Match(pattern, tag); ok {
			return true
		}
	}
	return false
}

// Log writes a debug message under tag (typically a component name such
// as "flex", "hashindex.rehash", "orderedset.promote") if FLEXSET_DEBUG
// selects it. No-op otherwise.
func Log(tag, format string, args ...interface{}) {
	if !opts.enabled || !tagMatches(tag) {
		return
	}
	opts.logger.Debugf("["+tag+"] "+format, args...)
}

// Sync flushes the underlying logger. Safe to call when debug logging is
// disabled.
func Sync() {
	if opts.logger != nil {
		_ = opts.logger.Sync()
	}
}
