package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	coreconfig "github.com/m3rciful/shopbot/core/config"
)

type settings struct {
	level        slog.Level
	format       logFormat
	order        []string
	profile      string
	filePath     string
	sampleKeep   int
	sampleWindow int
	trace        bool
}

func settingsFrom(cfg *coreconfig.Config) settings {
	s := settings{
		level:        slog.LevelInfo,
		format:       formatJSON,
		order:        defaultKeyOrder,
		profile:      "prod",
		sampleKeep:   1,
		sampleWindow: 50,
		trace:        truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE")),
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}

	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}

	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var order []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
		if len(order) > 0 {
			s.order = order
		}
	}

	if keep, window, ok := parseRatio(lc.DebugSample); ok {
		s.sampleKeep, s.sampleWindow = keep, window
	}

	dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir != "" && file != "" {
		s.filePath = filepath.Join(dir, file)
	}
	return s
}

// parseRatio accepts "keep/window" or a bare window meaning 1/window.
// "0" turns sampling off.
func parseRatio(raw string) (keep, window int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, false
	}
	if a, b, found := strings.Cut(raw, "/"); found {
		k, err1 := strconv.Atoi(strings.TrimSpace(a))
		w, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil || k <= 0 || w <= 0 {
			return 0, 0, false
		}
		return k, w, true
	}
	w, err := strconv.Atoi(raw)
	switch {
	case err != nil || w < 0:
		return 0, 0, false
	case w == 0:
		return 0, 0, true
	}
	return 1, w, true
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
