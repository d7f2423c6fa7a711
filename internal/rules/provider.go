// Package rules serves the per-request rules snapshot: forbidden phrases for
// the output validator and situational guidance injected into prompts. The
// engine only ever sees an immutable snapshot; refreshing is owned here.
package rules

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Snapshot is a read-only view of the current rules, taken once per request.
type Snapshot struct {
	ForbiddenPhrases    []string `json:"forbiddenPhrases"`
	SituationalGuidance string   `json:"situationalGuidance"`
}

// defaultSnapshot applies when no rules file is configured or the file
// cannot be read.
var defaultSnapshot = Snapshot{
	ForbiddenPhrases: []string{
		"whatsapp",
		"telegram",
		"handynummer",
		"telefonnummer",
		"e-mail adresse",
		"instagram",
		"treffen wir uns",
	},
}

// Provider loads the rules file with a TTL-based refresh policy.
type Provider struct {
	path   string
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	cached   Snapshot
	loadedAt time.Time
}

func NewProvider(path string, ttl time.Duration, logger *slog.Logger) *Provider {
	return &Provider{path: path, ttl: ttl, logger: logger, cached: defaultSnapshot}
}

// Current returns the rules snapshot, reloading the file when the cache has
// expired. A failed reload keeps serving the last good snapshot.
func (p *Provider) Current() Snapshot {
	if p.path == "" {
		return defaultSnapshot
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.loadedAt) < p.ttl && !p.loadedAt.IsZero() {
		return p.cached
	}

	snap, err := loadFile(p.path)
	if err != nil {
		p.logger.Warn("rules reload failed, keeping previous snapshot", "path", p.path, "error", err)
		p.loadedAt = time.Now()
		return p.cached
	}

	p.cached = snap
	p.loadedAt = time.Now()
	return p.cached
}

func loadFile(path string) (Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, err
	}
	if len(snap.ForbiddenPhrases) == 0 {
		snap.ForbiddenPhrases = defaultSnapshot.ForbiddenPhrases
	}
	return snap, nil
}
