// Package featureflags evaluates the runtime gates for optional behavior:
// the search endpoint ("search") and the shared feed-head cache
// ("feed_cache").
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Manager evaluates flags parsed from the FEATURE_FLAGS config value, a
// comma-separated key=value list such as "search=on,feed_cache=50%".
// Percentage values roll a flag out to a deterministic per-user bucket, so
// one viewer's feed does not flap between cached and uncached reads.
type Manager struct {
	flags map[string]string
}

// NewManager parses a comma-separated flag list. Malformed pairs are
// dropped rather than failing startup; a missing flag simply evaluates
// to disabled.
func NewManager(raw string) *Manager {
	flags := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		flags[key] = value
	}
	return &Manager{flags: flags}
}

// Enabled reports whether a flag is on for the given user. Values are
// on/true/1, off/false/0, or N% for a gradual rollout. Anonymous requests
// (userID 0) never fall inside a partial rollout: there is no stable
// identity to bucket them by.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := rolloutPercent(value)
	if !ok || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of the configured flag values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot evaluates every flag for one user. Backs the /api/feature-flags
// endpoint so clients can hide gated UI instead of discovering a Forbidden.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutPercent(value string) (int, bool) {
	raw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

// rolloutBucket maps (flag, user) onto [0,100). The hash keys on both so a
// user landing in the "feed_cache" rollout says nothing about whether they
// land in "search".
func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
