package registry

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

var shortKeyRegex = regexp.MustCompile(`\*(.*?)\*`)

// Registry maps map UIDs to human-readable names. Loaded once at startup
// and read-only afterwards.
type Registry struct {
	uids      []string
	names     map[string]string
	shortKeys map[string]string // lowercased *short key* -> uid
}

// Load reads the UID list (one UID per line, blank lines and #-comments
// skipped) and the tab-separated UID→name table. A missing name table is
// tolerated: names then fall back to the raw UID.
func Load(uidFile, mapFile string, logger zerolog.Logger) (*Registry, error) {
	uids, err := loadUIDs(uidFile)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		uids:      uids,
		names:     make(map[string]string),
		shortKeys: make(map[string]string),
	}

	if err := r.loadNames(mapFile); err != nil {
		logger.Warn().Err(err).Str("path", mapFile).Msg("map name table unavailable, using raw UIDs")
	}

	logger.Info().
		Int("uids", len(r.uids)).
		Int("named", len(r.names)).
		Msg("uid registry loaded")

	return r, nil
}

// UIDs returns the configured map identifiers in file order.
func (r *Registry) UIDs() []string {
	return r.uids
}

// Name resolves a UID to its display name, falling back to the UID itself.
func (r *Registry) Name(uid string) string {
	if name, ok := r.names[uid]; ok {
		return name
	}
	return uid
}

// UIDByShortKey resolves the lowercased key found between the first *...*
// pair of a map name.
func (r *Registry) UIDByShortKey(key string) (string, bool) {
	uid, ok := r.shortKeys[strings.ToLower(key)]
	return uid, ok
}

func loadUIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening uid list: %w", err)
	}
	defer f.Close()

	var uids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uids = append(uids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading uid list: %w", err)
	}
	return uids, nil
}

func (r *Registry) loadNames(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening uid map: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		uid, name, found := strings.Cut(line, "\t")
		if !found {
			continue
		}
		uid = strings.TrimSpace(uid)
		name = strings.TrimSpace(name)
		if uid == "" || name == "" {
			continue
		}
		r.names[uid] = name
		if m := shortKeyRegex.FindStringSubmatch(name); m != nil && m[1] != "" {
			r.shortKeys[strings.ToLower(m[1])] = uid
		}
	}
	return scanner.Err()
}
