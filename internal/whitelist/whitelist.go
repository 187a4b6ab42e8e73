// Package whitelist loads the set of fingerprints a team has accepted as
// intentional duplication. Whitelisted fingerprints never reach a report.
package whitelist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/davetashner/drydock/internal/fingerprint"
)

// DefaultFile is the project-local whitelist file name.
const DefaultFile = ".drydockwhitelist"

// Whitelist is an immutable set of fingerprints. The zero value and a nil
// *Whitelist are both empty.
type Whitelist struct {
	set map[string]struct{}
}

// New returns a whitelist holding the valid fingerprints among fps.
func New(fps ...string) *Whitelist {
	w := &Whitelist{set: make(map[string]struct{}, len(fps))}
	for _, fp := range fps {
		if fp = normalize(fp); fingerprint.IsFingerprint(fp) {
			w.set[fp] = struct{}{}
		}
	}
	return w
}

// Parse reads one fingerprint per line. Blank lines and lines starting with
// '#' are skipped; only the first whitespace-separated field of a line is
// considered, so entries may carry a trailing note. Malformed lines are
// ignored.
func Parse(r io.Reader) *Whitelist {
	w := &Whitelist{set: make(map[string]struct{})}
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		raw, err := br.ReadString('\n')
		if raw != "" {
			w.add(lineNo, raw)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("whitelist read stopped early", "line", lineNo, "error", err)
			}
			return w
		}
	}
}

func (w *Whitelist) add(lineNo int, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	fp := normalize(strings.Fields(line)[0])
	if !fingerprint.IsFingerprint(fp) {
		slog.Debug("skipping malformed whitelist entry", "line", lineNo, "length", len(line))
		return
	}
	w.set[fp] = struct{}{}
}

// Load reads the whitelist at path. A missing file yields an empty
// whitelist.
func Load(path string) (*Whitelist, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied whitelist path
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open whitelist: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	w := Parse(f)
	slog.Debug("loaded whitelist", "path", path, "entries", w.Len())
	return w, nil
}

// LoadDefault loads override when set, otherwise DefaultFile in dir.
func LoadDefault(dir, override string) (*Whitelist, error) {
	if override != "" {
		return Load(override)
	}
	return Load(filepath.Join(dir, DefaultFile))
}

// Contains reports whether fp is whitelisted.
func (w *Whitelist) Contains(fp string) bool {
	if w == nil || w.set == nil {
		return false
	}
	_, ok := w.set[normalize(fp)]
	return ok
}

// Len returns the number of whitelisted fingerprints.
func (w *Whitelist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.set)
}

func normalize(fp string) string {
	return strings.ToLower(strings.TrimSpace(fp))
}
