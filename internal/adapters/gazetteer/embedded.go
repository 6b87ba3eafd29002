// Package gazetteer loads the static sigungu reference data. The data set
// is embedded in the binary and parsed once; it never changes at runtime,
// so the accessor needs no locking after initialization.
package gazetteer

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
	"github.com/hanvote/regionvote/internal/core/services"
)

//go:embed sigungu.csv
var sigunguData []byte

var (
	loadOnce    sync.Once
	loadErr     error
	loadedCache []domain.Municipality
)

// load parses the embedded CSV (code,name per line, # comments allowed).
func load() ([]domain.Municipality, error) {
	loadOnce.Do(func() {
		scanner := bufio.NewScanner(bytes.NewReader(sigunguData))
		var entries []domain.Municipality
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			code, name, ok := strings.Cut(line, ",")
			if !ok {
				loadErr = fmt.Errorf("malformed gazetteer line: %q", line)
				return
			}
			code = strings.TrimSpace(code)
			name = strings.TrimSpace(name)
			if code == "" || name == "" {
				loadErr = fmt.Errorf("malformed gazetteer line: %q", line)
				return
			}
			entries = append(entries, domain.Municipality{
				Code:           code,
				Name:           name,
				NormalizedName: services.NormalizeRegionName(name),
			})
		}
		if err := scanner.Err(); err != nil {
			loadErr = fmt.Errorf("failed to scan gazetteer data: %w", err)
			return
		}
		loadedCache = entries
	})
	return loadedCache, loadErr
}

type embeddedGazetteer struct {
	entries []domain.Municipality
}

// New returns the process-wide gazetteer backed by the embedded data set.
func New() (ports.Gazetteer, error) {
	entries, err := load()
	if err != nil {
		return nil, err
	}
	return &embeddedGazetteer{entries: entries}, nil
}

func (g *embeddedGazetteer) Municipalities() []domain.Municipality {
	return g.entries
}
