package pnl

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed candidates.yaml
var defaultCandidatesYAML []byte

var (
	defaultTable     *CandidateTable
	defaultTableOnce sync.Once
)

// CandidateTable holds the alias list of every canonical field.
type CandidateTable struct {
	Version int
	aliases [domain.FieldCount][]string
	fields  [domain.FieldCount][]candidate
}

type candidateFile struct {
	Version int                 `yaml:"version"`
	Fields  map[string][]string `yaml:"fields"`
}

// DefaultCandidates returns the table compiled into the binary.
func DefaultCandidates() *CandidateTable {
	defaultTableOnce.Do(func() {
		t, err := parseCandidates(defaultCandidatesYAML, nil)
		if err != nil {
			panic(fmt.Sprintf("pnl: embedded candidates.yaml: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadCandidates reads an override file. Fields the file omits keep their
// built-in aliases. An empty path returns the built-in table.
func LoadCandidates(path string) (*CandidateTable, error) {
	if path == "" {
		return DefaultCandidates(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates file %s: %w", path, err)
	}
	return ParseCandidates(data)
}

// ParseCandidates parses a YAML candidate table on top of the built-in one.
func ParseCandidates(data []byte) (*CandidateTable, error) {
	return parseCandidates(data, DefaultCandidates())
}

func parseCandidates(data []byte, base *CandidateTable) (*CandidateTable, error) {
	var file candidateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	t := &CandidateTable{Version: file.Version}
	if base != nil {
		t.aliases = base.aliases
	}
	for name, aliases := range file.Fields {
		field, ok := domain.ParseField(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q in candidates", ErrUnknownField, name)
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("field %s has no aliases", field)
		}
		t.aliases[field] = append([]string(nil), aliases...)
	}

	for i := range t.aliases {
		if len(t.aliases[i]) == 0 {
			return nil, fmt.Errorf("field %s has no aliases", domain.Field(i))
		}
		compiled := make([]candidate, 0, len(t.aliases[i]))
		for _, a := range t.aliases[i] {
			compiled = append(compiled, compileCandidate(a))
		}
		t.fields[i] = compiled
	}
	return t, nil
}

// Aliases returns a copy of the alias list for f.
func (t *CandidateTable) Aliases(f domain.Field) []string {
	if f < 0 || f >= domain.FieldCount {
		return nil
	}
	return append([]string(nil), t.aliases[f]...)
}
