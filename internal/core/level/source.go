package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrLevelNotFound = errors.New("level not found")

// Source resolves level names, e.g. a level's Next, into built levels.
type Source interface {
	Level(name string) (*Level, error)
}

// Dir loads <name>.yaml, <name>.yml or <name>.json from a directory.
type Dir string

func (d Dir) Level(name string) (*Level, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(string(d), name+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return Load(path)
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrLevelNotFound, name, string(d))
}

// Static serves pre-parsed documents; every call builds a fresh level.
type Static map[string]*Document

func (s Static) Level(name string) (*Level, error) {
	doc, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLevelNotFound, name)
	}
	return Build(doc)
}
