package level

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/tile"
	"gopkg.in/yaml.v3"
)

var ErrInvalidLevel = errors.New("invalid level")

//go:embed level.schema.json
var schemaSource []byte

const schemaURL = "https://cubewalk.local/level.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func levelSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

type Format uint8

const (
	FormatYAML Format = iota
	FormatJSON
)

// Document is the authored form of a level.
type Document struct {
	Name       string     `json:"name" yaml:"name"`
	Next       string     `json:"next,omitempty" yaml:"next,omitempty"`
	TileLength float64    `json:"tile_length,omitempty" yaml:"tile_length,omitempty"`
	Spawn      SpawnSpec  `json:"spawn" yaml:"spawn"`
	Fill       []FillSpec `json:"fill,omitempty" yaml:"fill,omitempty"`
	Tiles      []TileSpec `json:"tiles,omitempty" yaml:"tiles,omitempty"`
}

type SpawnSpec struct {
	Cell     tile.Cell      `json:"cell" yaml:"cell"`
	Tendency axis.Direction `json:"tendency,omitempty" yaml:"tendency,omitempty"`
	Gravity  axis.Direction `json:"gravity,omitempty" yaml:"gravity,omitempty"`
	Facing   axis.Direction `json:"facing,omitempty" yaml:"facing,omitempty"`
}

type BasisSpec struct {
	Forward axis.Direction `json:"forward" yaml:"forward"`
	Up      axis.Direction `json:"up" yaml:"up"`
}

// TileSpec describes one tile. Access entries override the function's defaults.
type TileSpec struct {
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Cell     tile.Cell       `json:"cell" yaml:"cell"`
	Function tile.Function   `json:"function" yaml:"function"`
	Turn     tile.TurnTarget `json:"turn,omitempty" yaml:"turn,omitempty"`
	Reach    tile.ReachEvent `json:"reach,omitempty" yaml:"reach,omitempty"`
	Basis    *BasisSpec      `json:"basis,omitempty" yaml:"basis,omitempty"`
	Access   map[string]bool `json:"access,omitempty" yaml:"access,omitempty"`
}

// FillSpec fills the inclusive box From..To with identical tiles. Explicit tiles win
// over fills covering the same cell.
type FillSpec struct {
	From     tile.Cell       `json:"from" yaml:"from"`
	To       tile.Cell       `json:"to" yaml:"to"`
	Function tile.Function   `json:"function" yaml:"function"`
	Basis    *BasisSpec      `json:"basis,omitempty" yaml:"basis,omitempty"`
	Access   map[string]bool `json:"access,omitempty" yaml:"access,omitempty"`
}

// Parse validates data against the level schema and decodes it.
func Parse(data []byte, format Format) (*Document, error) {
	raw, err := toJSON(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	schema, err := levelSchema()
	if err != nil {
		return nil, fmt.Errorf("compile level schema: %w", err)
	}
	var generic any
	if err = json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if err = schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	var doc Document
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return &doc, nil
}

// toJSON normalises a document to JSON so one schema and one decoder serve both formats.
func toJSON(data []byte, format Format) ([]byte, error) {
	if format == FormatJSON {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
