package maps

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"kitten-defense/internal/game"
)

//go:embed data/*.json
var layoutFiles embed.FS

//go:embed schema/layout.schema.json
var layoutSchema []byte

var (
	// ErrInvalidLayout is returned for layouts that fail validation.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrUnknownLayout is returned when no layout has the requested ID.
	ErrUnknownLayout = errors.New("unknown layout")
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Layout)

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("layout.schema.json", string(layoutSchema))
	})
	return schema, schemaErr
}

// LoadAll loads all embedded layouts into the registry.
func LoadAll() error {
	entries, err := layoutFiles.ReadDir("data")
	if err != nil {
		return fmt.Errorf("failed to read layout directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		l, err := Load(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to load layout %s: %w", entry.Name(), err)
		}

		Register(l)
	}

	return nil
}

// Load loads a single embedded layout by filename.
func Load(filename string) (*Layout, error) {
	data, err := layoutFiles.ReadFile(path.Join("data", filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadFile loads a layout from disk.
func LoadFile(filename string) (*Layout, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadFromJSON validates and processes a layout from JSON bytes.
func LoadFromJSON(data []byte) (*Layout, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile layout schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse layout JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	var raw RawLayout
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse layout JSON: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	return Process(&raw), nil
}

// validate checks what the schema cannot express.
func validate(raw *RawLayout) error {
	seen := make(map[string]bool, len(raw.Territories))
	for _, t := range raw.Territories {
		if seen[t.ID] {
			return fmt.Errorf("duplicate territory id %q", t.ID)
		}
		seen[t.ID] = true

		if !game.TerritoryType(t.Type).Valid() {
			return fmt.Errorf("territory %s: unknown type %q", t.ID, t.Type)
		}
		if t.Position.X < 0 || t.Position.X > raw.Width || t.Position.Z < 0 || t.Position.Z > raw.Depth {
			return fmt.Errorf("territory %s: position %v outside %gx%g", t.ID, t.Position, raw.Width, raw.Depth)
		}
	}
	return nil
}

// Resolve returns a registered layout by ID, or loads it from disk when
// name is not a registered ID.
func Resolve(name string) (*Layout, error) {
	if l := Get(name); l != nil {
		return l, nil
	}
	if _, err := os.Stat(name); err == nil {
		return LoadFile(name)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
}

// Get retrieves a layout from the registry by ID.
func Get(id string) *Layout {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[id]
}

// List returns all layout IDs and names, sorted by ID.
func List() []LayoutInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	infos := make([]LayoutInfo, 0, len(registry))
	for _, l := range registry {
		infos = append(infos, LayoutInfo{
			ID:             l.ID,
			Name:           l.Name,
			Width:          l.Width,
			Depth:          l.Depth,
			TerritoryCount: len(l.Territories),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Register adds a layout to the registry.
func Register(l *Layout) {
	if l == nil || l.ID == "" {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[l.ID] = l
}
