// Package spreads loads spread definitions from YAML. A Registry is built
// once and handed to callers as an immutable snapshot; nothing reloads it
// behind their backs.
package spreads

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/katelouie/arcanite/internal/domain"
)

//go:embed spreads.yaml
var defaultSpreadsYAML []byte

// Registry holds spread definitions addressable by ID. It implements
// domain.SpreadSource.
type Registry struct {
	spreads map[string]domain.SpreadDefinition
}

// Info is a summary of one spread for listings.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Positions   int    `json:"positions"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
}

type spreadsFile struct {
	Spreads []domain.SpreadDefinition `yaml:"spreads"`
}

// NewEmbedded builds a registry from the bundled spread definitions.
func NewEmbedded() (*Registry, error) {
	return parse(defaultSpreadsYAML)
}

// NewFromFile builds a registry from a YAML file on disk.
func NewFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spreads file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Registry, error) {
	var file spreadsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse spreads: %w", err)
	}

	spreads := make(map[string]domain.SpreadDefinition, len(file.Spreads))
	for _, s := range file.Spreads {
		if s.ID == "" {
			return nil, fmt.Errorf("spread %q has no id", s.Name)
		}
		if len(s.Positions) == 0 {
			return nil, fmt.Errorf("spread %q has no positions", s.ID)
		}
		for i, p := range s.Positions {
			if p.RAGMapping == "" {
				return nil, fmt.Errorf("spread %q position %d has no rag_mapping", s.ID, i)
			}
		}
		spreads[s.ID] = s
	}

	return &Registry{spreads: spreads}, nil
}

// Spread returns the definition for an ID, or ErrSpreadNotFound.
func (r *Registry) Spread(id string) (domain.SpreadDefinition, error) {
	s, ok := r.spreads[id]
	if !ok {
		return domain.SpreadDefinition{}, fmt.Errorf("%w: %q (available: %v)",
			domain.ErrSpreadNotFound, id, r.List())
	}
	return s, nil
}

// List returns all spread IDs, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.spreads))
	for id := range r.spreads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Infos returns summaries for all spreads, ordered by ID.
func (r *Registry) Infos() []Info {
	infos := make([]Info, 0, len(r.spreads))
	for _, id := range r.List() {
		s := r.spreads[id]
		infos = append(infos, Info{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Positions:   len(s.Positions),
			Category:    s.Category,
			Difficulty:  s.Difficulty,
		})
	}
	return infos
}

func (r *Registry) Len() int { return len(r.spreads) }
