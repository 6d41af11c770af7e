package decks

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/katelouie/arcanite/internal/domain"
)

//go:embed data/*.json
var deckFS embed.FS

// registry maps deck IDs to their JSON filenames inside data/.
var registry = map[string]string{
	"major_arcana": "data/major_arcana.json",
}

// Store loads decks from embedded JSON files. When dataDir is set, any
// <deck_id>.json files found there are loaded instead of (or in addition
// to) the embedded decks, which lets content packs be swapped without a
// rebuild.
type Store struct {
	dataDir  string
	imageDir string

	once  sync.Once
	decks map[string]*domain.Deck
	err   error
}

// Option configures a Store.
type Option func(*Store)

// WithDataDir loads decks from <dataDir>/<deck_id>.json, overriding
// embedded decks with the same ID.
func WithDataDir(dir string) Option {
	return func(s *Store) { s.dataDir = dir }
}

// WithImageDir sets the directory card image paths resolve against.
func WithImageDir(dir string) Option {
	return func(s *Store) { s.imageDir = dir }
}

func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) init() {
	s.decks = make(map[string]*domain.Deck, len(registry))

	for id, filename := range registry {
		raw, err := deckFS.ReadFile(filename)
		if err != nil {
			s.err = fmt.Errorf("read embedded deck %s: %w", id, err)
			return
		}
		deck, err := s.parseDeck(id, raw)
		if err != nil {
			s.err = fmt.Errorf("parse embedded deck %s: %w", id, err)
			return
		}
		s.decks[id] = deck
	}

	if s.dataDir == "" {
		return
	}
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		s.err = fmt.Errorf("read deck dir %s: %w", s.dataDir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		raw, err := os.ReadFile(filepath.Join(s.dataDir, entry.Name()))
		if err != nil {
			s.err = fmt.Errorf("read deck %s: %w", id, err)
			return
		}
		deck, err := s.parseDeck(id, raw)
		if err != nil {
			s.err = fmt.Errorf("parse deck %s: %w", id, err)
			return
		}
		s.decks[id] = deck
	}
}

// parseDeck decodes a deck file: a JSON array of card objects whose nested
// interpretation trees are kept raw for the domain accessors.
func (s *Store) parseDeck(id string, raw []byte) (*domain.Deck, error) {
	var rawCards []map[string]any
	if err := json.Unmarshal(raw, &rawCards); err != nil {
		return nil, err
	}

	cards := make([]*domain.Card, 0, len(rawCards))
	for _, rc := range rawCards {
		cardID, _ := rc["card_id"].(string)
		if cardID == "" {
			return nil, fmt.Errorf("card without card_id in deck %s", id)
		}
		cards = append(cards, domain.NewCard(rc, cardID+".jpg"))
	}

	return domain.NewDeck(id, id, cards, s.imageDir), nil
}

func (s *Store) GetDeck(_ context.Context, deckID string) (*domain.Deck, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	deck, ok := s.decks[deckID]
	if !ok {
		return nil, domain.ErrDeckNotFound
	}
	return deck, nil
}

// List returns the IDs of all loaded decks.
func (s *Store) List() ([]string, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	ids := make([]string, 0, len(s.decks))
	for id := range s.decks {
		ids = append(ids, id)
	}
	return ids, nil
}
