package domain

import "path"

// Deck is a collection of tarot cards indexed by ID.
type Deck struct {
	ID    string
	Name  string
	Cards []*Card

	imageDir string
	byID     map[string]*Card
}

// NewDeck builds a deck and its ID index. imageDir is prepended to each
// card's image filename when resolving image paths; it may be empty.
func NewDeck(id, name string, cards []*Card, imageDir string) *Deck {
	byID := make(map[string]*Card, len(cards))
	for _, c := range cards {
		byID[c.ID()] = c
	}
	return &Deck{ID: id, Name: name, Cards: cards, imageDir: imageDir, byID: byID}
}

// Card returns the card with the given ID, or ErrCardNotFound.
func (d *Deck) Card(id string) (*Card, error) {
	c, ok := d.byID[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	return c, nil
}

// ImagePath resolves the on-disk image path for a card. Empty when the card
// has no image or the deck no image directory.
func (d *Deck) ImagePath(c *Card) string {
	if d.imageDir == "" || c.ImageFilename() == "" {
		return ""
	}
	return path.Join(d.imageDir, c.ImageFilename())
}

func (d *Deck) Len() int { return len(d.Cards) }
