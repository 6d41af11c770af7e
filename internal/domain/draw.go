package domain

import "math/rand/v2"

// NewSeededRNG returns an RNG with reproducible output for a given seed.
// Same seed, same deck, and same spread yield the same draw.
func NewSeededRNG(seed uint64) RNG {
	return seededRNG{r: rand.New(rand.NewPCG(seed, seed))}
}

type seededRNG struct{ r *rand.Rand }

func (s seededRNG) Intn(n int) int { return s.r.IntN(n) }

// Draw draws one card per spread position from deck using the provided RNG.
// Cards are sampled without replacement via a Fisher-Yates shuffle, so a
// single draw never contains duplicate card IDs. Position indices are
// zero-based and follow spread position order. Orientation is 50/50
// upright/reversed when reversals are allowed.
func Draw(deck *Deck, spread SpreadDefinition, rng RNG, allowReversals bool) ([]DrawnCard, error) {
	n := len(spread.Positions)
	if n > deck.Len() {
		return nil, ErrNotEnoughCards
	}

	indices := make([]int, deck.Len())
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	drawn := make([]DrawnCard, n)
	for i := range n {
		card := deck.Cards[indices[i]]
		orientation := Upright
		if allowReversals && rng.Intn(2) == 1 {
			orientation = Reversed
		}
		drawn[i] = DrawnCard{
			CardID:        card.ID(),
			CardName:      card.Name(),
			PositionIndex: i,
			PositionName:  spread.Positions[i].Name,
			Orientation:   orientation,
			ImagePath:     deck.ImagePath(card),
		}
	}

	return drawn, nil
}
