package card

import "math/rand/v2"

// DeckSize is the total card count: 52 standard cards plus two Jokers.
const DeckSize = 54

// Deck holds the draw and discard piles. Index 0 is the head of each pile:
// the next card to draw, and the most recent discard.
//
// The deck never invents or loses cards: every card leaves via Draw or
// TakeDiscard and returns via Discard. Reshuffling moves cards between the
// two piles only.
type Deck struct {
	draw    []Card
	discard []Card
	rng     *rand.Rand
}

// NewStandardDeck builds a full 54-card deck shuffled with the given source.
func NewStandardDeck(rng *rand.Rand) *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, r := range Ranks {
		n := 4
		if r == Joker {
			n = 2
		}
		for i := 0; i < n; i++ {
			cards = append(cards, New(r))
		}
	}
	d := &Deck{draw: cards, rng: rng}
	d.shuffleDraw()
	return d
}

// NewOrderedDeck builds a deck whose draw pile is exactly cards, head first.
// Used when replaying a recorded game: the shuffle order is fixed up front.
func NewOrderedDeck(cards []Card, rng *rand.Rand) *Deck {
	draw := make([]Card, len(cards))
	copy(draw, cards)
	return &Deck{draw: draw, rng: rng}
}

func (d *Deck) shuffleDraw() {
	d.rng.Shuffle(len(d.draw), func(i, j int) {
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	})
}

// Draw removes and returns the top draw-pile card. When the draw pile is
// empty it first attempts a reshuffle; ok is false if no card is available
// even then.
func (d *Deck) Draw() (c Card, ok bool) {
	if len(d.draw) == 0 {
		d.ReshuffleDiscardIntoDraw()
	}
	if len(d.draw) == 0 {
		return Card{}, false
	}
	c = d.draw[0]
	d.draw = d.draw[1:]
	return c, true
}

// Discard places c on top of the discard pile.
func (d *Deck) Discard(c Card) {
	d.discard = append([]Card{c}, d.discard...)
}

// TakeDiscard removes and returns the top discard-pile card.
func (d *Deck) TakeDiscard() (c Card, ok bool) {
	if len(d.discard) == 0 {
		return Card{}, false
	}
	c = d.discard[0]
	d.discard = d.discard[1:]
	return c, true
}

// PeekDiscard returns the top discard-pile card without removing it.
func (d *Deck) PeekDiscard() (c Card, ok bool) {
	if len(d.discard) == 0 {
		return Card{}, false
	}
	return d.discard[0], true
}

// PeekDraw returns the top draw-pile card without removing it.
func (d *Deck) PeekDraw() (c Card, ok bool) {
	if len(d.draw) == 0 {
		return Card{}, false
	}
	return d.draw[0], true
}

// MarkTopDiscardPlayed sets the Played flag on the current discard top.
// Called when the top card's action has fully resolved, so the effect is
// not triggered a second time.
func (d *Deck) MarkTopDiscardPlayed() {
	if len(d.discard) > 0 {
		d.discard[0].Played = true
	}
}

// ReshuffleDiscardIntoDraw moves every discard card except the top one back
// into the draw pile and shuffles. Played flags are cleared so recycled
// action cards are live again. A no-op unless the discard pile holds more
// than one card.
func (d *Deck) ReshuffleDiscardIntoDraw() {
	if len(d.discard) <= 1 {
		return
	}
	top := d.discard[0]
	for _, c := range d.discard[1:] {
		c.Played = false
		d.draw = append(d.draw, c)
	}
	d.discard = []Card{top}
	d.shuffleDraw()
}

// DrawLen returns the draw-pile size.
func (d *Deck) DrawLen() int { return len(d.draw) }

// DiscardLen returns the discard-pile size.
func (d *Deck) DiscardLen() int { return len(d.discard) }

// Size returns the total number of cards held in both piles.
func (d *Deck) Size() int { return len(d.draw) + len(d.discard) }

// DrawOrder returns a copy of the draw pile, head first. Used to embed the
// shuffled order into the game-initialization record.
func (d *Deck) DrawOrder() []Card {
	out := make([]Card, len(d.draw))
	copy(out, d.draw)
	return out
}
