package game

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// Player holds one seat's ordered card row and per-player game state.
// Position (slot index) is the addressing key for every peek, swap and
// toss-in operation.
type Player struct {
	ID    uuid.UUID
	Name  string
	IsBot bool

	// Cards in slot order. Positions shift left when a card is removed.
	Cards []card.Card

	// Known marks positions whose rank the owner learned during the setup
	// peeks or by swapping a seen card into the slot.
	Known map[int]bool

	// TemporarilyVisible marks positions revealed face up to the whole
	// table for a bounded duration (invalid toss-ins, end-of-round).
	// Private sight from peeks lives in the knowledge map instead.
	TemporarilyVisible map[int]bool

	CoalitionWith map[uuid.UUID]bool
	IsVintoCaller bool
}

// PlayerSpec describes a seat when initializing a game.
type PlayerSpec struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	IsBot bool      `json:"isBot"`
}

func newPlayer(spec PlayerSpec) *Player {
	return &Player{
		ID:                 spec.ID,
		Name:               spec.Name,
		IsBot:              spec.IsBot,
		Known:              make(map[int]bool),
		TemporarilyVisible: make(map[int]bool),
		CoalitionWith:      make(map[uuid.UUID]bool),
	}
}

// IsHuman reports whether the seat is controlled by a person.
func (p *Player) IsHuman() bool { return !p.IsBot }

// HandSize returns the number of cards in the row.
func (p *Player) HandSize() int { return len(p.Cards) }

// CardAt returns the card at pos.
func (p *Player) CardAt(pos int) (card.Card, bool) {
	if pos < 0 || pos >= len(p.Cards) {
		return card.Card{}, false
	}
	return p.Cards[pos], true
}

// ReplaceAt swaps c into pos and returns the card it displaced.
func (p *Player) ReplaceAt(pos int, c card.Card) (card.Card, bool) {
	if pos < 0 || pos >= len(p.Cards) {
		return card.Card{}, false
	}
	old := p.Cards[pos]
	p.Cards[pos] = c
	return old, true
}

// RemoveAt removes the card at pos. Later positions shift left; the Known
// and TemporarilyVisible sets are re-indexed to follow their cards.
func (p *Player) RemoveAt(pos int) (card.Card, bool) {
	if pos < 0 || pos >= len(p.Cards) {
		return card.Card{}, false
	}
	c := p.Cards[pos]
	p.Cards = append(p.Cards[:pos], p.Cards[pos+1:]...)
	p.Known = shiftPositions(p.Known, pos)
	p.TemporarilyVisible = shiftPositions(p.TemporarilyVisible, pos)
	return c, true
}

// AddCard appends c to the end of the row and returns its position. The new
// slot is unknown to the owner.
func (p *Player) AddCard(c card.Card) int {
	p.Cards = append(p.Cards, c)
	return len(p.Cards) - 1
}

// Score returns the sum of the row's card values.
func (p *Player) Score() int {
	total := 0
	for _, c := range p.Cards {
		total += c.Value()
	}
	return total
}

// shiftPositions drops removed and moves every later position down by one.
func shiftPositions(set map[int]bool, removed int) map[int]bool {
	out := make(map[int]bool, len(set))
	for pos, v := range set {
		if !v {
			continue
		}
		switch {
		case pos < removed:
			out[pos] = true
		case pos > removed:
			out[pos-1] = true
		}
	}
	return out
}
