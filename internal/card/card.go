// Package card implements the Vinto card and deck model: immutable card
// identity, draw/discard piles, and reshuffle-on-exhaustion.
package card

import (
	"strings"

	"github.com/google/uuid"
)

// Rank identifies a card face. Vinto uses a standard 52-card deck plus two
// Jokers; suits carry no meaning and are not modeled.
type Rank string

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
	Joker Rank = "Joker"
)

// Ranks lists every rank in deck order.
var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace, Joker}

// ParseRank resolves free-form user input ("q", "JOKER", "10") to a rank.
func ParseRank(s string) (Rank, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Ranks {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// Valid reports whether r is a known rank.
func (r Rank) Valid() bool {
	switch r {
	case Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace, Joker:
		return true
	}
	return false
}

// Value returns the score weight of the rank.
//   - Two–Ten → face value
//   - Jack → 11, Queen → 12, King → 13
//   - Ace → 1, Joker → 0
func (r Rank) Value() int {
	switch r {
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	case Ten:
		return 10
	case Jack:
		return 11
	case Queen:
		return 12
	case King:
		return 13
	case Ace:
		return 1
	}
	// Joker or malformed rank.
	return 0
}

// Action names the special effect a rank carries when played.
type Action string

const (
	ActionNone         Action = ""              // 2–6, Joker
	ActionPeekOwn      Action = "peek-own"      // 7, 8
	ActionPeekOpponent Action = "peek-opponent" // 9, 10
	ActionBlindSwap    Action = "blind-swap"    // J
	ActionPeekThenSwap Action = "peek-and-swap" // Q
	ActionDeclare      Action = "declare-rank"  // K
	ActionForceDraw    Action = "force-draw"    // A
)

// ActionOf returns the special effect associated with a rank.
func ActionOf(r Rank) Action {
	switch r {
	case Seven, Eight:
		return ActionPeekOwn
	case Nine, Ten:
		return ActionPeekOpponent
	case Jack:
		return ActionBlindSwap
	case Queen:
		return ActionPeekThenSwap
	case King:
		return ActionDeclare
	case Ace:
		return ActionForceDraw
	}
	return ActionNone
}

// Card is a single deck card. Identity (ID) and Rank never change once the
// card is created; Played flips when the card's action has been resolved and
// is cleared again when the card is reshuffled into the draw pile.
type Card struct {
	ID     uuid.UUID `json:"id"`
	Rank   Rank      `json:"rank"`
	Played bool      `json:"played,omitempty"`
}

// New creates a card of the given rank with a fresh identity.
func New(r Rank) Card {
	return Card{ID: uuid.New(), Rank: r}
}

// Value returns the card's score weight.
func (c Card) Value() int { return c.Rank.Value() }

// Action returns the card's special effect tag.
func (c Card) Action() Action { return ActionOf(c.Rank) }

// HasAction reports whether playing the card triggers a special effect. A
// spent card offers nothing: once Played is set the action never fires again.
func (c Card) HasAction() bool { return c.Action() != ActionNone && !c.Played }

// String renders the rank for logs.
func (c Card) String() string { return string(c.Rank) }

// CanTossIn reports whether a card of rank r may be tossed onto a discard
// pile whose top card has rank top. Pure rank equality.
func CanTossIn(r, top Rank) bool { return r == top }
