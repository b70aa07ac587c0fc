package game

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// TargetType names the target-selection protocol a pending action follows.
type TargetType string

const (
	TargetOwnCard       TargetType = "own-card"
	TargetOpponentCard  TargetType = "opponent-card"
	TargetSwapCards     TargetType = "swap-cards"
	TargetPeekThenSwap  TargetType = "peek-then-swap"
	TargetForceDraw     TargetType = "force-draw"
	TargetDeclareAction TargetType = "declare-action"
)

// TargetRef addresses one card by owner and slot position.
type TargetRef struct {
	PlayerID uuid.UUID `json:"playerId"`
	Position int       `json:"position"`
}

// PendingAction is the in-progress special effect of the most recently played
// action card. At most one instance exists at any time; creating a new one
// while another is live is an engine invariant violation.
type PendingAction struct {
	Card    card.Card
	ActorID uuid.UUID
	Target  TargetType
	Targets []TargetRef

	// AwaitingSwapChoice is set for the Queen after both targets are peeked,
	// while the actor decides whether to swap them.
	AwaitingSwapChoice bool

	// FromTossQueue marks actions entered via the toss-in queue; their card
	// is discarded at resolution rather than at play time, and resolution
	// hands control back to the queue drain instead of the turn advancer.
	FromTossQueue bool

	// FreeDeclaration marks an action earned by a correct rank declaration
	// during a swap.
	FreeDeclaration bool
}

// targetTypeFor maps a card action to its target-selection protocol.
func targetTypeFor(a card.Action) (TargetType, bool) {
	switch a {
	case card.ActionPeekOwn:
		return TargetOwnCard, true
	case card.ActionPeekOpponent:
		return TargetOpponentCard, true
	case card.ActionBlindSwap:
		return TargetSwapCards, true
	case card.ActionPeekThenSwap:
		return TargetPeekThenSwap, true
	case card.ActionForceDraw:
		return TargetForceDraw, true
	case card.ActionDeclare:
		return TargetDeclareAction, true
	}
	return "", false
}

// requiredTargets returns how many target references the protocol consumes.
func (p *PendingAction) requiredTargets() int {
	switch p.Target {
	case TargetSwapCards, TargetPeekThenSwap:
		return 2
	case TargetDeclareAction:
		return 0
	default:
		return 1
	}
}
