package game

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// TossEntry is one action-bearing card caught during the toss-in window,
// awaiting ordered resolution after the window closes. The card is held here
// (out of every pile and hand) until its action resolves.
type TossEntry struct {
	PlayerID uuid.UUID
	Card     card.Card
}

// TossAttempt records one toss-in attempt, successful or not, so callers can
// distinguish a valid catch from a penalized miss.
type TossAttempt struct {
	PlayerID uuid.UUID
	Position int
	Card     card.Card
	Success  bool
	Reason   string
}

// TossState is the reaction window opened after every turn's primary action.
// While open, any player may discard a card matching the discard-top rank.
// The window closes only on an explicit close command — there is no engine
// countdown; pacing timers belong to the caller.
type TossState struct {
	Open bool

	// Rank is the discard-top rank the window was opened against. Attempts
	// validate against this rank even if queued catches later change the
	// pile top.
	Rank card.Rank

	Queue    []TossEntry
	Attempts []TossAttempt

	// botsEvaluated is a driver-side latch: each bot is consulted exactly
	// once per window. Not part of replayed state.
	botsEvaluated bool
}

// SuccessfulTosses returns the attempts that passed validation.
func (t *TossState) SuccessfulTosses() []TossAttempt {
	var out []TossAttempt
	for _, a := range t.Attempts {
		if a.Success {
			out = append(out, a)
		}
	}
	return out
}

// FailedAttempts returns the attempts that were penalized.
func (t *TossState) FailedAttempts() []TossAttempt {
	var out []TossAttempt
	for _, a := range t.Attempts {
		if !a.Success {
			out = append(out, a)
		}
	}
	return out
}
