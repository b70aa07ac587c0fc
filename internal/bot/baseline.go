// Package bot provides a baseline strategy provider for the game engine.
// The choices are deliberately simple and deterministic; anything smarter
// plugs in through the same game.Decider interface.
package bot

import (
	"github.com/Lonli-Lokli/vinto-engine/internal/card"
	"github.com/Lonli-Lokli/vinto-engine/internal/game"
)

// Baseline is a rule-of-thumb Decider: grab cheap discards, use peeks,
// swap out its worst known card, and call Vinto on a fully-known low hand.
type Baseline struct {
	// VintoThreshold is the highest fully-known hand total the bot will
	// still call Vinto on.
	VintoThreshold int
}

// NewBaseline returns a Baseline with the default call threshold.
func NewBaseline() *Baseline {
	return &Baseline{VintoThreshold: 5}
}

var _ game.Decider = (*Baseline)(nil)

// DecideTurnAction takes a face-up discard worth keeping (low value),
// otherwise draws blind.
func (b *Baseline) DecideTurnAction(ctx *game.DecisionContext) game.TurnChoice {
	if ctx.DiscardTop != nil && ctx.DiscardTop.Value() <= 3 {
		return game.ChoiceTakeDiscard
	}
	return game.ChoiceDraw
}

// ShouldUseAction plays peek actions for the information and skips the
// rest; blind manipulation rarely pays off without tracked knowledge.
func (b *Baseline) ShouldUseAction(c card.Card, ctx *game.DecisionContext) bool {
	switch c.Action() {
	case card.ActionPeekOwn, card.ActionPeekOpponent, card.ActionPeekThenSwap:
		return true
	}
	return false
}

// SelectBestSwapPosition replaces the worst known own card when the held
// card improves on it, falls back to an unknown slot for a low card, and
// otherwise discards.
func (b *Baseline) SelectBestSwapPosition(c card.Card, ctx *game.DecisionContext) (int, bool) {
	own := ctx.Knowledge[ctx.Actor.ID]

	worstPos, worstVal := -1, -1
	for pos, kc := range own {
		if kc.Value() > worstVal {
			worstPos, worstVal = pos, kc.Value()
		}
	}
	if worstPos >= 0 && c.Value() < worstVal {
		return worstPos, true
	}
	if c.Value() <= 5 {
		for pos := 0; pos < ctx.Actor.HandSize(); pos++ {
			if _, known := own[pos]; !known {
				return pos, true
			}
		}
	}
	return 0, false
}

// ShouldParticipateInTossIn joins the window when the bot knows it holds a
// matching card.
func (b *Baseline) ShouldParticipateInTossIn(rank card.Rank, ctx *game.DecisionContext) bool {
	for _, kc := range ctx.Knowledge[ctx.Actor.ID] {
		if card.CanTossIn(kc.Rank, rank) {
			return true
		}
	}
	return false
}

// ShouldCallVinto calls only with a fully-known hand at or under the
// threshold, and never once another caller has ended the round.
func (b *Baseline) ShouldCallVinto(ctx *game.DecisionContext) bool {
	if ctx.VintoCalled {
		return false
	}
	own := ctx.Knowledge[ctx.Actor.ID]
	if len(own) < ctx.Actor.HandSize() {
		return false
	}
	total := 0
	for _, kc := range own {
		total += kc.Value()
	}
	return total <= b.VintoThreshold
}
