package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// beginPendingActionLocked opens an action resolution for c, which has
// already left its origin (the discard top for turn plays, the toss-in
// queue otherwise). Exactly one action resolves at a time.
func (g *Game) beginPendingActionLocked(actorID uuid.UUID, c card.Card, fromQueue, free bool) error {
	if g.pending != nil {
		return fmt.Errorf("action resolution already in progress")
	}
	tt, ok := targetTypeFor(c.Action())
	if !ok {
		// Rank with no effect; nothing to resolve.
		return g.finalizeCardLocked(c, fromQueue)
	}
	g.pending = &PendingAction{
		Card:            c,
		ActorID:         actorID,
		Target:          tt,
		FromTossQueue:   fromQueue,
		FreeDeclaration: free,
	}
	if !fromQueue {
		g.sub = SubAwaitingTarget
	}
	return nil
}

// SelectActionTargetCommand supplies one target for the pending action. The
// action resolves as soon as its required target count is reached; the Queen
// pauses for a swap confirmation instead.
type SelectActionTargetCommand struct {
	PlayerID uuid.UUID
	Target   TargetRef
}

func (c *SelectActionTargetCommand) Type() CommandType { return CmdSelectActionTarget }
func (c *SelectActionTargetCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *SelectActionTargetCommand) payload() any      { return targetPayload{Target: c.Target} }
func (c *SelectActionTargetCommand) Describe() string {
	return fmt.Sprintf("target player %s position %d", c.Target.PlayerID, c.Target.Position)
}

func (c *SelectActionTargetCommand) Execute(g *Game) error {
	p := g.pending
	if p == nil {
		return Reject("no action is resolving")
	}
	if p.ActorID != c.PlayerID {
		return Reject("only the acting player may choose targets")
	}
	if p.AwaitingSwapChoice {
		return Reject("awaiting the swap confirmation, not a target")
	}
	if p.Target == TargetDeclareAction {
		return Reject("a rank must be declared before targeting")
	}
	if err := g.validateTargetLocked(p, c.Target); err != nil {
		return err
	}
	p.Targets = append(p.Targets, c.Target)
	if len(p.Targets) < p.requiredTargets() {
		return nil
	}
	return g.resolveTargetsLocked(p)
}

// validateTargetLocked enforces the per-action ownership rules before the
// target is recorded, so a rejected target never mutates the pending state.
func (g *Game) validateTargetLocked(p *PendingAction, ref TargetRef) error {
	owner := g.playerByID(ref.PlayerID)
	if owner == nil {
		return Reject("unknown player %s", ref.PlayerID)
	}
	if _, ok := owner.CardAt(ref.Position); !ok {
		return Reject("position %d out of range for %s", ref.Position, owner.Name)
	}
	switch p.Target {
	case TargetOwnCard:
		if ref.PlayerID != p.ActorID {
			return Reject("this action may only target your own cards")
		}
	case TargetOpponentCard, TargetForceDraw:
		if ref.PlayerID == p.ActorID {
			return Reject("this action may only target an opponent")
		}
	case TargetSwapCards, TargetPeekThenSwap:
		for _, prev := range p.Targets {
			if prev == ref {
				return Reject("the two targets must be distinct cards")
			}
		}
		if p.Target == TargetPeekThenSwap && len(p.Targets) == 1 &&
			p.Targets[0].PlayerID == p.ActorID && ref.PlayerID == p.ActorID {
			return Reject("at most one of the two cards may be your own")
		}
	}
	if p.Target == TargetForceDraw && g.deck.Size() == 0 {
		return Reject("no cards remain to force a draw")
	}
	return nil
}

// resolveTargetsLocked applies the pending action's effect now that all
// targets are in.
func (g *Game) resolveTargetsLocked(p *PendingAction) error {
	switch p.Target {
	case TargetOwnCard, TargetOpponentCard:
		ref := p.Targets[0]
		owner := g.playerByID(ref.PlayerID)
		cd, _ := owner.CardAt(ref.Position)
		g.learn(p.ActorID, owner.ID, ref.Position, cd)
		if owner.ID == p.ActorID {
			owner.Known[ref.Position] = true
		}
		return g.finalizePendingLocked()

	case TargetSwapCards:
		g.swapRefsLocked(p.Targets[0], p.Targets[1])
		return g.finalizePendingLocked()

	case TargetPeekThenSwap:
		for _, ref := range p.Targets {
			owner := g.playerByID(ref.PlayerID)
			cd, _ := owner.CardAt(ref.Position)
			g.learn(p.ActorID, owner.ID, ref.Position, cd)
			if owner.ID == p.ActorID {
				owner.Known[ref.Position] = true
			}
		}
		p.AwaitingSwapChoice = true
		return nil

	case TargetForceDraw:
		ref := p.Targets[0]
		target := g.playerByID(ref.PlayerID)
		forced, ok := g.deck.Draw()
		if !ok {
			return g.finalizePendingLocked()
		}
		target.AddCard(forced)
		return g.finalizePendingLocked()
	}
	return fmt.Errorf("unresolvable target type %q", p.Target)
}

// ConfirmQueenSwapCommand resolves the Queen's second step: swap the two
// peeked cards, or leave them in place.
type ConfirmQueenSwapCommand struct {
	PlayerID uuid.UUID
	Swap     bool
}

func (c *ConfirmQueenSwapCommand) Type() CommandType { return CmdConfirmQueenSwap }
func (c *ConfirmQueenSwapCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *ConfirmQueenSwapCommand) payload() any      { return confirmSwapPayload{Swap: c.Swap} }
func (c *ConfirmQueenSwapCommand) Describe() string {
	if c.Swap {
		return "confirm the queen swap"
	}
	return "decline the queen swap"
}

func (c *ConfirmQueenSwapCommand) Execute(g *Game) error {
	p := g.pending
	if p == nil || !p.AwaitingSwapChoice {
		return Reject("no swap confirmation is pending")
	}
	if p.ActorID != c.PlayerID {
		return Reject("only the acting player may confirm the swap")
	}
	if c.Swap {
		g.swapRefsLocked(p.Targets[0], p.Targets[1])
		// Unlike the blind swap, the actor saw both cards and can track
		// them through the exchange.
		for _, ref := range p.Targets {
			owner := g.playerByID(ref.PlayerID)
			cd, _ := owner.CardAt(ref.Position)
			g.learn(p.ActorID, owner.ID, ref.Position, cd)
			if owner.ID == p.ActorID {
				owner.Known[ref.Position] = true
			}
		}
	}
	return g.finalizePendingLocked()
}

// DeclareKingRankCommand names the rank whose action the King mimics. Ranks
// without an action waste the King; the King itself cannot be named.
type DeclareKingRankCommand struct {
	PlayerID uuid.UUID
	Rank     card.Rank
}

func (c *DeclareKingRankCommand) Type() CommandType { return CmdDeclareKingRank }
func (c *DeclareKingRankCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *DeclareKingRankCommand) payload() any      { return declareRankPayload{Rank: c.Rank} }
func (c *DeclareKingRankCommand) Describe() string {
	return fmt.Sprintf("declare %q for the king", c.Rank)
}

func (c *DeclareKingRankCommand) Execute(g *Game) error {
	p := g.pending
	if p == nil {
		return Reject("no action is resolving")
	}
	if p.Target != TargetDeclareAction {
		return Reject("the pending action does not take a rank declaration")
	}
	if p.ActorID != c.PlayerID {
		return Reject("only the acting player may declare")
	}
	if !c.Rank.Valid() {
		return Reject("unknown rank %q", c.Rank)
	}
	if c.Rank == card.King {
		return Reject("the king cannot mimic itself")
	}
	tt, ok := targetTypeFor(card.ActionOf(c.Rank))
	if !ok {
		// Naming an actionless rank spends the king for nothing.
		return g.finalizePendingLocked()
	}
	p.Target = tt
	p.Targets = nil
	return nil
}

// SkipActionCommand forfeits the pending action. Actions are always
// optional.
type SkipActionCommand struct {
	PlayerID uuid.UUID
}

func (c *SkipActionCommand) Type() CommandType { return CmdSkipAction }
func (c *SkipActionCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *SkipActionCommand) payload() any      { return emptyPayload{} }
func (c *SkipActionCommand) Describe() string  { return "skip the pending action" }

func (c *SkipActionCommand) Execute(g *Game) error {
	p := g.pending
	if p == nil {
		return Reject("no action is resolving")
	}
	if p.ActorID != c.PlayerID {
		return Reject("only the acting player may skip")
	}
	return g.finalizePendingLocked()
}

// finalizePendingLocked settles the pending action's card and, for turn
// plays, opens the toss-in reaction window. Queued toss-in actions never
// open a nested window.
func (g *Game) finalizePendingLocked() error {
	p := g.pending
	g.pending = nil
	return g.finalizeCardLocked(p.Card, p.FromTossQueue)
}

func (g *Game) finalizeCardLocked(c card.Card, fromQueue bool) error {
	if fromQueue {
		c.Played = true
		g.deck.Discard(c)
		return nil
	}
	g.deck.MarkTopDiscardPlayed()
	g.openTossWindowLocked()
	return nil
}

// swapRefsLocked exchanges the cards at two row slots. Owner knowledge flags
// reset, everyone else's tracked knowledge follows the cards to their new
// homes.
func (g *Game) swapRefsLocked(a, b TargetRef) {
	pa := g.playerByID(a.PlayerID)
	pb := g.playerByID(b.PlayerID)
	ca, cb := pa.Cards[a.Position], pb.Cards[b.Position]
	pa.Cards[a.Position], pb.Cards[b.Position] = cb, ca

	pa.Known[a.Position] = false
	pb.Known[b.Position] = false
	delete(pa.TemporarilyVisible, a.Position)
	delete(pb.TemporarilyVisible, b.Position)

	for _, view := range g.knowledge {
		var knewA, knewB card.Card
		var hadA, hadB bool
		if m := view[a.PlayerID]; m != nil {
			knewA, hadA = m[a.Position]
			delete(m, a.Position)
		}
		if m := view[b.PlayerID]; m != nil {
			knewB, hadB = m[b.Position]
			delete(m, b.Position)
		}
		if hadA {
			if view[b.PlayerID] == nil {
				view[b.PlayerID] = make(map[int]card.Card)
			}
			view[b.PlayerID][b.Position] = knewA
		}
		if hadB {
			if view[a.PlayerID] == nil {
				view[a.PlayerID] = make(map[int]card.Card)
			}
			view[a.PlayerID][a.Position] = knewB
		}
	}
}
