package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// TurnChoice is a bot's opening move for its turn.
type TurnChoice string

const (
	ChoiceDraw        TurnChoice = "draw"
	ChoiceTakeDiscard TurnChoice = "take-discard"
)

// Decider is the strategy contract the engine consumes. The engine never
// looks inside a decider; it only asks these five questions.
type Decider interface {
	DecideTurnAction(ctx *DecisionContext) TurnChoice
	ShouldUseAction(c card.Card, ctx *DecisionContext) bool
	// SelectBestSwapPosition returns the row slot to replace with the held
	// card, or false to discard it instead.
	SelectBestSwapPosition(c card.Card, ctx *DecisionContext) (int, bool)
	ShouldParticipateInTossIn(rank card.Rank, ctx *DecisionContext) bool
	ShouldCallVinto(ctx *DecisionContext) bool
}

// DecisionContext is the read-only bundle handed to a Decider.
type DecisionContext struct {
	Actor           *Player
	Players         []*Player
	DiscardTop      *card.Card
	DrawPileSize    int
	DiscardPileSize int
	Pending         *PendingAction
	TurnCount       int
	FinalTurn       bool
	VintoCalled     bool
	// Knowledge is the actor's tracked view of every row, its own
	// included: owner id -> position -> card.
	Knowledge map[uuid.UUID]map[int]card.Card
}

// RegisterDecider attaches a strategy provider to a player.
func (g *Game) RegisterDecider(playerID uuid.UUID, d Decider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deciders[playerID] = d
}

func (g *Game) decisionContextLocked(actorID uuid.UUID) *DecisionContext {
	ctx := &DecisionContext{
		Actor:           g.playerByID(actorID),
		Players:         g.players,
		DrawPileSize:    g.deck.DrawLen(),
		DiscardPileSize: g.deck.DiscardLen(),
		Pending:         g.pending,
		TurnCount:       g.turnCount,
		FinalTurn:       g.finalTurn,
		VintoCalled:     g.vintoCallerID != uuid.Nil,
		Knowledge:       make(map[uuid.UUID]map[int]card.Card),
	}
	if top, ok := g.deck.PeekDiscard(); ok {
		ctx.DiscardTop = &top
	}
	for owner, slots := range g.knowledge[actorID] {
		view := make(map[int]card.Card, len(slots))
		for pos, c := range slots {
			view[pos] = c
		}
		ctx.Knowledge[owner] = view
	}
	return ctx
}

// effectiveDeciderLocked resolves who steers a seat. During the final turn
// coalition members defer to the coalition leader's strategy.
func (g *Game) effectiveDeciderLocked(p *Player) (Decider, bool) {
	if g.finalTurn && g.leaderID != uuid.Nil && !p.IsVintoCaller {
		if d, ok := g.deciders[g.leaderID]; ok {
			return d, true
		}
	}
	d, ok := g.deciders[p.ID]
	return d, ok
}

// PlayBotTurn drives one full bot turn: the opening choice, the swap or
// action, the toss-in evaluation, the queue drain, and the turn advance.
// Everything it does goes through recorded commands; the driver itself is
// never replayed. It returns true once the turn fully completed (a human
// catch in the toss queue can leave resolution waiting for input).
func (g *Game) PlayBotTurn(playerID uuid.UUID) (bool, error) {
	g.mu.Lock()
	p := g.playerByID(playerID)
	if p == nil || !p.IsBot || g.phase != PhasePlaying || g.sub != SubIdle ||
		g.players[g.turn].ID != playerID {
		g.mu.Unlock()
		return false, Reject("no bot turn to play for %s", playerID)
	}
	d, ok := g.effectiveDeciderLocked(p)
	if !ok {
		g.mu.Unlock()
		return false, Reject("no decider registered for %s", p.Name)
	}
	ctx := g.decisionContextLocked(playerID)
	g.sub = SubAIThinking
	delay := g.rules.BotThinkDelay
	g.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if d.ShouldCallVinto(ctx) {
		if err := g.Do(&CallVintoCommand{PlayerID: playerID}); err != nil {
			return false, err
		}
		return true, nil
	}

	var opening Command = &DrawCardCommand{PlayerID: playerID}
	if d.DecideTurnAction(ctx) == ChoiceTakeDiscard {
		g.mu.Lock()
		// A taken discard must enter the row, so an empty row rules it out.
		canTake := g.deck.DiscardLen() > 0 && p.HandSize() > 0
		g.mu.Unlock()
		if canTake {
			opening = &TakeDiscardCommand{PlayerID: playerID}
		}
	}
	if err := g.Do(opening); err != nil {
		return false, err
	}

	g.mu.Lock()
	drawn := *g.drawn
	fromDiscard := g.drawnFromDiscard
	ctx = g.decisionContextLocked(playerID)
	g.mu.Unlock()

	switch {
	case !fromDiscard && drawn.HasAction() && d.ShouldUseAction(drawn, ctx):
		if err := g.Do(&PlayDrawnActionCommand{PlayerID: playerID}); err != nil {
			return false, err
		}
		if err := g.autoResolvePending(playerID); err != nil {
			return false, err
		}
	default:
		pos, swap := d.SelectBestSwapPosition(drawn, ctx)
		if !swap && fromDiscard {
			// A taken discard must enter the row.
			pos, swap = 0, true
		}
		if swap && ctx.Actor.HandSize() == 0 {
			pos, swap = 0, false
		}
		if swap {
			if err := g.Do(&SelectSwapPositionCommand{PlayerID: playerID, Position: pos}); err != nil {
				return false, err
			}
			if err := g.Do(&SwapCardCommand{PlayerID: playerID}); err != nil {
				return false, err
			}
		} else {
			if err := g.Do(&DiscardDrawnCommand{PlayerID: playerID}); err != nil {
				return false, err
			}
		}
	}

	return g.FinishTurn()
}

// FinishTurn runs the end-of-turn sequence: bot toss-in evaluation, window
// close, queue drain, turn advance. Returns false when a human's queued
// toss-in action is waiting for target input; the caller resumes with
// ResumeTossQueue once that input has arrived.
func (g *Game) FinishTurn() (bool, error) {
	g.EvaluateBotTosses()

	g.mu.Lock()
	hasWindow := g.toss != nil && g.toss.Open
	g.mu.Unlock()
	if hasWindow {
		if err := g.Do(&CloseTossWindowCommand{}); err != nil {
			return false, err
		}
	}
	return g.ResumeTossQueue()
}

// EvaluateBotTosses polls every bot once, synchronously, against the open
// window's rank. Invalid choices are impossible here: a bot only enters
// with a matching card.
func (g *Game) EvaluateBotTosses() {
	g.mu.Lock()
	if g.toss == nil || !g.toss.Open || g.toss.botsEvaluated {
		g.mu.Unlock()
		return
	}
	g.toss.botsEvaluated = true
	rank := g.toss.Rank

	type tossPick struct {
		playerID uuid.UUID
		position int
	}
	var picks []tossPick
	for _, p := range g.players {
		if !p.IsBot {
			continue
		}
		d, ok := g.effectiveDeciderLocked(p)
		if !ok {
			continue
		}
		if !d.ShouldParticipateInTossIn(rank, g.decisionContextLocked(p.ID)) {
			continue
		}
		if pos, ok := g.selectBotTossPosition(p, rank); ok {
			picks = append(picks, tossPick{playerID: p.ID, position: pos})
		}
	}
	g.mu.Unlock()

	for _, pick := range picks {
		// Positions shift as earlier tosses land, but each pick removes
		// from a different player's row, so recorded positions stay valid.
		_ = g.Do(&TossInCommand{PlayerID: pick.playerID, Position: pick.position})
	}
}

// selectBotTossPosition picks which matching card a bot tosses: prefer a
// slot the owner cannot identify (neither setup-peeked nor since sighted),
// then the lower point value, then the lower position.
func (g *Game) selectBotTossPosition(p *Player, rank card.Rank) (int, bool) {
	best := -1
	bestKnown := true
	bestValue := 0
	for pos, c := range p.Cards {
		if !card.CanTossIn(c.Rank, rank) {
			continue
		}
		known := g.knownToOwner(p, pos)
		switch {
		case best < 0,
			bestKnown && !known,
			bestKnown == known && c.Value() < bestValue:
			best, bestKnown, bestValue = pos, known, c.Value()
		}
	}
	return best, best >= 0
}

// ResumeTossQueue drains the queued toss-in actions after the window has
// closed. Bot entries resolve automatically; a human entry stops the drain
// with false so the caller can collect targets, then call ResumeTossQueue
// again. Once the queue is empty the turn advances.
func (g *Game) ResumeTossQueue() (bool, error) {
	for {
		g.mu.Lock()
		if g.pending != nil {
			actorID := g.pending.ActorID
			actor := g.playerByID(actorID)
			isBot := actor != nil && actor.IsBot
			g.mu.Unlock()
			if !isBot {
				return false, nil
			}
			if err := g.autoResolvePending(actorID); err != nil {
				return false, err
			}
			continue
		}
		queued := g.toss != nil && !g.toss.Open && len(g.toss.Queue) > 0
		g.mu.Unlock()

		if queued {
			if err := g.Do(&BeginQueuedActionCommand{}); err != nil {
				return false, err
			}
			continue
		}
		if err := g.Do(&AdvanceTurnCommand{}); err != nil {
			return false, err
		}
		g.history.MarkTurnStart()
		return true, nil
	}
}

// autoResolvePending supplies default targets for a bot's pending action.
// Target quality is deliberately simple; strategy belongs to Decider
// implementations, this keeps queued bot catches from wedging the queue.
func (g *Game) autoResolvePending(actorID uuid.UUID) error {
	for {
		g.mu.Lock()
		p := g.pending
		if p == nil || p.ActorID != actorID {
			g.mu.Unlock()
			return nil
		}
		cmd := g.defaultResolutionLocked(p)
		g.mu.Unlock()
		if cmd == nil {
			return nil
		}
		if err := g.Do(cmd); err != nil {
			return err
		}
	}
}

func (g *Game) defaultResolutionLocked(p *PendingAction) Command {
	actor := g.playerByID(p.ActorID)
	if actor == nil {
		return &SkipActionCommand{PlayerID: p.ActorID}
	}
	if p.AwaitingSwapChoice {
		return &ConfirmQueenSwapCommand{PlayerID: p.ActorID, Swap: queenSwapWorthIt(g, p)}
	}
	switch p.Target {
	case TargetDeclareAction:
		return &DeclareKingRankCommand{PlayerID: p.ActorID, Rank: card.Seven}
	case TargetOwnCard:
		if actor.HandSize() == 0 {
			return &SkipActionCommand{PlayerID: p.ActorID}
		}
		return &SelectActionTargetCommand{
			PlayerID: p.ActorID,
			Target:   TargetRef{PlayerID: actor.ID, Position: unknownOwnSlot(g, actor)},
		}
	case TargetOpponentCard, TargetForceDraw:
		opp := g.nextOpponentLocked(actor)
		if opp == nil || opp.HandSize() == 0 {
			return &SkipActionCommand{PlayerID: p.ActorID}
		}
		return &SelectActionTargetCommand{
			PlayerID: p.ActorID,
			Target:   TargetRef{PlayerID: opp.ID, Position: 0},
		}
	case TargetSwapCards, TargetPeekThenSwap:
		opp := g.nextOpponentLocked(actor)
		if opp == nil || opp.HandSize() == 0 || actor.HandSize() == 0 {
			return &SkipActionCommand{PlayerID: p.ActorID}
		}
		refs := []TargetRef{
			{PlayerID: actor.ID, Position: unknownOwnSlot(g, actor)},
			{PlayerID: opp.ID, Position: 0},
		}
		return &SelectActionTargetCommand{PlayerID: p.ActorID, Target: refs[len(p.Targets)]}
	}
	return &SkipActionCommand{PlayerID: p.ActorID}
}

// nextOpponentLocked returns the first non-actor seat after the actor, or
// nil in a degenerate single-player state.
func (g *Game) nextOpponentLocked(actor *Player) *Player {
	seat := g.seatOf(actor.ID)
	for i := 1; i < len(g.players); i++ {
		p := g.players[(seat+i)%len(g.players)]
		if p.ID != actor.ID {
			return p
		}
	}
	return nil
}

func unknownOwnSlot(g *Game, p *Player) int {
	for pos := range p.Cards {
		if !p.Known[pos] {
			return pos
		}
	}
	return 0
}

// queenSwapWorthIt keeps the swap when it lowers the actor's own total:
// the actor's peeked card is worth more than the other one.
func queenSwapWorthIt(g *Game, p *PendingAction) bool {
	if len(p.Targets) < 2 {
		return false
	}
	var own, other *card.Card
	for _, ref := range p.Targets {
		owner := g.playerByID(ref.PlayerID)
		c, ok := owner.CardAt(ref.Position)
		if !ok {
			return false
		}
		cc := c
		if ref.PlayerID == p.ActorID {
			own = &cc
		} else {
			other = &cc
		}
	}
	if own == nil || other == nil {
		return false
	}
	return own.Value() > other.Value()
}
