package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// Payload shapes, one per command variant.

type initializeGamePayload struct {
	Seed    uint64       `json:"seed"`
	Players []PlayerSpec `json:"players"`
	// Deck is the full shuffled draw order, head first. Embedding it keeps
	// replays deterministic: loading never re-shuffles.
	Deck []card.Card `json:"deck"`
}

type setupPeekPayload struct {
	Positions []int `json:"positions"`
}

type positionPayload struct {
	Position int `json:"position"`
}

type swapCardPayload struct {
	DeclaredRank *card.Rank `json:"declaredRank,omitempty"`
}

type targetPayload struct {
	Target TargetRef `json:"target"`
}

type confirmSwapPayload struct {
	Swap bool `json:"swap"`
}

type declareRankPayload struct {
	Rank card.Rank `json:"rank"`
}

type emptyPayload struct{}

// ---------------------------------------------------------------------------
// INITIALIZE_GAME
// ---------------------------------------------------------------------------

// InitializeGameCommand resets every model and starts a new session: builds
// the seats, installs the recorded deck order, deals the opening rows, and
// enters the setup phase.
type InitializeGameCommand struct {
	initializeGamePayload
}

func (c *InitializeGameCommand) Type() CommandType { return CmdInitializeGame }
func (c *InitializeGameCommand) Actor() uuid.UUID  { return uuid.Nil }
func (c *InitializeGameCommand) payload() any      { return c.initializeGamePayload }
func (c *InitializeGameCommand) Describe() string {
	return fmt.Sprintf("initialize game with %d players, %d cards", len(c.Players), len(c.Deck))
}

func (c *InitializeGameCommand) Execute(g *Game) error {
	if len(c.Players) < 2 {
		return Reject("game requires at least 2 players, got %d", len(c.Players))
	}
	need := len(c.Players) * g.rules.CardsPerPlayer
	if len(c.Deck) < need+1 {
		return Reject("deck of %d cards cannot serve %d players", len(c.Deck), len(c.Players))
	}

	g.players = g.players[:0]
	for _, spec := range c.Players {
		if spec.ID == uuid.Nil {
			return Reject("player %q has no id", spec.Name)
		}
		g.players = append(g.players, newPlayer(spec))
	}

	g.deck = card.NewOrderedDeck(c.Deck, rand.New(rand.NewPCG(c.Seed, deckStreamSalt)))
	g.totalCards = len(c.Deck)

	for i := 0; i < g.rules.CardsPerPlayer; i++ {
		for _, p := range g.players {
			drawn, ok := g.deck.Draw()
			if !ok {
				return fmt.Errorf("deck exhausted while dealing")
			}
			p.AddCard(drawn)
		}
	}

	g.phase = PhaseSetup
	g.sub = SubIdle
	g.turn = 0
	g.turnCount = 0
	g.drawn = nil
	g.drawnFromDiscard = false
	g.swapPos = -1
	g.pending = nil
	g.toss = nil
	g.vintoCallerID = uuid.Nil
	g.leaderID = uuid.Nil
	g.finalTurn = false
	g.result = nil
	g.setupPeeks = make(map[uuid.UUID]int)
	g.knowledge = make(map[uuid.UUID]map[uuid.UUID]map[int]card.Card)
	return nil
}

// ---------------------------------------------------------------------------
// SETUP_PEEK / FINISH_SETUP
// ---------------------------------------------------------------------------

// SetupPeekCommand records a player's free setup peeks: the chosen positions
// become permanently known to the owner.
type SetupPeekCommand struct {
	PlayerID  uuid.UUID
	Positions []int
}

func (c *SetupPeekCommand) Type() CommandType { return CmdSetupPeek }
func (c *SetupPeekCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *SetupPeekCommand) payload() any      { return setupPeekPayload{Positions: c.Positions} }
func (c *SetupPeekCommand) Describe() string {
	return fmt.Sprintf("setup peek at positions %v", c.Positions)
}

func (c *SetupPeekCommand) Execute(g *Game) error {
	if g.phase != PhaseSetup {
		return Reject("setup peeks are only allowed during setup")
	}
	p := g.playerByID(c.PlayerID)
	if p == nil {
		return Reject("unknown player %s", c.PlayerID)
	}
	if g.setupPeeks[p.ID]+len(c.Positions) > g.rules.SetupPeekCount {
		return Reject("player %s exceeds the %d allowed setup peeks", p.Name, g.rules.SetupPeekCount)
	}
	for _, pos := range c.Positions {
		cd, ok := p.CardAt(pos)
		if !ok {
			return Reject("position %d out of range", pos)
		}
		p.Known[pos] = true
		g.learn(p.ID, p.ID, pos, cd)
	}
	g.setupPeeks[p.ID] += len(c.Positions)
	return nil
}

// Undo removes the recorded peeks again.
func (c *SetupPeekCommand) Undo(g *Game) error {
	p := g.playerByID(c.PlayerID)
	if p == nil {
		return fmt.Errorf("unknown player %s", c.PlayerID)
	}
	for _, pos := range c.Positions {
		delete(p.Known, pos)
		if m := g.knowledge[p.ID]; m != nil {
			delete(m[p.ID], pos)
		}
	}
	g.setupPeeks[p.ID] -= len(c.Positions)
	return nil
}

// FinishSetupCommand moves the game from setup to play.
type FinishSetupCommand struct{}

func (c *FinishSetupCommand) Type() CommandType { return CmdFinishSetup }
func (c *FinishSetupCommand) Actor() uuid.UUID  { return uuid.Nil }
func (c *FinishSetupCommand) payload() any      { return emptyPayload{} }
func (c *FinishSetupCommand) Describe() string  { return "finish setup, begin play" }

func (c *FinishSetupCommand) Execute(g *Game) error {
	if g.phase != PhaseSetup {
		return Reject("game is not in setup")
	}
	g.phase = PhasePlaying
	g.sub = SubIdle
	for _, p := range g.players {
		p.TemporarilyVisible = make(map[int]bool)
	}
	return nil
}

// ---------------------------------------------------------------------------
// DRAW_CARD / TAKE_DISCARD
// ---------------------------------------------------------------------------

// DrawCardCommand draws the top draw-pile card into the turn player's holding
// slot. Reshuffle happens inside the deck when needed; if both piles are
// insufficient the command is rejected, never crashed.
type DrawCardCommand struct {
	PlayerID uuid.UUID
}

func (c *DrawCardCommand) Type() CommandType { return CmdDrawCard }
func (c *DrawCardCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *DrawCardCommand) payload() any      { return emptyPayload{} }
func (c *DrawCardCommand) Describe() string  { return "draw from the draw pile" }

func (c *DrawCardCommand) Execute(g *Game) error {
	if err := g.checkTurnStart(c.PlayerID); err != nil {
		return err
	}
	g.sub = SubDrawing
	drawn, ok := g.deck.Draw()
	if !ok {
		g.sub = SubIdle
		return Reject("both piles are exhausted; drawing is unavailable")
	}
	g.drawn = &drawn
	g.drawnFromDiscard = false
	g.sub = SubChoosingAction
	return nil
}

// TakeDiscardCommand takes the top discard-pile card into the holding slot.
// A taken card must be swapped into the row; it cannot be re-discarded and
// its action is spent.
type TakeDiscardCommand struct {
	PlayerID uuid.UUID
}

func (c *TakeDiscardCommand) Type() CommandType { return CmdTakeDiscard }
func (c *TakeDiscardCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *TakeDiscardCommand) payload() any      { return emptyPayload{} }
func (c *TakeDiscardCommand) Describe() string  { return "take the top discard" }

func (c *TakeDiscardCommand) Execute(g *Game) error {
	if err := g.checkTurnStart(c.PlayerID); err != nil {
		return err
	}
	taken, ok := g.deck.TakeDiscard()
	if !ok {
		return Reject("discard pile is empty")
	}
	g.drawn = &taken
	g.drawnFromDiscard = true
	g.sub = SubChoosingAction
	return nil
}

// checkTurnStart validates the common preconditions for starting a turn's
// primary action.
func (g *Game) checkTurnStart(playerID uuid.UUID) error {
	if g.phase != PhasePlaying {
		return Reject("game is not in play")
	}
	// SubAIThinking is the bot driver's pacing marker; the turn is still
	// at its start.
	if g.sub != SubIdle && g.sub != SubAIThinking {
		return Reject("cannot start a turn action during %s", g.sub)
	}
	if g.players[g.turn].ID != playerID {
		return Reject("it is not your turn")
	}
	if g.drawn != nil {
		return Reject("a card has already been drawn this turn")
	}
	if g.pending != nil {
		return Reject("an action is still resolving")
	}
	return nil
}

// ---------------------------------------------------------------------------
// SELECT_SWAP_POSITION / SWAP_CARD
// ---------------------------------------------------------------------------

// SelectSwapPositionCommand chooses the row slot the held card will replace,
// moving the turn into the rank-declaration step.
type SelectSwapPositionCommand struct {
	PlayerID uuid.UUID
	Position int
}

func (c *SelectSwapPositionCommand) Type() CommandType { return CmdSelectSwapPosition }
func (c *SelectSwapPositionCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *SelectSwapPositionCommand) payload() any      { return positionPayload{Position: c.Position} }
func (c *SelectSwapPositionCommand) Describe() string {
	return fmt.Sprintf("select swap position %d", c.Position)
}

func (c *SelectSwapPositionCommand) Execute(g *Game) error {
	if g.phase != PhasePlaying || g.sub != SubChoosingAction {
		return Reject("no drawn card to place")
	}
	if g.players[g.turn].ID != c.PlayerID {
		return Reject("it is not your turn")
	}
	if g.drawn == nil {
		return Reject("no drawn card to place")
	}
	if _, ok := g.players[g.turn].CardAt(c.Position); !ok {
		return Reject("position %d out of range", c.Position)
	}
	g.swapPos = c.Position
	g.sub = SubDeclaringRank
	return nil
}

// Undo returns to the action choice step.
func (c *SelectSwapPositionCommand) Undo(g *Game) error {
	if g.sub != SubDeclaringRank {
		return fmt.Errorf("swap position is no longer pending")
	}
	g.swapPos = -1
	g.sub = SubChoosingAction
	return nil
}

// SwapCardCommand commits the swap: the held card enters the chosen slot and
// the replaced card leaves. An optional rank declaration wagers on the
// replaced card's rank — correct buys the replaced card's action for free,
// incorrect costs a penalty draw.
type SwapCardCommand struct {
	PlayerID     uuid.UUID
	DeclaredRank *card.Rank
}

func (c *SwapCardCommand) Type() CommandType { return CmdSwapCard }
func (c *SwapCardCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *SwapCardCommand) payload() any      { return swapCardPayload{DeclaredRank: c.DeclaredRank} }
func (c *SwapCardCommand) Describe() string {
	if c.DeclaredRank != nil {
		return fmt.Sprintf("swap drawn card, declaring %q", *c.DeclaredRank)
	}
	return "swap drawn card, no declaration"
}

func (c *SwapCardCommand) Execute(g *Game) error {
	if g.phase != PhasePlaying || g.sub != SubDeclaringRank {
		return Reject("no swap in progress")
	}
	actor := g.players[g.turn]
	if actor.ID != c.PlayerID {
		return Reject("it is not your turn")
	}
	if g.drawn == nil || g.swapPos < 0 {
		return Reject("no drawn card or swap position")
	}
	if c.DeclaredRank != nil && !c.DeclaredRank.Valid() {
		return Reject("unknown rank %q", *c.DeclaredRank)
	}

	drawn := *g.drawn
	pos := g.swapPos
	replaced, ok := actor.ReplaceAt(pos, drawn)
	if !ok {
		return Reject("position %d out of range", pos)
	}
	g.drawn = nil
	g.drawnFromDiscard = false
	g.swapPos = -1

	// The actor saw the card they placed.
	actor.Known[pos] = true
	g.forgetSlot(actor.ID, pos)
	g.learn(actor.ID, actor.ID, pos, drawn)

	g.deck.Discard(replaced)

	switch {
	case c.DeclaredRank == nil:
		g.openTossWindowLocked()
	case *c.DeclaredRank == replaced.Rank:
		// Correct wager: the replaced card acts as if freshly drawn.
		if replaced.HasAction() {
			return g.beginPendingActionLocked(actor.ID, replaced, false, true)
		}
		g.openTossWindowLocked()
	default:
		// Wrong wager: one penalty card.
		g.penaltyDrawLocked(actor)
		g.openTossWindowLocked()
	}
	return nil
}

// ---------------------------------------------------------------------------
// DISCARD_DRAWN / PLAY_DRAWN_ACTION
// ---------------------------------------------------------------------------

// DiscardDrawnCommand discards the held card without using it.
type DiscardDrawnCommand struct {
	PlayerID uuid.UUID
}

func (c *DiscardDrawnCommand) Type() CommandType { return CmdDiscardDrawn }
func (c *DiscardDrawnCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *DiscardDrawnCommand) payload() any      { return emptyPayload{} }
func (c *DiscardDrawnCommand) Describe() string  { return "discard the drawn card" }

func (c *DiscardDrawnCommand) Execute(g *Game) error {
	if g.phase != PhasePlaying || g.sub != SubChoosingAction {
		return Reject("no drawn card to discard")
	}
	if g.players[g.turn].ID != c.PlayerID {
		return Reject("it is not your turn")
	}
	if g.drawn == nil {
		return Reject("no drawn card to discard")
	}
	if g.drawnFromDiscard {
		return Reject("a card taken from the discard pile must be swapped into the row")
	}
	g.deck.Discard(*g.drawn)
	g.drawn = nil
	g.openTossWindowLocked()
	return nil
}

// PlayDrawnActionCommand discards the held card face up and begins resolving
// its special effect.
type PlayDrawnActionCommand struct {
	PlayerID uuid.UUID
}

func (c *PlayDrawnActionCommand) Type() CommandType { return CmdPlayDrawnAction }
func (c *PlayDrawnActionCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *PlayDrawnActionCommand) payload() any      { return emptyPayload{} }
func (c *PlayDrawnActionCommand) Describe() string  { return "play the drawn card's action" }

func (c *PlayDrawnActionCommand) Execute(g *Game) error {
	if g.phase != PhasePlaying || g.sub != SubChoosingAction {
		return Reject("no drawn card to play")
	}
	actor := g.players[g.turn]
	if actor.ID != c.PlayerID {
		return Reject("it is not your turn")
	}
	if g.drawn == nil {
		return Reject("no drawn card to play")
	}
	if g.drawnFromDiscard {
		return Reject("a card taken from the discard pile carries no action")
	}
	drawn := *g.drawn
	if drawn.Played {
		return Reject("%s has already spent its action", drawn.Rank)
	}
	if !drawn.HasAction() {
		return Reject("%s carries no action", drawn.Rank)
	}
	g.drawn = nil
	g.deck.Discard(drawn)
	return g.beginPendingActionLocked(actor.ID, drawn, false, false)
}

// ---------------------------------------------------------------------------
// TOSS_IN / CLOSE_TOSS_WINDOW / BEGIN_QUEUED_ACTION
// ---------------------------------------------------------------------------

// TossInCommand attempts a reactive discard of a rank-matching card during an
// open toss-in window. A rank mismatch is a valid-but-failed attempt: the
// offending card is revealed and a penalty card drawn. A bad position or a
// closed window is a plain rejection.
type TossInCommand struct {
	PlayerID uuid.UUID
	Position int
}

func (c *TossInCommand) Type() CommandType { return CmdTossIn }
func (c *TossInCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *TossInCommand) payload() any      { return positionPayload{Position: c.Position} }
func (c *TossInCommand) Describe() string {
	return fmt.Sprintf("toss in card at position %d", c.Position)
}

func (c *TossInCommand) Execute(g *Game) error {
	if g.toss == nil || !g.toss.Open {
		return Reject("the toss-in window is not open")
	}
	p := g.playerByID(c.PlayerID)
	if p == nil {
		return Reject("unknown player %s", c.PlayerID)
	}
	cd, ok := p.CardAt(c.Position)
	if !ok {
		return Reject("position %d out of range", c.Position)
	}

	if !card.CanTossIn(cd.Rank, g.toss.Rank) {
		p.TemporarilyVisible[c.Position] = true
		g.penaltyDrawLocked(p)
		g.toss.Attempts = append(g.toss.Attempts, TossAttempt{
			PlayerID: p.ID,
			Position: c.Position,
			Card:     cd,
			Success:  false,
			Reason:   fmt.Sprintf("rank %s does not match %s", cd.Rank, g.toss.Rank),
		})
		g.log.WithFields(logrus.Fields{
			"player": p.Name, "rank": cd.Rank, "want": g.toss.Rank,
		}).Info("toss-in attempt penalized")
		return nil
	}

	p.RemoveAt(c.Position)
	g.forgetRemoved(p.ID, c.Position)
	if cd.HasAction() {
		g.toss.Queue = append(g.toss.Queue, TossEntry{PlayerID: p.ID, Card: cd})
	} else {
		g.deck.Discard(cd)
	}
	g.toss.Attempts = append(g.toss.Attempts, TossAttempt{
		PlayerID: p.ID,
		Position: c.Position,
		Card:     cd,
		Success:  true,
	})
	return nil
}

// CloseTossWindowCommand closes the window to new attempts. Queued catches
// are resolved afterwards, one BEGIN_QUEUED_ACTION at a time.
type CloseTossWindowCommand struct{}

func (c *CloseTossWindowCommand) Type() CommandType { return CmdCloseTossWindow }
func (c *CloseTossWindowCommand) Actor() uuid.UUID  { return uuid.Nil }
func (c *CloseTossWindowCommand) payload() any      { return emptyPayload{} }
func (c *CloseTossWindowCommand) Describe() string  { return "close the toss-in window" }

func (c *CloseTossWindowCommand) Execute(g *Game) error {
	if g.toss == nil {
		return Reject("no toss-in window this turn")
	}
	if !g.toss.Open {
		return Reject("the toss-in window is already closed")
	}
	g.toss.Open = false
	if len(g.toss.Queue) == 0 && g.pending == nil {
		g.sub = SubIdle
	}
	return nil
}

// BeginQueuedActionCommand pops the head toss-in catch and begins resolving
// its action. Strictly FIFO: submission order during the window, regardless
// of turn order.
type BeginQueuedActionCommand struct{}

func (c *BeginQueuedActionCommand) Type() CommandType { return CmdBeginQueuedAction }
func (c *BeginQueuedActionCommand) Actor() uuid.UUID  { return uuid.Nil }
func (c *BeginQueuedActionCommand) payload() any      { return emptyPayload{} }
func (c *BeginQueuedActionCommand) Describe() string  { return "begin next queued toss-in action" }

func (c *BeginQueuedActionCommand) Execute(g *Game) error {
	if g.toss == nil || g.toss.Open {
		return Reject("the toss-in window must be closed first")
	}
	if g.pending != nil {
		return Reject("an action is still resolving")
	}
	if len(g.toss.Queue) == 0 {
		return Reject("the toss-in queue is empty")
	}
	entry := g.toss.Queue[0]
	g.toss.Queue = g.toss.Queue[1:]
	return g.beginPendingActionLocked(entry.PlayerID, entry.Card, true, false)
}

// ---------------------------------------------------------------------------
// CALL_VINTO / ADVANCE_TURN
// ---------------------------------------------------------------------------

// CallVintoCommand ends the round: the caller is marked, every other player
// joins one coalition with a leader, and the final-turn sequence begins.
type CallVintoCommand struct {
	PlayerID uuid.UUID
}

func (c *CallVintoCommand) Type() CommandType { return CmdCallVinto }
func (c *CallVintoCommand) Actor() uuid.UUID  { return c.PlayerID }
func (c *CallVintoCommand) payload() any      { return emptyPayload{} }
func (c *CallVintoCommand) Describe() string  { return "call Vinto" }

func (c *CallVintoCommand) Execute(g *Game) error {
	if g.phase != PhasePlaying {
		return Reject("game is not in play")
	}
	if g.sub != SubIdle && g.sub != SubAIThinking {
		return Reject("Vinto may only be called at the start of your turn")
	}
	if g.players[g.turn].ID != c.PlayerID {
		return Reject("it is not your turn")
	}
	if g.vintoCallerID != uuid.Nil {
		return Reject("Vinto has already been called")
	}
	g.formCoalitionLocked(c.PlayerID)
	g.advanceTurnLocked()
	return nil
}

// AdvanceTurnCommand rotates the turn pointer after the toss-in queue has
// drained, entering scoring when the pointer returns to the Vinto caller.
type AdvanceTurnCommand struct{}

func (c *AdvanceTurnCommand) Type() CommandType { return CmdAdvanceTurn }
func (c *AdvanceTurnCommand) Actor() uuid.UUID  { return uuid.Nil }
func (c *AdvanceTurnCommand) payload() any      { return emptyPayload{} }
func (c *AdvanceTurnCommand) Describe() string  { return "advance to the next turn" }

func (c *AdvanceTurnCommand) Execute(g *Game) error {
	if g.phase != PhasePlaying {
		return Reject("game is not in play")
	}
	if g.pending != nil {
		return Reject("an action is still resolving")
	}
	if g.drawn != nil {
		return Reject("the drawn card has not been placed")
	}
	if g.toss != nil && (g.toss.Open || len(g.toss.Queue) > 0) {
		return Reject("the toss-in window has not finished")
	}
	g.advanceTurnLocked()
	return nil
}

// advanceTurnLocked moves the turn pointer and checks the endgame gate.
func (g *Game) advanceTurnLocked() {
	g.toss = nil
	g.turnCount++
	g.turn = g.nextSeat(g.turn)
	for _, p := range g.players {
		p.TemporarilyVisible = make(map[int]bool)
	}
	if g.finalTurn && g.players[g.turn].ID == g.vintoCallerID {
		g.enterScoringLocked()
		return
	}
	g.sub = SubIdle
}

// penaltyDrawLocked draws the configured penalty count into p's row. When
// both piles are exhausted the penalty simply fizzles.
func (g *Game) penaltyDrawLocked(p *Player) int {
	drawn := 0
	for i := 0; i < g.rules.PenaltyDrawCount; i++ {
		c, ok := g.deck.Draw()
		if !ok {
			break
		}
		p.AddCard(c)
		drawn++
	}
	return drawn
}

// openTossWindowLocked opens the reaction window against the current discard
// top. Every turn's primary action ends with a discard, so a top always
// exists; with no top there is nothing to match and the window stays shut.
func (g *Game) openTossWindowLocked() {
	top, ok := g.deck.PeekDiscard()
	if !ok {
		g.sub = SubIdle
		return
	}
	g.toss = &TossState{Open: true, Rank: top.Rank}
	g.sub = SubTossQueueActive
}
