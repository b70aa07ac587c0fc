// Package game implements the Vinto game engine: the turn/phase state
// machine, the special-action resolution engine, the toss-in reaction window
// with its ordered action queue, and the command-based execution, history and
// replay subsystem.
//
// All model mutation flows through the command executor; a command's Execute
// is the only place the deck or a player's row changes, and the executor
// guarantees at most one in-flight command, so independent reaction sources
// (toss-in attempts from several players) are ordered by submission, never
// raced.
package game

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// Game is one engine instance, owned by the caller. There is no ambient
// global state; every mutation entry point operates on the explicit Game.
type Game struct {
	ID uuid.UUID

	mu  sync.Mutex
	log *logrus.Entry

	rules   Rules
	deck    *card.Deck
	players []*Player
	history *History

	phase Phase
	sub   SubPhase

	turn      int // index of the turn player
	turnCount int

	// Drawn-card holding area: the card taken this turn, not yet swapped or
	// discarded. Counted by CardCount while in flight.
	drawn            *card.Card
	drawnFromDiscard bool
	swapPos          int

	pending *PendingAction
	toss    *TossState

	vintoCallerID uuid.UUID
	leaderID      uuid.UUID
	finalTurn     bool
	result        *ScoreResult

	totalCards int
	setupPeeks map[uuid.UUID]int

	// knowledge[viewer][owner][position] — what each player has seen and can
	// still rely on. Feeds the bot decision context.
	knowledge map[uuid.UUID]map[uuid.UUID]map[int]card.Card

	deciders map[uuid.UUID]Decider

	subscribers []func(StateChange)
	settleFn    func(StateChange)
}

// New creates an empty engine shell. A game begins with Initialize (new
// session) or by replaying a serialized command log.
func New(logger *logrus.Logger) *Game {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	id := uuid.New()
	return &Game{
		ID:         id,
		log:        logger.WithField("game_id", id),
		rules:      DefaultRules(),
		history:    NewHistory(),
		swapPos:    -1,
		setupPeeks: make(map[uuid.UUID]int),
		knowledge:  make(map[uuid.UUID]map[uuid.UUID]map[int]card.Card),
		deciders:   make(map[uuid.UUID]Decider),
	}
}

// SetRules replaces the rule set. Only meaningful before Initialize.
func (g *Game) SetRules(r Rules) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = r
}

// Initialize shuffles a fresh deck with the given seed and starts a new
// session for the listed players. The full shuffled order is embedded in the
// INITIALIZE_GAME command so a replay reproduces the deck exactly instead of
// re-shuffling.
func (g *Game) Initialize(seed uint64, specs []PlayerSpec) error {
	deck := card.NewStandardDeck(rand.New(rand.NewPCG(seed, deckStreamSalt)))
	cmd := &InitializeGameCommand{initializeGamePayload: initializeGamePayload{
		Seed:    seed,
		Players: specs,
		Deck:    deck.DrawOrder(),
	}}
	if err := g.Do(cmd); err != nil {
		return err
	}
	g.history.MarkTurnStart()
	return nil
}

const deckStreamSalt = 0x76696e746f // reshuffle RNG stream tag

// Do executes one command through the serialized executor, appends it to
// history, and notifies state-change subscribers with the (before, after,
// command) triple. Errors are returned to the caller and recorded; they never
// halt the session.
func (g *Game) Do(cmd Command) error {
	g.mu.Lock()
	before := g.snapshotLocked()
	res, err := g.history.run(g, cmd)
	after := g.snapshotLocked()
	subs := make([]func(StateChange), len(g.subscribers))
	copy(subs, g.subscribers)
	settle := g.settleFn
	g.mu.Unlock()

	entry := g.log.WithFields(logrus.Fields{
		"command": cmd.Type(),
		"player":  cmd.Actor(),
	})
	switch {
	case err == nil:
		entry.Debug(cmd.Describe())
	case IsRejection(err):
		entry.WithField("reason", err.Error()).Info("command rejected")
	default:
		entry.WithError(err).Error("command failed")
	}

	change := StateChange{Before: before, After: after, Command: res.Data}
	for _, fn := range subs {
		fn(change)
	}
	if err == nil && settle != nil {
		// Optional pacing hook ("visual settle"). Engine correctness never
		// depends on it.
		settle(change)
	}
	return err
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Phase returns the current lifecycle phase.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// SubPhase returns the current playing subphase.
func (g *Game) SubPhase() SubPhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sub
}

// History returns the command history.
func (g *Game) History() *History { return g.history }

// Players returns the seats in turn order.
func (g *Game) Players() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// TurnPlayer returns the player whose turn it is.
func (g *Game) TurnPlayer() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return nil
	}
	return g.players[g.turn]
}

// Pending returns the live pending action, or nil.
func (g *Game) Pending() *PendingAction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// TossWindow returns the toss-in state, or nil when no window has opened
// this turn.
func (g *Game) TossWindow() *TossState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.toss
}

// Drawn returns the card currently held in the drawn slot, if any.
func (g *Game) Drawn() (card.Card, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.drawn == nil {
		return card.Card{}, false
	}
	return *g.drawn, true
}

// Deck returns the deck model. Read-only use; mutation outside commands
// violates the engine's concurrency contract.
func (g *Game) Deck() *card.Deck { return g.deck }

// VintoCaller returns the Vinto caller's ID, or uuid.Nil.
func (g *Game) VintoCaller() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vintoCallerID
}

// CoalitionLeader returns the coalition leader's ID, or uuid.Nil.
func (g *Game) CoalitionLeader() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.leaderID
}

// Result returns the final scores once the scoring phase is reached.
func (g *Game) Result() *ScoreResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// CardCount sums every card the engine tracks: both piles, every row, the
// drawn slot, queued toss-in catches, and a queued catch mid-resolution.
// Always equals the total deck size; the conservation invariant the tests
// assert at every observable boundary.
func (g *Game) CardCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cardCountLocked()
}

func (g *Game) cardCountLocked() int {
	n := 0
	if g.deck != nil {
		n += g.deck.Size()
	}
	for _, p := range g.players {
		n += len(p.Cards)
	}
	if g.drawn != nil {
		n++
	}
	if g.toss != nil {
		n += len(g.toss.Queue)
	}
	// A catch popped from the queue lives in the pending action until its
	// card is discarded at resolution. Turn-played actions discard at play
	// time, so only the queued path holds a card here.
	if g.pending != nil && g.pending.FromTossQueue {
		n++
	}
	return n
}

// TotalCards returns the deck size recorded at initialization.
func (g *Game) TotalCards() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.totalCards
}

// ---------------------------------------------------------------------------
// Internal lookups (lock held)
// ---------------------------------------------------------------------------

func (g *Game) playerByID(id uuid.UUID) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) seatOf(id uuid.UUID) int {
	for i, p := range g.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (g *Game) nextSeat(seat int) int {
	return (seat + 1) % len(g.players)
}

// ---------------------------------------------------------------------------
// Knowledge tracking
// ---------------------------------------------------------------------------

// learn records that viewer has seen owner's card at pos.
func (g *Game) learn(viewer, owner uuid.UUID, pos int, c card.Card) {
	m, ok := g.knowledge[viewer]
	if !ok {
		m = make(map[uuid.UUID]map[int]card.Card)
		g.knowledge[viewer] = m
	}
	slots, ok := m[owner]
	if !ok {
		slots = make(map[int]card.Card)
		m[owner] = slots
	}
	slots[pos] = c
}

// forgetSlot invalidates every viewer's knowledge of owner's slot.
func (g *Game) forgetSlot(owner uuid.UUID, pos int) {
	for _, m := range g.knowledge {
		delete(m[owner], pos)
	}
}

// forgetRemoved re-indexes every viewer's knowledge of owner after the card
// at removed left the row.
func (g *Game) forgetRemoved(owner uuid.UUID, removed int) {
	for _, m := range g.knowledge {
		slots := m[owner]
		if slots == nil {
			continue
		}
		shifted := make(map[int]card.Card, len(slots))
		for pos, c := range slots {
			switch {
			case pos < removed:
				shifted[pos] = c
			case pos > removed:
				shifted[pos-1] = c
			}
		}
		m[owner] = shifted
	}
}

// knownToOwner reports whether the owner can currently identify the card at
// pos, via setup peeks or remembered sightings.
func (g *Game) knownToOwner(p *Player, pos int) bool {
	if p.Known[pos] {
		return true
	}
	if m := g.knowledge[p.ID]; m != nil {
		if _, ok := m[p.ID][pos]; ok {
			return true
		}
	}
	return false
}
