package game

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// Snapshot is a lightweight view of observable engine state, captured before
// and after every command so presentation layers can derive what to animate.
type Snapshot struct {
	Phase           Phase              `json:"phase"`
	SubPhase        SubPhase           `json:"subPhase"`
	TurnPlayerID    uuid.UUID          `json:"turnPlayerId"`
	TurnCount       int                `json:"turnCount"`
	DrawPileSize    int                `json:"drawPileSize"`
	DiscardPileSize int                `json:"discardPileSize"`
	DiscardTop      *card.Card         `json:"discardTop,omitempty"`
	HandSizes       map[uuid.UUID]int  `json:"handSizes"`
	DrawnHeld       bool               `json:"drawnHeld"`
	PendingActive   bool               `json:"pendingActive"`
	TossOpen        bool               `json:"tossOpen"`
	TossQueueLen    int                `json:"tossQueueLen"`
	VintoCallerID   uuid.UUID          `json:"vintoCallerId,omitempty"`
}

// StateChange is the (oldState, newState, action) triple exposed after each
// command. The engine never consumes anything back from subscribers; it only
// optionally awaits the settle hook for pacing.
type StateChange struct {
	Before  Snapshot
	After   Snapshot
	Command Data
}

// OnStateCommitted registers a subscriber invoked after every command,
// successful or not. This is the explicit hook a turn driver or renderer
// subscribes to.
func (g *Game) OnStateCommitted(fn func(StateChange)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subscribers = append(g.subscribers, fn)
}

// SetSettleFn installs an optional pacing hook awaited after each successful
// command before the next may begin.
func (g *Game) SetSettleFn(fn func(StateChange)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settleFn = fn
}

func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:         g.phase,
		SubPhase:      g.sub,
		TurnCount:     g.turnCount,
		HandSizes:     make(map[uuid.UUID]int, len(g.players)),
		DrawnHeld:     g.drawn != nil,
		PendingActive: g.pending != nil,
		VintoCallerID: g.vintoCallerID,
	}
	if len(g.players) > 0 {
		s.TurnPlayerID = g.players[g.turn].ID
	}
	if g.deck != nil {
		s.DrawPileSize = g.deck.DrawLen()
		s.DiscardPileSize = g.deck.DiscardLen()
		if top, ok := g.deck.PeekDiscard(); ok {
			s.DiscardTop = &top
		}
	}
	for _, p := range g.players {
		s.HandSizes[p.ID] = len(p.Cards)
	}
	if g.toss != nil {
		s.TossOpen = g.toss.Open
		s.TossQueueLen = len(g.toss.Queue)
	}
	return s
}
