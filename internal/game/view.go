package game

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// ObfCard is a card as one observer may see it. Rank and value are omitted
// unless the face is known to that observer.
type ObfCard struct {
	ID    uuid.UUID `json:"id"`
	Known bool      `json:"known"`
	Rank  card.Rank `json:"rank,omitempty"`
	Value int       `json:"value,omitempty"`
}

// ObfPlayerState is one seat's row, obfuscated for a specific observer. In
// Vinto even your own row is face down; only tracked knowledge and public
// reveals show faces.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Name          string    `json:"name"`
	IsBot         bool      `json:"isBot"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	IsVintoCaller bool      `json:"isVintoCaller"`
	InCoalition   bool      `json:"inCoalition"`
	Cards         []ObfCard `json:"cards"`
	// DrawnCard is populated only for the acting observer's own held card.
	DrawnCard *ObfCard `json:"drawnCard,omitempty"`
}

// ObfGameState is the whole table tailored to one observer's perspective.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	Phase           Phase            `json:"phase"`
	SubPhase        SubPhase         `json:"subPhase"`
	TurnPlayerID    uuid.UUID        `json:"turnPlayerId"`
	TurnCount       int              `json:"turnCount"`
	DrawPileSize    int              `json:"drawPileSize"`
	DiscardPileSize int              `json:"discardPileSize"`
	DiscardTop      *ObfCard         `json:"discardTop,omitempty"`
	Players         []ObfPlayerState `json:"players"`
	TossOpen        bool             `json:"tossOpen"`
	TossRank        card.Rank        `json:"tossRank,omitempty"`
	TossQueueLen    int              `json:"tossQueueLen"`
	VintoCallerID   uuid.UUID        `json:"vintoCallerId,omitempty"`
	LeaderID        uuid.UUID        `json:"coalitionLeaderId,omitempty"`
	Result          *ScoreResult     `json:"result,omitempty"`
}

// StateFor builds the observer-specific snapshot: the discard top is public,
// row faces show only through the observer's tracked knowledge or a public
// reveal, and the held card only to its holder.
func (g *Game) StateFor(observer uuid.UUID) ObfGameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	obf := ObfGameState{
		GameID:          g.ID,
		Phase:           g.phase,
		SubPhase:        g.sub,
		TurnCount:       g.turnCount,
		DrawPileSize:    g.deck.DrawLen(),
		DiscardPileSize: g.deck.DiscardLen(),
		VintoCallerID:   g.vintoCallerID,
		LeaderID:        g.leaderID,
		Result:          g.result,
	}
	if len(g.players) > 0 {
		obf.TurnPlayerID = g.players[g.turn].ID
	}
	if top, ok := g.deck.PeekDiscard(); ok {
		obf.DiscardTop = &ObfCard{ID: top.ID, Known: true, Rank: top.Rank, Value: top.Value()}
	}
	if g.toss != nil {
		obf.TossOpen = g.toss.Open
		obf.TossRank = g.toss.Rank
		obf.TossQueueLen = len(g.toss.Queue)
	}

	seen := g.knowledge[observer]
	obf.Players = make([]ObfPlayerState, len(g.players))
	for i, p := range g.players {
		ps := ObfPlayerState{
			PlayerID:      p.ID,
			Name:          p.Name,
			IsBot:         p.IsBot,
			IsCurrentTurn: i == g.turn && g.phase == PhasePlaying,
			IsVintoCaller: p.IsVintoCaller,
			InCoalition:   len(p.CoalitionWith) > 0,
			Cards:         make([]ObfCard, len(p.Cards)),
		}
		for pos, c := range p.Cards {
			oc := ObfCard{ID: c.ID}
			if p.TemporarilyVisible[pos] || (seen != nil && hasSeen(seen, p.ID, pos)) {
				oc.Known = true
				oc.Rank = c.Rank
				oc.Value = c.Value()
			}
			ps.Cards[pos] = oc
		}
		if p.ID == observer && g.drawn != nil && g.players[g.turn].ID == observer {
			d := *g.drawn
			ps.DrawnCard = &ObfCard{ID: d.ID, Known: true, Rank: d.Rank, Value: d.Value()}
		}
		obf.Players[i] = ps
	}
	return obf
}

func hasSeen(seen map[uuid.UUID]map[int]card.Card, owner uuid.UUID, pos int) bool {
	m, ok := seen[owner]
	if !ok {
		return false
	}
	_, ok = m[pos]
	return ok
}
