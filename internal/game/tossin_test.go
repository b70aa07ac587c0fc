package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// openWindow drives player 0 through a draw-and-discard turn so a toss-in
// window is open against the discarded rank.
func openWindow(t *testing.T, g *Game) card.Rank {
	t.Helper()
	id := g.Players()[0].ID
	require.NoError(t, g.Do(&DrawCardCommand{PlayerID: id}))
	require.NoError(t, g.Do(&DiscardDrawnCommand{PlayerID: id}))
	w := g.TossWindow()
	require.NotNil(t, w)
	require.True(t, w.Open)
	return w.Rank
}

func TestTossInMatchingCard(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Five, card.Eight, card.Nine},
		},
		[]card.Rank{card.Five, card.Ten},
		nil,
	)
	rank := openWindow(t, g)
	require.Equal(t, card.Five, rank)

	// An actionless match goes straight to the discard pile.
	require.NoError(t, g.Do(&TossInCommand{PlayerID: ids[1], Position: 1}))
	assert.Equal(t, 3, g.Players()[1].HandSize())
	top, _ := g.Deck().PeekDiscard()
	assert.Equal(t, card.Five, top.Rank)
	assert.Empty(t, g.TossWindow().Queue)

	attempts := g.TossWindow().Attempts
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
	assert.Equal(t, g.TotalCards(), g.CardCount())
}

func TestTossInMismatchPenalty(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Five, card.Ten},
		nil,
	)
	openWindow(t, g)

	// The mismatch is a recorded failure, not a rejection.
	require.NoError(t, g.Do(&TossInCommand{PlayerID: ids[1], Position: 0}))
	p := g.Players()[1]
	assert.Equal(t, 5, p.HandSize(), "the mismatched card stays and a penalty joins it")
	assert.Equal(t, card.Six, p.Cards[0].Rank)
	assert.True(t, p.TemporarilyVisible[0], "the offending card is revealed")

	attempts := g.TossWindow().Attempts
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
	assert.NotEmpty(t, attempts[0].Reason)
	assert.Equal(t, g.TotalCards(), g.CardCount())
}

func TestTossInBadPositionRejected(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Five, card.Ten},
		nil,
	)
	openWindow(t, g)
	assert.True(t, IsRejection(g.Do(&TossInCommand{PlayerID: ids[1], Position: 9})))
	assert.Equal(t, 4, g.Players()[1].HandSize(), "a rejection costs nothing")
}

func TestTossInClosedWindowRejected(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Five, card.Eight, card.Nine},
		},
		[]card.Rank{card.Five, card.Ten},
		nil,
	)
	openWindow(t, g)
	require.NoError(t, g.Do(&CloseTossWindowCommand{}))
	assert.True(t, IsRejection(g.Do(&TossInCommand{PlayerID: ids[1], Position: 1})))
}

// TestTossQueueFIFO verifies queued action catches resolve in submission
// order, not turn order.
func TestTossQueueFIFO(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Seven, card.Six, card.Eight, card.Nine},
			{card.Seven, card.Ten, card.Jack, card.Four},
		},
		[]card.Rank{card.Seven, card.Ten},
		nil,
	)
	openWindow(t, g)

	// Player 2 tosses first, then player 1 — against turn order.
	require.NoError(t, g.Do(&TossInCommand{PlayerID: ids[2], Position: 0}))
	require.NoError(t, g.Do(&TossInCommand{PlayerID: ids[1], Position: 0}))

	w := g.TossWindow()
	require.Len(t, w.Queue, 2)
	assert.Equal(t, ids[2], w.Queue[0].PlayerID)
	assert.Equal(t, ids[1], w.Queue[1].PlayerID)

	require.NoError(t, g.Do(&CloseTossWindowCommand{}))

	// Head of the queue resolves first.
	require.NoError(t, g.Do(&BeginQueuedActionCommand{}))
	p := g.Pending()
	require.NotNil(t, p)
	assert.Equal(t, ids[2], p.ActorID)
	assert.True(t, p.FromTossQueue)

	require.NoError(t, g.Do(&SelectActionTargetCommand{
		PlayerID: ids[2],
		Target:   TargetRef{PlayerID: ids[2], Position: 0},
	}))
	assert.Nil(t, g.Pending())
	// The queued card reaches the discard pile spent.
	top, _ := g.Deck().PeekDiscard()
	assert.Equal(t, card.Seven, top.Rank)
	assert.True(t, top.Played)

	require.NoError(t, g.Do(&BeginQueuedActionCommand{}))
	require.NotNil(t, g.Pending())
	assert.Equal(t, ids[1], g.Pending().ActorID)
	require.NoError(t, g.Do(&SkipActionCommand{PlayerID: ids[1]}))

	// Queue drained; the turn can advance.
	assert.True(t, IsRejection(g.Do(&BeginQueuedActionCommand{})))
	require.NoError(t, g.Do(&AdvanceTurnCommand{}))
	assert.Equal(t, ids[1], g.TurnPlayer().ID)
	assert.Equal(t, g.TotalCards(), g.CardCount())
}

func TestQueuedActionOpensNoNestedWindow(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Seven, card.Six, card.Eight, card.Nine},
		},
		[]card.Rank{card.Seven, card.Ten},
		nil,
	)
	openWindow(t, g)
	require.NoError(t, g.Do(&TossInCommand{PlayerID: ids[1], Position: 0}))
	require.NoError(t, g.Do(&CloseTossWindowCommand{}))
	require.NoError(t, g.Do(&BeginQueuedActionCommand{}))
	require.NoError(t, g.Do(&SkipActionCommand{PlayerID: ids[1]}))

	w := g.TossWindow()
	require.NotNil(t, w)
	assert.False(t, w.Open, "a queued resolution never reopens the window")
	require.NoError(t, g.Do(&AdvanceTurnCommand{}))
}

// TestConservationDuringQueuedResolution checks the card count while a
// queued catch sits in the pending action, between leaving the queue and
// reaching the discard pile.
func TestConservationDuringQueuedResolution(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Seven, card.Six, card.Eight, card.Nine},
		},
		[]card.Rank{card.Seven, card.Ten},
		nil,
	)
	openWindow(t, g)
	require.NoError(t, g.Do(&TossInCommand{PlayerID: ids[1], Position: 0}))
	require.NoError(t, g.Do(&CloseTossWindowCommand{}))
	assert.Equal(t, g.TotalCards(), g.CardCount(), "catch waiting in the queue")

	require.NoError(t, g.Do(&BeginQueuedActionCommand{}))
	require.NotNil(t, g.Pending())
	assert.Equal(t, g.TotalCards(), g.CardCount(), "catch resolving out of the queue")

	require.NoError(t, g.Do(&SelectActionTargetCommand{
		PlayerID: ids[1],
		Target:   TargetRef{PlayerID: ids[1], Position: 0},
	}))
	assert.Nil(t, g.Pending())
	assert.Equal(t, g.TotalCards(), g.CardCount(), "catch discarded after resolution")
}

func TestAdvanceBlockedByOpenWindowOrQueue(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Seven, card.Six, card.Eight, card.Nine},
		},
		[]card.Rank{card.Seven, card.Ten},
		nil,
	)
	openWindow(t, g)
	assert.True(t, IsRejection(g.Do(&AdvanceTurnCommand{})), "open window blocks advancing")

	require.NoError(t, g.Do(&TossInCommand{PlayerID: ids[1], Position: 0}))
	require.NoError(t, g.Do(&CloseTossWindowCommand{}))
	assert.True(t, IsRejection(g.Do(&AdvanceTurnCommand{})), "a queued catch blocks advancing")
}

// TestBotTossSelection verifies the preference order: unknown over known,
// then lower position.
func TestBotTossSelection(t *testing.T) {
	g := New(testLogger())
	p := newPlayer(PlayerSpec{ID: uuid.New(), Name: "bot", IsBot: true})
	p.Cards = []card.Card{card.New(card.Four), card.New(card.Two), card.New(card.Four)}
	p.Known[0] = true
	g.players = []*Player{p}

	pos, ok := g.selectBotTossPosition(p, card.Four)
	require.True(t, ok)
	assert.Equal(t, 2, pos, "the unknown matching card wins over the known one")

	// A remembered sighting counts the same as a setup peek.
	g.learn(p.ID, p.ID, 2, p.Cards[2])
	pos, ok = g.selectBotTossPosition(p, card.Four)
	require.True(t, ok)
	assert.Equal(t, 0, pos, "with both matches known, the lower position wins")

	_, ok = g.selectBotTossPosition(p, card.King)
	assert.False(t, ok, "no matching card, no toss")
}

func TestEvaluateBotTossesOnce(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Five, card.Six, card.Eight, card.Nine},
		},
		[]card.Rank{card.Five, card.Ten},
		[]bool{false, true},
	)
	g.RegisterDecider(ids[1], alwaysTosser{})

	// Let the bot see its own hand so the decider participates.
	g.mu.Lock()
	for pos, c := range g.players[1].Cards {
		g.learn(ids[1], ids[1], pos, c)
	}
	g.mu.Unlock()

	openWindow(t, g)
	g.EvaluateBotTosses()
	assert.Equal(t, 3, g.Players()[1].HandSize(), "the bot tossed its matching five")

	// A second evaluation of the same window is a no-op.
	g.EvaluateBotTosses()
	assert.Equal(t, 3, g.Players()[1].HandSize())
}

// alwaysTosser participates in every toss window and otherwise plays inert.
type alwaysTosser struct{}

func (alwaysTosser) DecideTurnAction(*DecisionContext) TurnChoice { return ChoiceDraw }
func (alwaysTosser) ShouldUseAction(card.Card, *DecisionContext) bool {
	return false
}
func (alwaysTosser) SelectBestSwapPosition(card.Card, *DecisionContext) (int, bool) {
	return 0, true
}
func (alwaysTosser) ShouldParticipateInTossIn(card.Rank, *DecisionContext) bool { return true }
func (alwaysTosser) ShouldCallVinto(*DecisionContext) bool                      { return false }
