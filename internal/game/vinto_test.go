package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// passTurn drives one draw-discard-advance turn for the current player.
func passTurn(t *testing.T, g *Game) {
	t.Helper()
	id := g.TurnPlayer().ID
	require.NoError(t, g.Do(&DrawCardCommand{PlayerID: id}))
	require.NoError(t, g.Do(&DiscardDrawnCommand{PlayerID: id}))
	require.NoError(t, g.Do(&CloseTossWindowCommand{}))
	require.NoError(t, g.Do(&AdvanceTurnCommand{}))
}

func TestCallVintoFormsCoalition(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
			{card.Ten, card.Jack, card.Queen, card.King},
		},
		[]card.Rank{card.Two, card.Three, card.Four, card.Five},
		[]bool{true, true, false}, // seat 2 is the human
	)
	require.NoError(t, g.Do(&CallVintoCommand{PlayerID: ids[0]}))

	players := g.Players()
	assert.Equal(t, ids[0], g.VintoCaller())
	assert.True(t, players[0].IsVintoCaller)
	assert.Empty(t, players[0].CoalitionWith, "the caller stands alone")
	assert.True(t, players[1].CoalitionWith[ids[2]])
	assert.True(t, players[2].CoalitionWith[ids[1]])
	assert.Equal(t, ids[2], g.CoalitionLeader(), "a human member is preferred as leader")

	// The caller's turn ended with the call.
	assert.Equal(t, ids[1], g.TurnPlayer().ID)
}

func TestCallVintoLeaderFallsBackToBot(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
			{card.Ten, card.Jack, card.Queen, card.King},
		},
		[]card.Rank{card.Two, card.Three},
		[]bool{true, true, true},
	)
	// Seat 1 calls; the leader is the next seat after the caller.
	passTurn(t, g)
	require.NoError(t, g.Do(&CallVintoCommand{PlayerID: ids[1]}))
	assert.Equal(t, ids[2], g.CoalitionLeader())
}

func TestCallVintoGuards(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Two, card.Three, card.Four},
		nil,
	)
	// Not your turn.
	assert.True(t, IsRejection(g.Do(&CallVintoCommand{PlayerID: ids[1]})))
	// Not after drawing.
	require.NoError(t, g.Do(&DrawCardCommand{PlayerID: ids[0]}))
	assert.True(t, IsRejection(g.Do(&CallVintoCommand{PlayerID: ids[0]})))
	require.NoError(t, g.Do(&DiscardDrawnCommand{PlayerID: ids[0]}))
	require.NoError(t, g.Do(&CloseTossWindowCommand{}))
	require.NoError(t, g.Do(&AdvanceTurnCommand{}))

	require.NoError(t, g.Do(&CallVintoCommand{PlayerID: ids[1]}))
	// Only one caller per round.
	assert.True(t, IsRejection(g.Do(&CallVintoCommand{PlayerID: ids[0]})))
}

// TestFinalTurnEndsInScoring plays the callers-opponents' last turns and
// verifies scoring fires when the pointer returns to the caller.
func TestFinalTurnEndsInScoring(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Ace, card.Two, card.Ace, card.Two}, // caller: 6 points
			{card.Six, card.Seven, card.Eight, card.Nine}, // 30 points
		},
		[]card.Rank{card.Three, card.Four, card.Five},
		nil,
	)
	require.NoError(t, g.Do(&CallVintoCommand{PlayerID: ids[0]}))
	require.Equal(t, PhasePlaying, g.Phase())

	// The lone opponent takes the final turn.
	passTurn(t, g)

	require.Equal(t, PhaseScoring, g.Phase())
	res := g.Result()
	require.NotNil(t, res)
	assert.Equal(t, ids[0], res.CallerID)
	assert.Equal(t, 6, res.Scores[ids[0]])
	assert.True(t, res.CallerWon)
	assert.ElementsMatch(t, []uuid.UUID{ids[0]}, res.WinnerIDs)
}

func TestCoalitionSharesBestScore(t *testing.T) {
	g := New(testLogger())
	ids := make([]uuid.UUID, 3)
	players := make([]*Player, 3)
	for i := range ids {
		ids[i] = uuid.New()
		players[i] = newPlayer(PlayerSpec{ID: ids[i], Name: string(rune('A' + i))})
	}
	// Caller 10, members 4 and 25.
	players[0].Cards = []card.Card{card.New(card.Ten)}
	players[1].Cards = []card.Card{card.New(card.Four)}
	players[2].Cards = []card.Card{card.New(card.King), card.New(card.Queen)}
	g.players = players

	g.formCoalitionLocked(ids[0])
	res := g.computeScoresLocked()

	assert.Equal(t, 10, res.Scores[ids[0]])
	assert.Equal(t, 4, res.AdjustedScores[ids[1]])
	assert.Equal(t, 4, res.AdjustedScores[ids[2]], "members share the lowest member score")
	assert.False(t, res.CallerWon)
	assert.ElementsMatch(t, []uuid.UUID{ids[1], ids[2]}, res.WinnerIDs)
}

func TestCallerWinsOnlyStrictlyLowest(t *testing.T) {
	g := New(testLogger())
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	caller := newPlayer(PlayerSpec{ID: ids[0], Name: "caller"})
	member := newPlayer(PlayerSpec{ID: ids[1], Name: "member"})
	caller.Cards = []card.Card{card.New(card.Five)}
	member.Cards = []card.Card{card.New(card.Five)}
	g.players = []*Player{caller, member}

	g.formCoalitionLocked(ids[0])
	res := g.computeScoresLocked()

	assert.False(t, res.CallerWon, "a tie goes to the coalition")
	assert.ElementsMatch(t, []uuid.UUID{ids[1]}, res.WinnerIDs)
}

func TestScoringRevealsAllCards(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Ace, card.Two, card.Ace, card.Two},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Three, card.Four, card.Five},
		nil,
	)
	require.NoError(t, g.Do(&CallVintoCommand{PlayerID: ids[0]}))
	passTurn(t, g)
	require.Equal(t, PhaseScoring, g.Phase())

	view := g.StateFor(ids[1])
	for _, p := range view.Players {
		for _, c := range p.Cards {
			assert.True(t, c.Known, "every card is face up at scoring")
		}
	}
}
