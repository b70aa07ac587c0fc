package bot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
	"github.com/Lonli-Lokli/vinto-engine/internal/game"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// TestFullBotGame drives a complete three-bot round to scoring and then
// replays the recorded history, checking the rebuilt game matches.
func TestFullBotGame(t *testing.T) {
	g := game.New(quietLogger())
	g.SetRules(game.Rules{CardsPerPlayer: 4, SetupPeekCount: 2, PenaltyDrawCount: 1})

	specs := make([]game.PlayerSpec, 3)
	for i := range specs {
		specs[i] = game.PlayerSpec{ID: uuid.New(), Name: "bot", IsBot: true}
	}
	require.NoError(t, g.Initialize(2024, specs))
	for _, s := range specs {
		g.RegisterDecider(s.ID, NewBaseline())
	}

	for _, p := range g.Players() {
		require.NoError(t, g.Do(&game.SetupPeekCommand{PlayerID: p.ID, Positions: []int{0, 1}}))
	}
	require.NoError(t, g.Do(&game.FinishSetupCommand{}))

	for turns := 0; g.Phase() == game.PhasePlaying; turns++ {
		require.Less(t, turns, 500, "the round must terminate")

		tp := g.TurnPlayer()
		require.NotNil(t, tp)
		if turns >= 60 && g.VintoCaller() == uuid.Nil {
			// Force the endgame if nobody volunteers.
			require.NoError(t, g.Do(&game.CallVintoCommand{PlayerID: tp.ID}))
			continue
		}
		done, err := g.PlayBotTurn(tp.ID)
		require.NoError(t, err)
		require.True(t, done, "bot turns never wait for input")
		require.Equal(t, g.TotalCards(), g.CardCount(), "card conservation after every turn")
	}

	require.Equal(t, game.PhaseScoring, g.Phase())
	res := g.Result()
	require.NotNil(t, res)
	assert.NotEmpty(t, res.WinnerIDs)
	assert.Len(t, res.Scores, 3)
	assert.Equal(t, g.TotalCards(), g.CardCount())

	// The full round replays to the same end state.
	g2, report, err := game.Load(quietLogger(), g.Serialize())
	require.NoError(t, err)
	assert.Zero(t, report.Failed, "replay errors: %v", report.Errors)

	require.Equal(t, game.PhaseScoring, g2.Phase())
	res2 := g2.Result()
	require.NotNil(t, res2)
	assert.Equal(t, res.Scores, res2.Scores)
	assert.Equal(t, res.AdjustedScores, res2.AdjustedScores)
	assert.ElementsMatch(t, res.WinnerIDs, res2.WinnerIDs)
	for i, p := range g.Players() {
		assert.Equal(t, ranks(p), ranks(g2.Players()[i]))
	}
}

func ranks(p *game.Player) []card.Rank {
	out := make([]card.Rank, len(p.Cards))
	for i, c := range p.Cards {
		out[i] = c.Rank
	}
	return out
}
