package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

func TestHistoryRecordsRejections(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Ten, card.Jack},
		nil,
	)
	base := g.History().Len()
	require.Error(t, g.Do(&DrawCardCommand{PlayerID: ids[1]})) // out of turn

	entries := g.History().Entries()
	require.Len(t, entries, base+1)
	rejected := entries[len(entries)-1]
	assert.False(t, rejected.Success)
	assert.NotEmpty(t, rejected.Error)
	assert.Equal(t, CmdDrawCard, rejected.Data.Type)

	// Rejections never enter the replayable history.
	for _, d := range g.History().Successful() {
		if d.Type == CmdDrawCard {
			t.Fatal("the rejected draw leaked into the successful log")
		}
	}
}

func TestHistoryForPlayerAndStats(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Ten, card.Jack},
		nil,
	)
	require.NoError(t, g.Do(&DrawCardCommand{PlayerID: ids[0]}))
	require.NoError(t, g.Do(&DiscardDrawnCommand{PlayerID: ids[0]}))

	mine := g.History().ForPlayer(ids[0])
	require.Len(t, mine, 2)
	theirs := g.History().ForPlayer(ids[1])
	assert.Empty(t, theirs)

	stats := g.History().Stats()
	assert.Equal(t, 1, stats[CmdInitializeGame])
	assert.Equal(t, 1, stats[CmdDrawCard])
	assert.Equal(t, 1, stats[CmdDiscardDrawn])
}

func TestHistoryTurnBoundary(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Ten, card.Jack},
		nil,
	)
	g.History().MarkTurnStart()
	require.NoError(t, g.Do(&DrawCardCommand{PlayerID: ids[0]}))
	require.NoError(t, g.Do(&DiscardDrawnCommand{PlayerID: ids[0]}))

	turn := g.History().SinceTurnStart()
	require.Len(t, turn, 2)
	assert.Equal(t, CmdDrawCard, turn[0].Data.Type)
	assert.Equal(t, CmdDiscardDrawn, turn[1].Data.Type)

	g.History().MarkTurnStart()
	assert.Empty(t, g.History().SinceTurnStart())
}

func TestSelectSwapPositionUndo(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Ten, card.Jack},
		nil,
	)
	require.NoError(t, g.Do(&DrawCardCommand{PlayerID: ids[0]}))
	cmd := &SelectSwapPositionCommand{PlayerID: ids[0], Position: 1}
	require.NoError(t, g.Do(cmd))
	require.Equal(t, SubDeclaringRank, g.SubPhase())

	g.mu.Lock()
	err := cmd.Undo(g)
	g.mu.Unlock()
	require.NoError(t, err)
	assert.Equal(t, SubChoosingAction, g.SubPhase())

	// The choice can be remade.
	require.NoError(t, g.Do(&SelectSwapPositionCommand{PlayerID: ids[0], Position: 3}))
	require.NoError(t, g.Do(&SwapCardCommand{PlayerID: ids[0]}))
	assert.Equal(t, card.Ten, g.Players()[0].Cards[3].Rank)
}
