package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lonli-Lokli/vinto-engine/internal/card"
)

// scriptedDecider is a configurable stub strategy for driver tests.
type scriptedDecider struct {
	choice    TurnChoice
	useAction bool
	swapPos   int
	swapOK    bool
	tossIn    bool
	callVinto bool
}

func (s *scriptedDecider) DecideTurnAction(*DecisionContext) TurnChoice { return s.choice }
func (s *scriptedDecider) ShouldUseAction(card.Card, *DecisionContext) bool {
	return s.useAction
}
func (s *scriptedDecider) SelectBestSwapPosition(card.Card, *DecisionContext) (int, bool) {
	return s.swapPos, s.swapOK
}
func (s *scriptedDecider) ShouldParticipateInTossIn(card.Rank, *DecisionContext) bool {
	return s.tossIn
}
func (s *scriptedDecider) ShouldCallVinto(*DecisionContext) bool { return s.callVinto }

func TestPlayBotTurnSwapPath(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.King, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Two, card.Ten},
		[]bool{true, false},
	)
	g.RegisterDecider(ids[0], &scriptedDecider{choice: ChoiceDraw, swapPos: 0, swapOK: true})

	done, err := g.PlayBotTurn(ids[0])
	require.NoError(t, err)
	assert.True(t, done)

	// The drawn Two replaced the King.
	assert.Equal(t, card.Two, g.Players()[0].Cards[0].Rank)
	top, _ := g.Deck().PeekDiscard()
	assert.Equal(t, card.King, top.Rank)

	// The full turn completed: pointer moved, window cleaned up.
	assert.Equal(t, ids[1], g.TurnPlayer().ID)
	assert.Equal(t, SubIdle, g.SubPhase())
	assert.Nil(t, g.TossWindow())
	assert.Equal(t, g.TotalCards(), g.CardCount())

	// The recorded history holds only commands, never driver steps.
	stats := g.History().Stats()
	assert.Equal(t, 1, stats[CmdDrawCard])
	assert.Equal(t, 1, stats[CmdSwapCard])
	assert.Equal(t, 1, stats[CmdCloseTossWindow])
	assert.Equal(t, 1, stats[CmdAdvanceTurn])
}

func TestPlayBotTurnDiscardAndActionPath(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Seven, card.Ten},
		[]bool{true, false},
	)
	g.RegisterDecider(ids[0], &scriptedDecider{choice: ChoiceDraw, useAction: true})

	done, err := g.PlayBotTurn(ids[0])
	require.NoError(t, err)
	assert.True(t, done)

	// The drawn 7 was played and auto-targeted one of the bot's own slots.
	top, _ := g.Deck().PeekDiscard()
	assert.Equal(t, card.Seven, top.Rank)
	assert.True(t, top.Played)
	assert.NotEmpty(t, g.knowledge[ids[0]][ids[0]], "the peek landed")
	assert.Equal(t, ids[1], g.TurnPlayer().ID)
}

func TestPlayBotTurnCallsVinto(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Ace, card.Two, card.Ace, card.Two},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Ten, card.Jack},
		[]bool{true, false},
	)
	g.RegisterDecider(ids[0], &scriptedDecider{callVinto: true})

	done, err := g.PlayBotTurn(ids[0])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, ids[0], g.VintoCaller())
	assert.Equal(t, ids[1], g.TurnPlayer().ID)
}

func TestPlayBotTurnGuards(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
		},
		[]card.Rank{card.Ten, card.Jack},
		[]bool{true, false},
	)
	// Unregistered decider.
	_, err := g.PlayBotTurn(ids[0])
	assert.True(t, IsRejection(err))

	g.RegisterDecider(ids[0], &scriptedDecider{swapOK: true})
	// Not this bot's turn after it plays once.
	done, err := g.PlayBotTurn(ids[0])
	require.NoError(t, err)
	require.True(t, done)
	_, err = g.PlayBotTurn(ids[0])
	assert.True(t, IsRejection(err))
	// A human seat cannot be driven.
	_, err = g.PlayBotTurn(ids[1])
	assert.True(t, IsRejection(err))
}

// TestBotTossDuringHumanTurn verifies the window evaluation picks up bot
// catches and queues action cards for FIFO resolution.
func TestBotTossDuringHumanTurn(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Seven, card.Six, card.Eight, card.Nine},
		},
		[]card.Rank{card.Seven, card.Ten, card.Jack},
		[]bool{false, true},
	)
	g.RegisterDecider(ids[1], &scriptedDecider{tossIn: true})

	require.NoError(t, g.Do(&DrawCardCommand{PlayerID: ids[0]}))
	require.NoError(t, g.Do(&DiscardDrawnCommand{PlayerID: ids[0]}))

	done, err := g.FinishTurn()
	require.NoError(t, err)
	assert.True(t, done, "the bot's queued 7 auto-resolves")

	// The bot's Seven ended up on the discard pile, spent.
	top, _ := g.Deck().PeekDiscard()
	assert.Equal(t, card.Seven, top.Rank)
	assert.True(t, top.Played)
	assert.Equal(t, 3, g.Players()[1].HandSize())
	assert.Equal(t, ids[1], g.TurnPlayer().ID)
	assert.Equal(t, g.TotalCards(), g.CardCount())
}

func TestCoalitionLeaderSteersBots(t *testing.T) {
	g, ids := rigGame(t,
		[][]card.Rank{
			{card.Two, card.Three, card.Four, card.Five},
			{card.Six, card.Seven, card.Eight, card.Nine},
			{card.Ten, card.Jack, card.Queen, card.King},
		},
		[]card.Rank{card.Two, card.Three, card.Four},
		[]bool{true, true, false},
	)
	botOwn := &scriptedDecider{swapOK: true}
	leader := &scriptedDecider{swapOK: false} // leader prefers discarding
	g.RegisterDecider(ids[1], botOwn)

	require.NoError(t, g.Do(&CallVintoCommand{PlayerID: ids[0]}))
	require.Equal(t, ids[2], g.CoalitionLeader())
	g.RegisterDecider(ids[2], leader)

	p := g.Players()[1]
	g.mu.Lock()
	d, ok := g.effectiveDeciderLocked(p)
	g.mu.Unlock()
	require.True(t, ok)
	assert.Same(t, Decider(leader), d, "coalition bots defer to the leader during the final turn")
}
