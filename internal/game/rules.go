package game

import "time"

// Rules holds the configurable game parameters.
type Rules struct {
	CardsPerPlayer   int
	SetupPeekCount   int
	PenaltyDrawCount int

	// BotThinkDelay is the scheduled pause before a bot turn is played.
	// Pure pacing: the decision itself is computed synchronously when
	// requested. Zero disables the pause.
	BotThinkDelay time.Duration
}

// DefaultRules returns the standard Vinto rules.
func DefaultRules() Rules {
	return Rules{
		CardsPerPlayer:   4,
		SetupPeekCount:   2,
		PenaltyDrawCount: 1,
		BotThinkDelay:    0,
	}
}
