package game

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ScoreResult is the round outcome computed when play ends.
type ScoreResult struct {
	// Scores holds each player's raw hand total.
	Scores map[uuid.UUID]int `json:"scores"`
	// AdjustedScores applies the coalition rule: every coalition member
	// shares the lowest score among the members.
	AdjustedScores map[uuid.UUID]int `json:"adjustedScores"`
	WinnerIDs      []uuid.UUID       `json:"winnerIds"`
	CallerID       uuid.UUID         `json:"callerId"`
	CallerWon      bool              `json:"callerWon"`
}

// formCoalitionLocked marks the caller and unites everyone else against
// them. The leader steers coalition bots through the final turn; a human
// member is preferred, otherwise the first bot after the caller in turn
// order.
func (g *Game) formCoalitionLocked(callerID uuid.UUID) {
	g.vintoCallerID = callerID
	g.finalTurn = true

	var members []*Player
	for _, p := range g.players {
		p.CoalitionWith = make(map[uuid.UUID]bool)
		p.IsVintoCaller = p.ID == callerID
		if !p.IsVintoCaller {
			members = append(members, p)
		}
	}
	for _, a := range members {
		for _, b := range members {
			if a.ID != b.ID {
				a.CoalitionWith[b.ID] = true
			}
		}
	}

	g.leaderID = uuid.Nil
	callerSeat := g.seatOf(callerID)
	for i := 1; i < len(g.players); i++ {
		p := g.players[(callerSeat+i)%len(g.players)]
		if p.IsHuman() {
			g.leaderID = p.ID
			break
		}
	}
	if g.leaderID == uuid.Nil {
		for i := 1; i < len(g.players); i++ {
			p := g.players[(callerSeat+i)%len(g.players)]
			if p.ID != callerID {
				g.leaderID = p.ID
				break
			}
		}
	}

	g.log.WithFields(logrus.Fields{
		"caller": callerID,
		"leader": g.leaderID,
	}).Info("vinto called, coalition formed")
}

// enterScoringLocked closes the round and computes the result.
func (g *Game) enterScoringLocked() {
	g.phase = PhaseScoring
	g.sub = SubIdle
	for _, p := range g.players {
		for pos := range p.Cards {
			p.TemporarilyVisible[pos] = true
		}
	}
	g.result = g.computeScoresLocked()
	g.log.WithFields(logrus.Fields{
		"scores":    g.result.Scores,
		"callerWon": g.result.CallerWon,
	}).Info("round scored")
}

// computeScoresLocked totals every hand and applies the coalition share.
// The caller wins only with the strict lowest adjusted score; any tie goes
// to the coalition.
func (g *Game) computeScoresLocked() *ScoreResult {
	r := &ScoreResult{
		Scores:         make(map[uuid.UUID]int, len(g.players)),
		AdjustedScores: make(map[uuid.UUID]int, len(g.players)),
		CallerID:       g.vintoCallerID,
	}
	for _, p := range g.players {
		r.Scores[p.ID] = p.Score()
		r.AdjustedScores[p.ID] = r.Scores[p.ID]
	}

	if g.vintoCallerID != uuid.Nil {
		best := -1
		for _, p := range g.players {
			if p.ID == g.vintoCallerID {
				continue
			}
			if best < 0 || r.Scores[p.ID] < best {
				best = r.Scores[p.ID]
			}
		}
		for _, p := range g.players {
			if p.ID != g.vintoCallerID {
				r.AdjustedScores[p.ID] = best
			}
		}
		r.CallerWon = r.Scores[g.vintoCallerID] < best
	}

	lowest := -1
	for _, p := range g.players {
		s := r.AdjustedScores[p.ID]
		if lowest < 0 || s < lowest {
			lowest = s
		}
	}
	if g.vintoCallerID != uuid.Nil && !r.CallerWon {
		// On a tie or loss the coalition takes the round outright.
		for _, p := range g.players {
			if p.ID != g.vintoCallerID {
				r.WinnerIDs = append(r.WinnerIDs, p.ID)
			}
		}
		return r
	}
	for _, p := range g.players {
		if r.AdjustedScores[p.ID] == lowest {
			r.WinnerIDs = append(r.WinnerIDs, p.ID)
		}
	}
	return r
}
