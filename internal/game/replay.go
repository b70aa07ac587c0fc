package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SerializedGameState is the save format: the full successful command
// history, starting with INITIALIZE_GAME. Replaying it reproduces the
// session exactly; driver loops (bot turns, queue drains) are not recorded
// because their effects already are.
type SerializedGameState struct {
	Commands []Data `json:"commands"`
}

// Serialize exports the successful command history for saving.
func (g *Game) Serialize() SerializedGameState {
	return SerializedGameState{Commands: g.history.Successful()}
}

// ReplayReport summarizes a bulk load.
type ReplayReport struct {
	Successful int
	Failed     int
	Errors     []error
}

// Load rebuilds a game from a serialized history in one pass. Individual
// command failures are recorded and skipped, never fatal, mirroring the
// live executor's failure policy.
func Load(logger *logrus.Logger, s SerializedGameState) (*Game, ReplayReport, error) {
	r, err := NewReplayer(logger, s)
	if err != nil {
		return nil, ReplayReport{}, err
	}
	var report ReplayReport
	for !r.Done() {
		if err := r.Step(); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, err)
			r.Skip()
			continue
		}
		report.Successful++
	}
	return r.Game(), report, nil
}

// Replayer re-executes a serialized history one command at a time, for
// inspection or stepping UIs.
type Replayer struct {
	game     *Game
	commands []Data
	next     int
}

// NewReplayer validates the history shape and prepares a fresh game. The
// first step must be the INITIALIZE_GAME record.
func NewReplayer(logger *logrus.Logger, s SerializedGameState) (*Replayer, error) {
	if len(s.Commands) == 0 {
		return nil, fmt.Errorf("serialized state holds no commands")
	}
	if s.Commands[0].Type != CmdInitializeGame {
		return nil, fmt.Errorf("serialized state must start with %s, got %s",
			CmdInitializeGame, s.Commands[0].Type)
	}
	return &Replayer{game: New(logger), commands: s.Commands}, nil
}

// Game returns the game being rebuilt.
func (r *Replayer) Game() *Game { return r.game }

// Done reports whether every recorded command has been applied.
func (r *Replayer) Done() bool { return r.next >= len(r.commands) }

// Remaining returns how many commands are still to be applied.
func (r *Replayer) Remaining() int { return len(r.commands) - r.next }

// Step applies the next recorded command. On failure the cursor stays on
// the failing record, so the operator can inspect the state and either
// retry or Skip past it.
func (r *Replayer) Step() error {
	if r.Done() {
		return fmt.Errorf("replay already finished")
	}
	d := r.commands[r.next]
	cmd, err := Rebuild(d)
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", d.Type, err)
	}
	if err := r.game.Do(cmd); err != nil {
		return err
	}
	r.next++
	return nil
}

// Skip abandons the record the cursor is on without executing it.
func (r *Replayer) Skip() {
	if !r.Done() {
		r.next++
	}
}
