package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result records one executed command: its serialized form, the outcome, and
// the captured error when execution failed.
type Result struct {
	Data      Data      `json:"command"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// History is the append-only command log and the serialized executor.
// Commands run strictly one at a time: a new command may only begin after the
// previous one settles, which gives the engine linear, replayable ordering.
// A failing or panicking command is recorded as a failed result and never
// corrupts the log.
//
// The full session history is retained (no trimming); save/replay depends on
// it. "What happened this turn" views use the turn-boundary marker instead of
// discarding older entries.
type History struct {
	mu        sync.Mutex
	entries   []Result
	turnStart int
}

// NewHistory creates an empty history.
func NewHistory() *History { return &History{} }

// run encodes and executes cmd against g, appending the result. Panics are
// recovered and stored as failed results. Callers must already hold the
// game lock; the history lock only serializes log access.
func (h *History) run(g *Game, cmd Command) (Result, error) {
	data, encErr := Encode(cmd)
	if encErr != nil {
		data = Data{Type: cmd.Type(), Timestamp: time.Now(), PlayerID: cmd.Actor()}
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("command %s panicked: %v", cmd.Type(), r)
			}
		}()
		err = cmd.Execute(g)
	}()
	if err == nil && encErr != nil {
		err = encErr
	}

	res := Result{Data: data, Success: err == nil, Timestamp: time.Now()}
	if err != nil {
		res.Error = err.Error()
	}

	h.mu.Lock()
	h.entries = append(h.entries, res)
	h.mu.Unlock()
	return res, err
}

// Len returns the number of recorded results.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the full log.
func (h *History) Entries() []Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Result, len(h.entries))
	copy(out, h.entries)
	return out
}

// ForPlayer returns the log filtered to commands issued by one player.
func (h *History) ForPlayer(playerID uuid.UUID) []Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Result
	for _, e := range h.entries {
		if e.Data.PlayerID == playerID {
			out = append(out, e)
		}
	}
	return out
}

// Stats returns command counts per type.
func (h *History) Stats() map[CommandType]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[CommandType]int)
	for _, e := range h.entries {
		out[e.Data.Type]++
	}
	return out
}

// Successful returns the serialized subset used for save/replay: every
// successful command, in order.
func (h *History) Successful() []Data {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Data
	for _, e := range h.entries {
		if e.Success {
			out = append(out, e.Data)
		}
	}
	return out
}

// MarkTurnStart records the index at which the current turn's visible action
// list begins.
func (h *History) MarkTurnStart() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turnStart = len(h.entries)
}

// SinceTurnStart returns the results recorded since the last turn boundary.
func (h *History) SinceTurnStart() []Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Result, len(h.entries)-h.turnStart)
	copy(out, h.entries[h.turnStart:])
	return out
}
