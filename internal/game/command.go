package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CommandType tags a serialized command.
type CommandType string

const (
	CmdInitializeGame     CommandType = "INITIALIZE_GAME"
	CmdSetupPeek          CommandType = "SETUP_PEEK"
	CmdFinishSetup        CommandType = "FINISH_SETUP"
	CmdDrawCard           CommandType = "DRAW_CARD"
	CmdTakeDiscard        CommandType = "TAKE_DISCARD"
	CmdSelectSwapPosition CommandType = "SELECT_SWAP_POSITION"
	CmdSwapCard           CommandType = "SWAP_CARD"
	CmdDiscardDrawn       CommandType = "DISCARD_DRAWN"
	CmdPlayDrawnAction    CommandType = "PLAY_DRAWN_ACTION"
	CmdSelectActionTarget CommandType = "SELECT_ACTION_TARGET"
	CmdConfirmQueenSwap   CommandType = "CONFIRM_QUEEN_SWAP"
	CmdDeclareKingRank    CommandType = "DECLARE_KING_RANK"
	CmdSkipAction         CommandType = "SKIP_ACTION"
	CmdTossIn             CommandType = "TOSS_IN"
	CmdCloseTossWindow    CommandType = "CLOSE_TOSS_WINDOW"
	CmdBeginQueuedAction  CommandType = "BEGIN_QUEUED_ACTION"
	CmdCallVinto          CommandType = "CALL_VINTO"
	CmdAdvanceTurn        CommandType = "ADVANCE_TURN"
)

// Command is an atomic, serializable unit of engine state mutation. Execute
// performs the pure model mutation; it never blocks on user input. A nil
// error means success; a Rejection means the request was invalid; any other
// error (or panic) is an unexpected fault recorded by the history boundary.
type Command interface {
	Type() CommandType
	Actor() uuid.UUID
	Describe() string
	Execute(g *Game) error
	payload() any
}

// Undoer is implemented by commands whose mutation is cheaply invertible.
// Undo support is optional per the command contract.
type Undoer interface {
	Undo(g *Game) error
}

// Data is the JSON-safe form of a command: type tag plus a payload shape
// fixed per variant. Sufficient to reconstruct and re-execute the command.
type Data struct {
	Type      CommandType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	PlayerID  uuid.UUID       `json:"playerId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Encode serializes a command into its Data form.
func Encode(cmd Command) (Data, error) {
	raw, err := json.Marshal(cmd.payload())
	if err != nil {
		return Data{}, fmt.Errorf("encode %s: %w", cmd.Type(), err)
	}
	return Data{
		Type:      cmd.Type(),
		Timestamp: time.Now(),
		PlayerID:  cmd.Actor(),
		Payload:   raw,
	}, nil
}

// Rebuild reconstructs an executable command from its serialized form. The
// command type registry is exhaustive; an unknown type is a replay fault.
func Rebuild(d Data) (Command, error) {
	switch d.Type {
	case CmdInitializeGame:
		return decodeInto(d, func(p initializeGamePayload) Command {
			return &InitializeGameCommand{initializeGamePayload: p}
		})
	case CmdSetupPeek:
		return decodeInto(d, func(p setupPeekPayload) Command {
			return &SetupPeekCommand{PlayerID: d.PlayerID, Positions: p.Positions}
		})
	case CmdFinishSetup:
		return &FinishSetupCommand{}, nil
	case CmdDrawCard:
		return &DrawCardCommand{PlayerID: d.PlayerID}, nil
	case CmdTakeDiscard:
		return &TakeDiscardCommand{PlayerID: d.PlayerID}, nil
	case CmdSelectSwapPosition:
		return decodeInto(d, func(p positionPayload) Command {
			return &SelectSwapPositionCommand{PlayerID: d.PlayerID, Position: p.Position}
		})
	case CmdSwapCard:
		return decodeInto(d, func(p swapCardPayload) Command {
			return &SwapCardCommand{PlayerID: d.PlayerID, DeclaredRank: p.DeclaredRank}
		})
	case CmdDiscardDrawn:
		return &DiscardDrawnCommand{PlayerID: d.PlayerID}, nil
	case CmdPlayDrawnAction:
		return &PlayDrawnActionCommand{PlayerID: d.PlayerID}, nil
	case CmdSelectActionTarget:
		return decodeInto(d, func(p targetPayload) Command {
			return &SelectActionTargetCommand{PlayerID: d.PlayerID, Target: p.Target}
		})
	case CmdConfirmQueenSwap:
		return decodeInto(d, func(p confirmSwapPayload) Command {
			return &ConfirmQueenSwapCommand{PlayerID: d.PlayerID, Swap: p.Swap}
		})
	case CmdDeclareKingRank:
		return decodeInto(d, func(p declareRankPayload) Command {
			return &DeclareKingRankCommand{PlayerID: d.PlayerID, Rank: p.Rank}
		})
	case CmdSkipAction:
		return &SkipActionCommand{PlayerID: d.PlayerID}, nil
	case CmdTossIn:
		return decodeInto(d, func(p positionPayload) Command {
			return &TossInCommand{PlayerID: d.PlayerID, Position: p.Position}
		})
	case CmdCloseTossWindow:
		return &CloseTossWindowCommand{}, nil
	case CmdBeginQueuedAction:
		return &BeginQueuedActionCommand{}, nil
	case CmdCallVinto:
		return &CallVintoCommand{PlayerID: d.PlayerID}, nil
	case CmdAdvanceTurn:
		return &AdvanceTurnCommand{}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", d.Type)
	}
}

func decodeInto[P any](d Data, build func(P) Command) (Command, error) {
	var p P
	if len(d.Payload) > 0 {
		if err := json.Unmarshal(d.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", d.Type, err)
		}
	}
	return build(p), nil
}
