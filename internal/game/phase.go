package game

// Phase is the top-level game lifecycle state.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
	PhaseScoring Phase = "scoring"
)

// SubPhase refines the playing phase. Only meaningful while Phase is
// PhasePlaying; mutated exclusively by the turn state machine.
type SubPhase string

const (
	SubIdle            SubPhase = "idle"
	SubDrawing         SubPhase = "drawing"
	SubChoosingAction  SubPhase = "choosing_action"
	SubAwaitingTarget  SubPhase = "awaiting_action_target"
	SubDeclaringRank   SubPhase = "declaring_rank"
	SubTossQueueActive SubPhase = "toss_queue_active"
	SubAIThinking      SubPhase = "ai_thinking"
)
