package domain

// Phase is the room's current state in the game state machine.
type Phase string

const (
	PhaseLobby Phase = "lobby"
	// PhaseChoosingTopic is reserved; no transition reaches it today.
	PhaseChoosingTopic      Phase = "choosing_topic"
	PhaseChoosingRoundTopic Phase = "choosing_round_topic"
	PhaseCollectingAnswers  Phase = "collecting_answers"
	PhaseChoosingAnswers    Phase = "choosing_answers"
	PhaseShowingRanking     Phase = "showing_ranking"
	PhaseGameEnded          Phase = "game_ended"
)

// Visibility controls whether a room is listed publicly or joined by code.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

const (
	// MinPlayers is the minimum player count required to start a game.
	MinPlayers = 2
	// MaxPlayers is the hard cap on room membership.
	MaxPlayers = 6
	// MaxTopics bounds how many topics a lobby can select.
	MaxTopics = 7
)

// Question is an immutable value fetched from the content provider. The
// correct answer is used to validate decoys and to score a round.
type Question struct {
	ID            int64  `json:"id"`
	Topic         string `json:"topic"`
	Text          string `json:"text"`
	CorrectAnswer string `json:"-"`
	Explanation   string `json:"explanation,omitempty"`
}

// SessionPlayer is an ephemeral per-game participant identity, distinct from
// any persisted account. It is created on join and discarded when the game
// ends; only its final score survives (for logged-in players).
type SessionPlayer struct {
	SessionID       string
	ConnectionID    string // empty until the websocket binds; unbound players cannot act in rounds
	DisplayName     string
	AvatarImageName string
	Score           int
	IsReady         bool
	AccountID       *int64 // nil for guests; used only at game end
}

// Connected reports whether the live connection has been bound.
func (p *SessionPlayer) Connected() bool {
	return p.ConnectionID != ""
}

// Account is a persisted player account. Session players reference it weakly;
// it is read at join time and credited with experience at game end.
type Account struct {
	ID              int64
	Username        string
	AvatarImageName string
	Xp              int
}

// GameSessionMeta describes a finished game for the persistence adapter.
type GameSessionMeta struct {
	RoomID      string
	TotalRounds int
	Topics      []string
}
