package domain

import "errors"

var (
	// ErrRoomNotFound is returned for an unknown room id or join code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrPlayerNotFound is returned when a session or connection id does not
	// belong to any player in the room.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrAccountNotFound indicates a referenced account id does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrWrongPhase is returned for an action attempted outside its legal phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrNotOwner is returned when a non-owner tries an owner-only action.
	ErrNotOwner = errors.New("only the room owner may do this")
	// ErrNotTopicChooser is returned when someone other than the rotating
	// chooser tries to pick the round topic.
	ErrNotTopicChooser = errors.New("not this player's turn to choose a topic")
	// ErrNotConnected is returned for round actions from a player whose
	// websocket has not been bound yet.
	ErrNotConnected = errors.New("player has no live connection")
	// ErrRoomFull is returned when joining a room at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrTooManyTopics is returned when the lobby already holds the topic cap.
	ErrTooManyTopics = errors.New("topic limit reached")
	// ErrTopicAlreadySelected is returned when adding a duplicate topic.
	ErrTopicAlreadySelected = errors.New("topic already selected")
	// ErrTopicNotSelected is returned when a round topic is not among the
	// lobby's selected topics.
	ErrTopicNotSelected = errors.New("topic not selected for this game")
	// ErrNotEnoughPlayers blocks starting with fewer than MinPlayers.
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	// ErrPlayersNotReady blocks starting while any player is not ready.
	ErrPlayersNotReady = errors.New("not all players are ready")
	// ErrNoTopics blocks starting with an empty topic selection.
	ErrNoTopics = errors.New("no topics selected")
	// ErrDecoyMatchesAnswer rejects a fake answer equal to the correct one.
	ErrDecoyMatchesAnswer = errors.New("decoy equals the correct answer")
	// ErrNoQuestionsLeft is returned when no unused question remains for a round.
	ErrNoQuestionsLeft = errors.New("no unused questions available")
	// ErrCodeInUse is returned by the registry when a private room code collides.
	ErrCodeInUse = errors.New("room code already in use")
	// ErrAlreadySaved guards the one-shot game result persistence.
	ErrAlreadySaved = errors.New("game session already saved")
)
