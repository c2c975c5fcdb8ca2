package domain

// PlayerView is the client-visible projection of a session player.
type PlayerView struct {
	SessionID        string `json:"sessionId"`
	DisplayName      string `json:"displayName"`
	AvatarImageName  string `json:"avatarImageName,omitempty"`
	Score            int    `json:"score"`
	IsReady          bool   `json:"isReady"`
	Connected        bool   `json:"connected"`
	HasSubmittedFake bool   `json:"hasSubmittedFake"`
	HasChosenAnswer  bool   `json:"hasChosenAnswer"`
}

// GameSnapshot is the full client-visible room state, rebuilt after every
// transition and broadcast to the room group. Choices is populated only in
// the choosing phase and is reshuffled on every snapshot.
type GameSnapshot struct {
	RoomID               string       `json:"roomId"`
	RoomName             string       `json:"roomName"`
	Phase                Phase        `json:"phase"`
	CurrentQuestionIndex int          `json:"currentQuestionIndex"`
	TotalQuestions       int          `json:"totalQuestions"`
	CurrentQuestion      *Question    `json:"currentQuestion,omitempty"`
	Players              []PlayerView `json:"players"`
	Choices              []string     `json:"choices"`
	RoomCode             string       `json:"roomCode,omitempty"`
	SelectedTopics       []string     `json:"selectedTopics"`
	CurrentRoundTopic    string       `json:"currentRoundTopic,omitempty"`
	TopicChooserName     string       `json:"topicChooserName,omitempty"`
	NeedsTopicChoice     bool         `json:"needsTopicChoice"`
}
