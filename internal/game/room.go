package game

import (
	"math/rand"
	"sort"
	"sync"

	"fakeout-service/internal/domain"
)

// Room is the central aggregate: one instance per active game. All mutable
// state is guarded by mu; the Coordinator is the only caller of the methods
// below, so every transition is serialized per room.
type Room struct {
	id         string
	name       string
	visibility domain.Visibility
	code       string // non-empty iff visibility is private

	mu                   sync.Mutex
	phase                domain.Phase
	ownerSessionID       string
	players              []*domain.SessionPlayer // insertion order = join order, drives chooser rotation
	selectedTopics       []string
	topicChooserIndex    int
	totalQuestions       int
	questions            []domain.Question
	currentQuestionIndex int
	currentQuestion      *domain.Question
	currentRoundTopic    string
	fakeAnswers          map[string]string // connectionID -> decoy text
	chosenAnswers        map[string]string // connectionID -> voted answer
	saved                bool
}

func newRoom(id, name string, visibility domain.Visibility, code string, totalQuestions int, owner *domain.SessionPlayer) *Room {
	owner.IsReady = true
	return &Room{
		id:             id,
		name:           name,
		visibility:     visibility,
		code:           code,
		phase:          domain.PhaseLobby,
		ownerSessionID: owner.SessionID,
		players:        []*domain.SessionPlayer{owner},
		totalQuestions: totalQuestions,
		fakeAnswers:    make(map[string]string),
		chosenAnswers:  make(map[string]string),
	}
}

// ID returns the registry key. Immutable, safe without the lock.
func (r *Room) ID() string { return r.id }

// Code returns the private join code, empty for public rooms.
func (r *Room) Code() string { return r.code }

// Visibility reports whether the room is public or private.
func (r *Room) Visibility() domain.Visibility { return r.visibility }

func (r *Room) join(player *domain.SessionPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseLobby {
		return domain.ErrWrongPhase
	}
	if len(r.players) >= domain.MaxPlayers {
		return domain.ErrRoomFull
	}
	r.players = append(r.players, player)
	return nil
}

func (r *Room) bindConnection(sessionID, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.SessionID == sessionID {
			p.ConnectionID = connectionID
			return nil
		}
	}
	return domain.ErrPlayerNotFound
}

func (r *Room) setReady(sessionID string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.SessionID == sessionID {
			p.IsReady = ready
			return nil
		}
	}
	return domain.ErrPlayerNotFound
}

func (r *Room) addTopic(topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseLobby {
		return domain.ErrWrongPhase
	}
	if len(r.selectedTopics) >= domain.MaxTopics {
		return domain.ErrTooManyTopics
	}
	for _, t := range r.selectedTopics {
		if t == topic {
			return domain.ErrTopicAlreadySelected
		}
	}
	r.selectedTopics = append(r.selectedTopics, topic)
	return nil
}

func (r *Room) removeTopic(topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseLobby {
		return domain.ErrWrongPhase
	}
	for i, t := range r.selectedTopics {
		if t == topic {
			r.selectedTopics = append(r.selectedTopics[:i], r.selectedTopics[i+1:]...)
			return nil
		}
	}
	return domain.ErrTopicNotSelected
}

// ensureStartable validates the StartGame guards without mutating anything,
// and returns the selected topics so questions can be fetched outside the
// room lock. A racing second start is caught later by the phase check in start.
func (r *Room) ensureStartable(sessionID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseLobby {
		return nil, domain.ErrWrongPhase
	}
	if r.ownerSessionID != sessionID {
		return nil, domain.ErrNotOwner
	}
	if len(r.players) < domain.MinPlayers {
		return nil, domain.ErrNotEnoughPlayers
	}
	for _, p := range r.players {
		if !p.IsReady {
			return nil, domain.ErrPlayersNotReady
		}
	}
	if len(r.selectedTopics) == 0 {
		return nil, domain.ErrNoTopics
	}
	topics := make([]string, len(r.selectedTopics))
	copy(topics, r.selectedTopics)
	return topics, nil
}

func (r *Room) start(questions []domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseLobby {
		return domain.ErrWrongPhase
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestionsLeft
	}
	r.questions = questions
	r.currentQuestionIndex = 0
	r.topicChooserIndex = 0

	if len(r.selectedTopics) == 1 {
		r.currentRoundTopic = r.selectedTopics[0]
		r.currentQuestion = &r.questions[0]
		r.phase = domain.PhaseCollectingAnswers
	} else {
		r.phase = domain.PhaseChoosingRoundTopic
	}
	return nil
}

func (r *Room) selectRoundTopic(connectionID, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseChoosingRoundTopic {
		return domain.ErrWrongPhase
	}
	chooser := r.players[r.topicChooserIndex]
	if !chooser.Connected() || chooser.ConnectionID != connectionID {
		return domain.ErrNotTopicChooser
	}
	selected := false
	for _, t := range r.selectedTopics {
		if t == topic {
			selected = true
			break
		}
	}
	if !selected {
		return domain.ErrTopicNotSelected
	}

	// Questions played so far occupy questions[0..currentQuestionIndex); the
	// chosen question is swapped into the current slot so that prefix stays
	// exactly the set of used questions.
	pick := -1
	for i := r.currentQuestionIndex; i < len(r.questions); i++ {
		if r.questions[i].Topic == topic {
			pick = i
			break
		}
	}
	if pick == -1 && r.currentQuestionIndex < len(r.questions) {
		// Fallback: any unused question, so an uneven topic distribution
		// never stalls the game.
		pick = r.currentQuestionIndex
	}
	if pick == -1 {
		return domain.ErrNoQuestionsLeft
	}

	idx := r.currentQuestionIndex
	r.questions[idx], r.questions[pick] = r.questions[pick], r.questions[idx]
	r.currentRoundTopic = topic
	r.currentQuestion = &r.questions[idx]
	r.phase = domain.PhaseCollectingAnswers
	return nil
}

func (r *Room) submitFakeAnswer(connectionID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseCollectingAnswers {
		return domain.ErrWrongPhase
	}
	if err := r.checkConnection(connectionID); err != nil {
		return err
	}
	if text == r.currentQuestion.CorrectAnswer {
		return domain.ErrDecoyMatchesAnswer
	}
	// Last write wins: resubmitting replaces the earlier decoy.
	r.fakeAnswers[connectionID] = text
	return nil
}

func (r *Room) allFakeAnswersSubmitted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fakeAnswers) == len(r.players)
}

// finishCollecting moves the room into the choosing phase. The phase guard
// makes the transition fire exactly once no matter how many callers observed
// "all submitted" at the same time.
func (r *Room) finishCollecting() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseCollectingAnswers {
		return domain.ErrWrongPhase
	}
	r.phase = domain.PhaseChoosingAnswers
	return nil
}

func (r *Room) submitChosenAnswer(connectionID, answer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseChoosingAnswers {
		return domain.ErrWrongPhase
	}
	if err := r.checkConnection(connectionID); err != nil {
		return err
	}
	r.chosenAnswers[connectionID] = answer
	return nil
}

func (r *Room) allAnswersChosen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chosenAnswers) == len(r.players)
}

// scoreRound awards +2 for a correct vote and +1 to a decoy's author for
// every other player fooled by it, then shows the ranking. Phase-guarded so
// a round is scored at most once.
func (r *Room) scoreRound() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseChoosingAnswers {
		return domain.ErrWrongPhase
	}
	byConn := make(map[string]*domain.SessionPlayer, len(r.players))
	for _, p := range r.players {
		byConn[p.ConnectionID] = p
	}
	for _, p := range r.players {
		chosen, ok := r.chosenAnswers[p.ConnectionID]
		if !ok {
			continue
		}
		if chosen == r.currentQuestion.CorrectAnswer {
			p.Score += 2
		}
		for authorConn, fake := range r.fakeAnswers {
			if fake == chosen && authorConn != p.ConnectionID {
				if author, ok := byConn[authorConn]; ok {
					author.Score++
				}
			}
		}
	}
	r.phase = domain.PhaseShowingRanking
	return nil
}

// nextRound advances the question index. Returns true when the game ended.
func (r *Room) nextRound() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseShowingRanking {
		return false, domain.ErrWrongPhase
	}
	r.currentQuestionIndex++
	if r.currentQuestionIndex >= r.totalQuestions || r.currentQuestionIndex >= len(r.questions) {
		r.phase = domain.PhaseGameEnded
		return true, nil
	}

	r.fakeAnswers = make(map[string]string)
	r.chosenAnswers = make(map[string]string)
	r.topicChooserIndex = (r.topicChooserIndex + 1) % len(r.players)

	if len(r.selectedTopics) == 1 {
		r.currentRoundTopic = r.selectedTopics[0]
		r.currentQuestion = &r.questions[r.currentQuestionIndex]
		r.phase = domain.PhaseCollectingAnswers
	} else {
		r.currentRoundTopic = ""
		r.currentQuestion = nil
		r.phase = domain.PhaseChoosingRoundTopic
	}
	return false, nil
}

func (r *Room) buildAnswerChoices() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseChoosingAnswers {
		return nil, domain.ErrWrongPhase
	}
	return r.buildAnswerChoicesLocked(), nil
}

func (r *Room) buildAnswerChoicesLocked() []string {
	choices := make([]string, 0, len(r.fakeAnswers)+1)
	for _, fake := range r.fakeAnswers {
		choices = append(choices, fake)
	}
	choices = append(choices, r.currentQuestion.CorrectAnswer)
	rand.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices
}

func (r *Room) snapshot() domain.GameSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]domain.PlayerView, len(r.players))
	for i, p := range r.players {
		_, submittedFake := r.fakeAnswers[p.ConnectionID]
		_, chosenAnswer := r.chosenAnswers[p.ConnectionID]
		players[i] = domain.PlayerView{
			SessionID:        p.SessionID,
			DisplayName:      p.DisplayName,
			AvatarImageName:  p.AvatarImageName,
			Score:            p.Score,
			IsReady:          p.IsReady,
			Connected:        p.Connected(),
			HasSubmittedFake: submittedFake,
			HasChosenAnswer:  chosenAnswer,
		}
	}

	snap := domain.GameSnapshot{
		RoomID:               r.id,
		RoomName:             r.name,
		Phase:                r.phase,
		CurrentQuestionIndex: r.currentQuestionIndex,
		TotalQuestions:       r.totalQuestions,
		CurrentQuestion:      r.currentQuestion,
		Players:              players,
		Choices:              []string{},
		RoomCode:             r.code,
		SelectedTopics:       append([]string{}, r.selectedTopics...),
		CurrentRoundTopic:    r.currentRoundTopic,
		NeedsTopicChoice:     len(r.selectedTopics) > 1,
	}
	if len(r.players) > 0 && r.topicChooserIndex < len(r.players) {
		snap.TopicChooserName = r.players[r.topicChooserIndex].DisplayName
	}
	if r.phase == domain.PhaseChoosingAnswers {
		snap.Choices = r.buildAnswerChoicesLocked()
	}
	return snap
}

// rankedPlayer pairs a final score with a 1-based rank for persistence.
type rankedPlayer struct {
	SessionID   string
	DisplayName string
	AccountID   *int64
	Score       int
	Rank        int
}

// beginSave flips the one-shot saved flag and returns the final ranking.
// Ties keep join order (stable sort), so the earlier joiner ranks higher.
func (r *Room) beginSave() (domain.GameSessionMeta, []rankedPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseGameEnded {
		return domain.GameSessionMeta{}, nil, domain.ErrWrongPhase
	}
	if r.saved {
		return domain.GameSessionMeta{}, nil, domain.ErrAlreadySaved
	}
	r.saved = true

	ranked := make([]rankedPlayer, len(r.players))
	for i, p := range r.players {
		ranked[i] = rankedPlayer{
			SessionID:   p.SessionID,
			DisplayName: p.DisplayName,
			AccountID:   p.AccountID,
			Score:       p.Score,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	meta := domain.GameSessionMeta{
		RoomID:      r.id,
		TotalRounds: r.totalQuestions,
		Topics:      append([]string{}, r.selectedTopics...),
	}
	return meta, ranked, nil
}

// checkConnection distinguishes a player who never bound a websocket from a
// connection id that belongs to no one in the room.
func (r *Room) checkConnection(connectionID string) error {
	if connectionID == "" {
		return domain.ErrNotConnected
	}
	for _, p := range r.players {
		if p.ConnectionID == connectionID {
			return nil
		}
	}
	return domain.ErrPlayerNotFound
}
