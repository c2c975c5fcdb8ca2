package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fakeout-service/internal/content"
	"fakeout-service/internal/domain"
	"fakeout-service/internal/game"
	"fakeout-service/internal/infra/memory"
)

func TestFullGameOverWebsocket(t *testing.T) {
	results := memory.NewResultStore()
	server := newTestServer(results)
	defer server.Close()

	created := createRoom(t, server, map[string]any{
		"name": "wire-room", "playerName": "Alice", "questions": 1,
	})
	joined := joinRoom(t, server, map[string]any{
		"roomId": created["roomId"], "playerName": "Bob",
	})
	roomID := created["roomId"].(string)

	alice := dialWS(t, server, roomID, created["sessionId"].(string))
	defer alice.Close()
	bob := dialWS(t, server, roomID, joined["sessionId"].(string))
	defer bob.Close()

	send(t, bob, "set_ready", map[string]any{"ready": true})
	waitForAllReady(t, alice)

	send(t, alice, "add_topic", map[string]any{"topic": "Science"})
	send(t, alice, "start_game", nil)

	snap := waitForPhase(t, alice, domain.PhaseCollectingAnswers)
	if snap.CurrentQuestion == nil {
		t.Fatalf("expected a question in collecting phase")
	}

	send(t, alice, "submit_fake_answer", map[string]any{"text": "alice-decoy"})
	send(t, bob, "submit_fake_answer", map[string]any{"text": "bob-decoy"})

	snap = waitForPhase(t, alice, domain.PhaseChoosingAnswers)
	if len(snap.Choices) != 3 {
		t.Fatalf("expected 2 decoys + correct answer, got %v", snap.Choices)
	}
	correct := ""
	for _, choice := range snap.Choices {
		if choice != "alice-decoy" && choice != "bob-decoy" {
			correct = choice
		}
	}
	if correct == "" {
		t.Fatalf("correct answer missing from choices: %v", snap.Choices)
	}

	send(t, alice, "choose_answer", map[string]any{"answer": correct})
	send(t, bob, "choose_answer", map[string]any{"answer": "alice-decoy"})

	snap = waitForPhase(t, alice, domain.PhaseShowingRanking)
	scores := map[string]int{}
	for _, p := range snap.Players {
		scores[p.DisplayName] = p.Score
	}
	if scores["Alice"] != 3 || scores["Bob"] != 0 {
		t.Fatalf("unexpected scores: %v", scores)
	}

	send(t, alice, "next_round", nil)
	waitForPhase(t, alice, domain.PhaseGameEnded)

	// The save runs after the final broadcast.
	deadline := time.Now().Add(2 * time.Second)
	for results.SessionCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if results.SessionCount() != 1 {
		t.Fatalf("expected the finished game to be recorded")
	}
}

func TestCreateRoomValidation(t *testing.T) {
	server := newTestServer(memory.NewResultStore())
	defer server.Close()

	cases := []map[string]any{
		{"playerName": "Alice", "questions": 3},            // missing name
		{"name": "room", "questions": 3},                   // missing playerName
		{"name": "room", "playerName": "Alice"},            // missing questions
		{"name": "r", "playerName": "A", "questions": 0},   // zero rounds
	}
	for i, body := range cases {
		resp := postJSON(t, server.URL+"/api/rooms", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, resp.StatusCode)
		}
	}
}

func TestJoinPrivateRoomRequiresCode(t *testing.T) {
	server := newTestServer(memory.NewResultStore())
	defer server.Close()

	created := createRoom(t, server, map[string]any{
		"name": "hidden", "playerName": "Alice", "questions": 1, "visibility": "private",
	})
	code := created["code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	resp := postJSON(t, server.URL+"/api/rooms/join", map[string]any{
		"roomId": created["roomId"], "playerName": "Bob",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("join by id must not reveal private rooms, got %d", resp.StatusCode)
	}

	joined := joinRoom(t, server, map[string]any{"code": code, "playerName": "Bob"})
	if joined["roomId"] != created["roomId"] {
		t.Fatalf("join by code resolved the wrong room: %v", joined)
	}
}

func TestGetRoomSnapshot(t *testing.T) {
	server := newTestServer(memory.NewResultStore())
	defer server.Close()

	created := createRoom(t, server, map[string]any{
		"name": "peek", "playerName": "Alice", "questions": 2,
	})

	resp, err := http.Get(server.URL + "/api/rooms/" + created["roomId"].(string))
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var snap domain.GameSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Phase != domain.PhaseLobby || len(snap.Players) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	missing, err := http.Get(server.URL + "/api/rooms/nope")
	if err != nil {
		t.Fatalf("get missing room: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}

func newTestServer(results *memory.ResultStore) *httptest.Server {
	provider := content.NewProvider(memory.NewStaticTopicSource(wireQuestions()))
	coord := game.NewCoordinator(memory.NewRoomRegistry(), provider, results)
	hub := NewHub()
	accounts := memory.NewAccountStore()
	router := NewRouter(NewRoomHandler(coord, accounts), NewGateway(coord, hub))
	return httptest.NewServer(router)
}

func wireQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"Science": {
			{ID: 1, Topic: "Science", Text: "What is the chemical symbol for gold?", CorrectAnswer: "Au"},
			{ID: 2, Topic: "Science", Text: "What planet has the most moons?", CorrectAnswer: "Saturn"},
		},
	}
}

func createRoom(t *testing.T, server *httptest.Server, body map[string]any) map[string]any {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/rooms", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: status %d", resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func joinRoom(t *testing.T, server *httptest.Server, body map[string]any) map[string]any {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/rooms/join", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join room: status %d", resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func postJSON(t *testing.T, url string, body map[string]any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func dialWS(t *testing.T, server *httptest.Server, roomID, sessionID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/api/rooms/" + roomID + "/ws?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// waitForAllReady consumes state broadcasts until every player is ready.
func waitForAllReady(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var msg struct {
			Type    string              `json:"type"`
			Payload domain.GameSnapshot `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read waiting for ready: %v", err)
		}
		if msg.Type != string(MsgState) || len(msg.Payload.Players) == 0 {
			continue
		}
		ready := true
		for _, p := range msg.Payload.Players {
			if !p.IsReady {
				ready = false
			}
		}
		if ready {
			return
		}
	}
	t.Fatalf("players never became ready")
}

// waitForPhase consumes state broadcasts until one arrives in the wanted
// phase. Intermediate states are expected; anything else times out the read.
func waitForPhase(t *testing.T, conn *websocket.Conn, phase domain.Phase) domain.GameSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var msg struct {
			Type    string              `json:"type"`
			Payload domain.GameSnapshot `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read waiting for %q: %v", phase, err)
		}
		if msg.Type == string(MsgState) && msg.Payload.Phase == phase {
			return msg.Payload
		}
	}
	t.Fatalf("never reached phase %q", phase)
	return domain.GameSnapshot{}
}
