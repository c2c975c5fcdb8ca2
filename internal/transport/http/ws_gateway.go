package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"fakeout-service/internal/domain"
	"fakeout-service/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Gateway bridges websocket clients and the game coordinator. Every inbound
// action maps to one coordinator call; after a state-changing call the fresh
// snapshot is broadcast to the whole room. Guard failures are silent no-ops:
// clients infer failure from the absence of a state update.
type Gateway struct {
	coord *game.Coordinator
	hub   *Hub
}

func NewGateway(coord *game.Coordinator, hub *Hub) *Gateway {
	return &Gateway{coord: coord, hub: hub}
}

// inbound actions
const (
	actSetReady         = "set_ready"
	actAddTopic         = "add_topic"
	actRemoveTopic      = "remove_topic"
	actListTopics       = "list_topics"
	actStartGame        = "start_game"
	actSelectRoundTopic = "select_round_topic"
	actSubmitFakeAnswer = "submit_fake_answer"
	actChooseAnswer     = "choose_answer"
	actNextRound        = "next_round"
)

type readyPayload struct {
	Ready bool `json:"ready"`
}

type topicPayload struct {
	Topic string `json:"topic"`
}

type textPayload struct {
	Text string `json:"text"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

// ServeWS handles GET /api/rooms/{roomId}/ws?sessionId=...
// It binds the live connection to the session registered over REST, joins
// the room's broadcast group, then pumps messages until the client leaves.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	connectionID := uuid.NewString()
	if err := g.coord.BindConnection(roomID, sessionID, connectionID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	conn := &Conn{
		RoomID:       roomID,
		SessionID:    sessionID,
		ConnectionID: connectionID,
		Send:         make(chan []byte, 256),
	}
	g.hub.Register(conn)

	// Everyone sees the newly connected player.
	g.broadcastState(roomID)

	go g.writePump(wsConn, conn)
	go g.readPump(wsConn, conn)
}

func (g *Gateway) readPump(wsConn *websocket.Conn, conn *Conn) {
	defer func() {
		g.hub.Unregister(conn)
		wsConn.Close()
		g.broadcastState(conn.RoomID)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read: %v", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			g.hub.SendTo(conn, MsgError, map[string]string{"message": "malformed message"})
			continue
		}
		g.dispatch(conn, &msg)
	}
}

func (g *Gateway) writePump(wsConn *websocket.Conn, conn *Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound action to the coordinator. Errors from in-game
// actions are logged but not surfaced; the snapshot broadcast only happens
// when something actually changed.
func (g *Gateway) dispatch(conn *Conn, msg *Message) {
	roomID := conn.RoomID

	switch string(msg.Type) {
	case actSetReady:
		var p readyPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		if err := g.coord.SetReady(roomID, conn.SessionID, p.Ready); err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		g.broadcastState(roomID)

	case actAddTopic:
		var p topicPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		if err := g.coord.AddTopic(roomID, p.Topic); err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		g.broadcastState(roomID)

	case actRemoveTopic:
		var p topicPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		if err := g.coord.RemoveTopic(roomID, p.Topic); err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		g.broadcastState(roomID)

	case actListTopics:
		topics, err := g.coord.ListTopics(context.Background())
		if err != nil {
			g.hub.SendTo(conn, MsgError, map[string]string{"message": "topics unavailable"})
			return
		}
		g.hub.SendTo(conn, MsgAvailableTopics, topics)

	case actStartGame:
		if err := g.coord.StartGame(context.Background(), roomID, conn.SessionID); err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		g.broadcastState(roomID)

	case actSelectRoundTopic:
		var p topicPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		if err := g.coord.SelectRoundTopic(roomID, conn.ConnectionID, p.Topic); err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		g.broadcastState(roomID)

	case actSubmitFakeAnswer:
		var p textPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		if err := g.coord.SubmitFakeAnswer(roomID, conn.ConnectionID, p.Text); err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		if g.coord.AllFakeAnswersSubmitted(roomID) {
			// Phase guard inside makes this a no-op for all but one caller.
			if err := g.coord.FinishCollecting(roomID); err != nil && err != domain.ErrWrongPhase {
				log.Printf("room %s: finish collecting: %v", roomID, err)
			}
		}
		g.broadcastState(roomID)

	case actChooseAnswer:
		var p answerPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		if err := g.coord.SubmitChosenAnswer(roomID, conn.ConnectionID, p.Answer); err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		if g.coord.AllAnswersChosen(roomID) {
			if err := g.coord.ScoreRound(roomID); err != nil && err != domain.ErrWrongPhase {
				log.Printf("room %s: score round: %v", roomID, err)
			}
		}
		g.broadcastState(roomID)

	case actNextRound:
		ended, err := g.coord.NextRound(roomID)
		if err != nil {
			g.logGuard(conn, msg.Type, err)
			return
		}
		g.broadcastState(roomID)
		if ended {
			if err := g.coord.SaveGameSession(context.Background(), roomID); err != nil && err != domain.ErrAlreadySaved {
				log.Printf("room %s: save game session: %v", roomID, err)
			}
		}

	default:
		g.hub.SendTo(conn, MsgError, map[string]string{"message": "unsupported message type"})
	}
}

func (g *Gateway) broadcastState(roomID string) {
	snap, err := g.coord.Snapshot(roomID)
	if err != nil {
		log.Printf("room %s: snapshot: %v", roomID, err)
		return
	}
	g.hub.Broadcast(roomID, MsgState, snap)
}

func (g *Gateway) logGuard(conn *Conn, action MessageType, err error) {
	log.Printf("room %s: %s from %s rejected: %v", conn.RoomID, action, conn.SessionID, err)
}
