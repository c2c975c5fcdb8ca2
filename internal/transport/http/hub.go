package http

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType labels a websocket envelope.
type MessageType string

const (
	MsgState           MessageType = "state"            // full game snapshot
	MsgAvailableTopics MessageType = "available_topics" // reply to list_topics, caller only
	MsgError           MessageType = "error"
)

// Message is the websocket envelope format, both directions.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Conn is one player's registered websocket connection.
type Conn struct {
	RoomID       string
	SessionID    string
	ConnectionID string
	Send         chan []byte
}

type roomMessage struct {
	roomID string
	data   []byte
}

// Hub tracks which connections belong to which room and fans out snapshot
// broadcasts. Slow consumers get messages dropped rather than blocking the
// room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Conn]struct{}

	register   chan *Conn
	unregister chan *Conn
	broadcast  chan roomMessage
}

func NewHub() *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Conn]struct{}),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		broadcast:  make(chan roomMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.rooms[conn.RoomID] == nil {
				h.rooms[conn.RoomID] = make(map[*Conn]struct{})
			}
			h.rooms[conn.RoomID][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("connection %s joined room %s", conn.ConnectionID, conn.RoomID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.rooms[conn.RoomID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.rooms, conn.RoomID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("connection %s left room %s", conn.ConnectionID, conn.RoomID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.rooms[msg.roomID] {
				select {
				case conn.Send <- msg.data:
				default:
					// Drop rather than block the whole room.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection to its room group.
func (h *Hub) Register(conn *Conn) {
	h.register <- conn
}

// Unregister removes a connection and closes its send channel.
func (h *Hub) Unregister(conn *Conn) {
	h.unregister <- conn
}

// Broadcast sends an enveloped payload to every connection in the room.
func (h *Hub) Broadcast(roomID string, msgType MessageType, payload any) {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		log.Printf("marshal %s broadcast: %v", msgType, err)
		return
	}
	h.broadcast <- roomMessage{roomID: roomID, data: data}
}

// SendTo delivers an enveloped payload to a single connection.
func (h *Hub) SendTo(conn *Conn, msgType MessageType, payload any) {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		log.Printf("marshal %s message: %v", msgType, err)
		return
	}
	select {
	case conn.Send <- data:
	default:
	}
}

func marshalEnvelope(msgType MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: raw})
}
