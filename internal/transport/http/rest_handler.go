package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"fakeout-service/internal/domain"
	"fakeout-service/internal/game"
)

// AccountStore resolves logged-in players at room creation and join time.
type AccountStore interface {
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
}

// RoomHandler serves the REST surface: room creation, joining and a read-only
// snapshot. Everything in-game happens over the websocket.
type RoomHandler struct {
	coord    *game.Coordinator
	accounts AccountStore
}

func NewRoomHandler(coord *game.Coordinator, accounts AccountStore) *RoomHandler {
	return &RoomHandler{coord: coord, accounts: accounts}
}

type createRoomRequest struct {
	Name            string `json:"name"`
	PlayerName      string `json:"playerName"`
	AvatarImageName string `json:"avatarImageName"`
	Visibility      string `json:"visibility"`
	Questions       int    `json:"questions"`
	AccountID       *int64 `json:"accountId,omitempty"`
}

type createRoomResponse struct {
	RoomID     string `json:"roomId"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName"`
}

type joinRoomRequest struct {
	Code            string `json:"code,omitempty"`
	RoomID          string `json:"roomId,omitempty"`
	PlayerName      string `json:"playerName"`
	AvatarImageName string `json:"avatarImageName"`
	AccountID       *int64 `json:"accountId,omitempty"`
}

type joinRoomResponse struct {
	RoomID     string `json:"roomId"`
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" || req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "name and playerName are required")
		return
	}
	if req.Questions < 1 {
		writeError(w, http.StatusBadRequest, "questions must be at least 1")
		return
	}

	visibility := domain.VisibilityPublic
	if req.Visibility == string(domain.VisibilityPrivate) {
		visibility = domain.VisibilityPrivate
	}

	owner := &domain.SessionPlayer{
		DisplayName:     req.PlayerName,
		AvatarImageName: req.AvatarImageName,
	}
	if err := h.resolveAccount(r.Context(), req.AccountID, owner); err != nil {
		writeError(w, http.StatusBadRequest, "unknown account")
		return
	}

	room, err := h.coord.CreateRoom(visibility, req.Questions, req.Name, owner)
	if err != nil {
		log.Printf("create room: %v", err)
		writeError(w, http.StatusInternalServerError, "could not create room")
		return
	}

	writeJSON(w, http.StatusCreated, createRoomResponse{
		RoomID:     room.ID(),
		Code:       room.Code(),
		Name:       req.Name,
		SessionID:  owner.SessionID,
		PlayerName: owner.DisplayName,
	})
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "playerName is required")
		return
	}
	if req.Code == "" && req.RoomID == "" {
		writeError(w, http.StatusBadRequest, "code or roomId is required")
		return
	}

	player := &domain.SessionPlayer{
		DisplayName:     req.PlayerName,
		AvatarImageName: req.AvatarImageName,
	}
	if err := h.resolveAccount(r.Context(), req.AccountID, player); err != nil {
		writeError(w, http.StatusBadRequest, "unknown account")
		return
	}

	var (
		room *game.Room
		err  error
	)
	if req.Code != "" {
		room, err = h.coord.RoomByCode(req.Code)
	} else {
		room, err = h.coord.Room(req.RoomID)
		// Private rooms are reachable through their code only.
		if err == nil && room.Visibility() == domain.VisibilityPrivate {
			err = domain.ErrRoomNotFound
		}
	}
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}

	if err := h.coord.Join(room.ID(), player); err != nil {
		writeCoordinatorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, joinRoomResponse{
		RoomID:     room.ID(),
		SessionID:  player.SessionID,
		PlayerName: player.DisplayName,
	})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	snap, err := h.coord.Snapshot(roomID)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *RoomHandler) resolveAccount(ctx context.Context, accountID *int64, player *domain.SessionPlayer) error {
	if accountID == nil || h.accounts == nil {
		return nil
	}
	account, err := h.accounts.GetAccount(ctx, *accountID)
	if err != nil {
		return err
	}
	player.AccountID = &account.ID
	player.DisplayName = account.Username
	if account.AvatarImageName != "" {
		player.AvatarImageName = account.AvatarImageName
	}
	return nil
}

// NewRouter wires the REST and websocket endpoints.
func NewRouter(rooms *RoomHandler, gw *Gateway) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", rooms.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/join", rooms.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{roomId}", rooms.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}/ws", gw.ServeWS).Methods(http.MethodGet)
	return r
}

func writeCoordinatorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
