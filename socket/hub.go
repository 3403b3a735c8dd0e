package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tulisan/internal/editor"
	"tulisan/pkg/logger"
)

const (
	SyncType           = "SYNC"            // Server sends the current draft to a newly attached tab
	ChangeType         = "CHANGE"          // Tab replaced the whole draft
	PreviewType        = "PREVIEW"         // Draft changed in another tab of the same session
	SaveType           = "SAVE"            // Tab pressed Save
	SavedType          = "SAVED"           // Save succeeded, payload is the record
	SaveFailedType     = "SAVE_FAILED"     // Save failed, payload is {"error": ...}
	PresenceUpdateType = "PRESENCE_UPDATE" // A tab attached or detached
)

type WSMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`

	sender *Client
}

type Presence struct {
	Tabs int `json:"tabs"`
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub tracks which websocket clients are attached to which draft session.
// Room membership is only changed by Run.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	direct     chan directMessage
	done       chan struct{}

	drafts  *editor.Store
	gateway editor.Appender
	mu      sync.Mutex
}

func NewHub(drafts *editor.Store, gateway editor.Appender) *Hub {
	h := &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		direct:     make(chan directMessage),
		done:       make(chan struct{}),
		drafts:     drafts,
		gateway:    gateway,
	}
	// A draft with a tab attached is never evicted to make room.
	drafts.ProtectInUse(h.HasRoom)
	return h
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.SessionID] == nil {
				h.Rooms[client.SessionID] = make(map[*Client]bool)
			}
			h.Rooms[client.SessionID][client] = true
			h.mu.Unlock()

			// The new tab starts from the server-held draft.
			draft, _ := json.Marshal(client.Draft.Content())
			syncMsg, _ := json.Marshal(WSMessage{Type: SyncType, SessionID: client.SessionID, Payload: draft})
			h.trySend(client, syncMsg)

			h.broadcastPresenceUpdate(client.SessionID)

		case client := <-h.Unregister:
			h.mu.Lock()
			removed := h.removeLocked(client)
			h.mu.Unlock()

			if removed {
				h.broadcastPresenceUpdate(client.SessionID)
			}

		case dm := <-h.direct:
			h.mu.Lock()
			attached := h.Rooms[dm.client.SessionID][dm.client]
			h.mu.Unlock()
			if attached {
				h.trySend(dm.client, dm.payload)
			}

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			// Collect recipients under the lock, send outside it.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.SessionID]))
			for client := range h.Rooms[msg.SessionID] {
				if client != msg.sender {
					clientsToSend = append(clientsToSend, client)
				}
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				h.trySend(client, payload)
			}
		}
	}
}

// HasRoom reports whether any tab is attached to the session.
func (h *Hub) HasRoom(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[sessionID]) > 0
}

// CleanupWorker evicts idle drafts that no tab is attached to.
func (h *Hub) CleanupWorker(ctx context.Context, interval time.Duration) {
	h.drafts.RunCleanup(ctx, interval, h.HasRoom)
}

// The helpers below hand work to Run and give up once Run has stopped.

func (h *Hub) register(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) broadcast(msg WSMessage) {
	select {
	case h.Broadcast <- msg:
	case <-h.done:
	}
}

// reply queues payload for a single client through Run, so it is never
// written to a Send channel that Run has already closed.
func (h *Hub) reply(client *Client, payload []byte) {
	select {
	case h.direct <- directMessage{client: client, payload: payload}:
	case <-h.done:
	}
}

// trySend drops a client whose send buffer is full. Only called from Run.
func (h *Hub) trySend(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		logger.Sugar.Warnf("Client in session %s is lagging, detaching it", client.SessionID)
		h.mu.Lock()
		removed := h.removeLocked(client)
		h.mu.Unlock()
		if removed {
			client.Conn.Close()
		}
	}
}

func (h *Hub) removeLocked(client *Client) bool {
	if _, ok := h.Rooms[client.SessionID][client]; !ok {
		return false
	}
	delete(h.Rooms[client.SessionID], client)
	close(client.Send)
	if len(h.Rooms[client.SessionID]) == 0 {
		delete(h.Rooms, client.SessionID)
		logger.Sugar.Infof("Closed empty room for session %s", client.SessionID)
	}
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, clients := range h.Rooms {
		for client := range clients {
			close(client.Send)
			client.Conn.Close()
		}
		delete(h.Rooms, sessionID)
	}
}

func (h *Hub) broadcastPresenceUpdate(sessionID string) {
	h.mu.Lock()
	clientsToSend := make([]*Client, 0, len(h.Rooms[sessionID]))
	for client := range h.Rooms[sessionID] {
		clientsToSend = append(clientsToSend, client)
	}
	h.mu.Unlock()

	if len(clientsToSend) == 0 {
		return
	}

	payload, _ := json.Marshal(Presence{Tabs: len(clientsToSend)})
	msg, _ := json.Marshal(WSMessage{Type: PresenceUpdateType, SessionID: sessionID, Payload: payload})
	for _, client := range clientsToSend {
		select {
		case client.Send <- msg:
		default:
			// Don't detach here; the pumps notice unresponsive clients.
			logger.Sugar.Warnf("Send buffer full during presence update for session %s", sessionID)
		}
	}
}
