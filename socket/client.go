package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tulisan/internal/editor"
	"tulisan/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The editor page is served from this origin or a configured frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one browser tab attached to a draft session.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	SessionID string
	Draft     *editor.Draft
	Send      chan []byte
}

type saveFailure struct {
	Error string `json:"error"`
}

// ServeWs upgrades the request and attaches the connection to the draft of
// sessionID.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, sessionID string) {
	draft, ok := hub.drafts.Get(sessionID)
	if !ok {
		logger.Sugar.Warnf("Connection rejected: draft session %s not found", sessionID)
		http.Error(w, "Editor session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Draft:     draft,
		Send:      make(chan []byte, 256),
	}

	if !hub.register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("Websocket read error in session %s: %v", c.SessionID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}
		// The session is server-authoritative.
		msg.SessionID = c.SessionID
		msg.sender = c

		switch msg.Type {
		case ChangeType:
			c.handleChange(msg)
		case SaveType:
			c.handleSave()
		default:
			logger.Sugar.Warnf("Ignoring message type %q in session %s", msg.Type, c.SessionID)
		}
	}
}

// handleChange applies the edit before returning, so a SAVE that follows on
// the same connection always sees it.
func (c *Client) handleChange(msg WSMessage) {
	var content string
	if err := json.Unmarshal(msg.Payload, &content); err != nil {
		logger.Sugar.Errorf("CHANGE payload in session %s is not a string: %v", c.SessionID, err)
		return
	}
	c.Draft.Replace(content)

	msg.Type = PreviewType
	c.Hub.broadcast(msg)
}

func (c *Client) handleSave() {
	rec, err := c.Draft.Save(context.Background(), c.Hub.gateway)

	var reply WSMessage
	if err != nil {
		logger.Sugar.Errorf("Error saving draft of session %s: %v", c.SessionID, err)
		payload, _ := json.Marshal(saveFailure{Error: "Failed to save content. Please try again later."})
		reply = WSMessage{Type: SaveFailedType, SessionID: c.SessionID, Payload: payload}
	} else {
		payload, _ := json.Marshal(rec)
		reply = WSMessage{Type: SavedType, SessionID: c.SessionID, Payload: payload}
	}

	out, err := json.Marshal(reply)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling save reply: %v", err)
		return
	}
	c.Hub.reply(c, out)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
