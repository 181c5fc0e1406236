package websocket

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Server to client events.
const (
	EventNotification   = "notification"
	EventSupportMessage = "support_message"
	EventError          = "error"
)

// Client to server messages.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HandleClientMessage answers the few messages a client may send. All
// business traffic goes through the HTTP API.
func (m *Manager) HandleClientMessage(client *Client, raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		m.logger.Debug("invalid websocket message", zap.String("uid", client.UserID), zap.Error(err))
		m.reply(client, EventError, map[string]string{"message": "Invalid message format"})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		m.reply(client, MessageTypePong, map[string]string{"status": "alive"})
	default:
		m.reply(client, EventError, map[string]string{"message": "Unknown message type"})
	}
}

func (m *Manager) reply(client *Client, eventType string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	select {
	case client.Send <- payload:
	default:
	}
}
