package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"deadgrid/server/game"
	"deadgrid/server/messages"
	"deadgrid/server/network"
	"deadgrid/server/services"
)

// reasonGameOver is sent in a rejected message once the game has ended.
const reasonGameOver game.Reason = "game_over"

// ClientHandler manages a single client connection. Its fields are only
// touched from the connection's read goroutine.
type ClientHandler struct {
	id            string
	ctx           context.Context
	conn          *network.Connection
	sessions      *services.SessionService
	clientManager *ClientManager
	log           *logrus.Entry
	sessionID     string
}

// HandleClientConnection serves one upgraded connection until it closes or
// ctx is done.
func HandleClientConnection(ctx context.Context, wsConn *websocket.Conn, sessions *services.SessionService, clientManager *ClientManager, log *logrus.Entry) {
	id := uuid.NewString()
	entry := log.WithField("client_id", id)
	conn := network.NewConnection(wsConn, entry)
	handler := &ClientHandler{
		id:            id,
		ctx:           ctx,
		conn:          conn,
		sessions:      sessions,
		clientManager: clientManager,
		log:           entry,
	}

	clientManager.AddClient(handler)
	entry.WithField("remote_addr", wsConn.RemoteAddr().String()).Info("client connected")

	go conn.WritePump()
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-conn.Done():
		}
	}()
	conn.ReadPump(handler)

	clientManager.RemoveClient(id)
	handler.endSession()
	entry.Info("client disconnected")
}

// HandleMessage dispatches one client message
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var msg messages.IncomingMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.log.WithError(err).Debug("malformed message")
		h.send(messages.Error(messages.CodeBadMessage, "message is not valid JSON"))
		return
	}

	switch msg.Type {
	case messages.MessageTypeStart:
		h.handleStart(msg.Payload)
	case messages.MessageTypeAction:
		h.handleAction(msg.Payload)
	case messages.MessageTypeSnapshot:
		h.handleSnapshot()
	default:
		h.log.WithField("type", msg.Type).Debug("unknown message type")
		h.send(messages.Error(messages.CodeUnknownType, "unknown message type received"))
	}
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// handleStart begins a new game. A client that already has one abandons it.
func (h *ClientHandler) handleStart(payload json.RawMessage) {
	var start messages.StartMessage
	if err := decodePayload(payload, &start); err != nil {
		h.send(messages.Error(messages.CodeBadMessage, "invalid start payload"))
		return
	}

	h.endSession()
	sess, snap, err := h.sessions.Start(services.StartOptions{
		PlayerName: start.PlayerName,
		Seed:       start.Seed,
	})
	if err != nil {
		if errors.Is(err, services.ErrTooManySessions) {
			h.send(messages.Error(messages.CodeSessionLimit, "server is full, try again later"))
			return
		}
		h.log.WithError(err).Error("start session failed")
		h.send(messages.Error(messages.CodeInternal, "could not start a game"))
		return
	}

	h.sessionID = sess.ID
	h.log = h.log.WithField("session_id", sess.ID)
	h.send(messages.New(messages.MessageTypeStarted, messages.StartedMessage{
		SessionID: sess.ID,
		Seed:      sess.Seed,
		Snapshot:  snap,
	}))
}

func (h *ClientHandler) handleAction(payload json.RawMessage) {
	if h.sessionID == "" {
		h.send(messages.Error(messages.CodeNoSession, "send start first"))
		return
	}
	var action messages.ActionMessage
	if err := decodePayload(payload, &action); err != nil {
		h.send(messages.Error(messages.CodeBadMessage, "invalid action payload"))
		return
	}

	result, err := h.sessions.Apply(h.ctx, h.sessionID, action.Action())
	if result.Run != nil {
		h.clientManager.BroadcastToOthers(h.id, messages.New(messages.MessageTypeRunFinished, messages.RunFinishedMessage{Run: *result.Run}))
	}

	switch {
	case err == nil:
	case errors.Is(err, services.ErrSessionNotFound):
		h.sessionID = ""
		h.send(messages.Error(messages.CodeNoSession, "session expired, send start"))
		return
	case errors.Is(err, game.ErrGameOver):
		h.send(messages.New(messages.MessageTypeRejected, messages.RejectedMessage{
			Reason:  reasonGameOver,
			Message: err.Error(),
		}))
		// A record that failed when the game ended was retried by this request.
		if result.Run != nil {
			h.send(messages.New(messages.MessageTypeGameOver, messages.GameOverMessage{
				Stats: result.Stats,
				Run:   result.Run,
			}))
		}
		return
	default:
		if reason, ok := game.RejectionReason(err); ok {
			h.send(messages.New(messages.MessageTypeRejected, messages.RejectedMessage{
				Reason:  reason,
				Message: err.Error(),
			}))
			return
		}
		h.log.WithError(err).Error("apply action failed")
		h.send(messages.Error(messages.CodeInternal, "action failed"))
		return
	}

	h.send(messages.New(messages.MessageTypeOutcome, messages.OutcomeMessage{
		Events:   result.Outcome.Events,
		Snapshot: result.Snapshot,
	}))
	if result.Outcome.Has(game.EventGameOver) {
		h.log.WithFields(logrus.Fields{
			"days_survived": result.Stats.DaysSurvived,
			"kills":         result.Stats.Kills,
		}).Info("game over")
		h.send(messages.New(messages.MessageTypeGameOver, messages.GameOverMessage{
			Stats: result.Stats,
			Run:   result.Run,
		}))
	}
}

func (h *ClientHandler) handleSnapshot() {
	if h.sessionID == "" {
		h.send(messages.Error(messages.CodeNoSession, "send start first"))
		return
	}
	snap, err := h.sessions.Snapshot(h.sessionID)
	if err != nil {
		h.sessionID = ""
		h.send(messages.Error(messages.CodeNoSession, "session expired, send start"))
		return
	}
	h.send(messages.New(messages.MessageTypeSnapshot, messages.SnapshotMessage{Snapshot: snap}))
}

func (h *ClientHandler) endSession() {
	if h.sessionID == "" {
		return
	}
	h.sessions.End(h.sessionID)
	h.sessionID = ""
}

func (h *ClientHandler) send(msg messages.BaseMessage) {
	if err := h.conn.SendMessage(msg); err != nil {
		h.log.WithError(err).Debug("send failed")
	}
}
