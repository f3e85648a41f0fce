package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Direct messages between mutual matches. The engine produces matches;
// chat only consumes them: a message is deliverable iff the pair is
// currently mutual.

// ChatMessage represents a chat message with metadata
type ChatMessage struct {
	ID   int64     `json:"id"`
	Type string    `json:"type"` // "message" | "typing"
	From int       `json:"from"`
	To   int       `json:"to,omitempty"`
	Body string    `json:"body,omitempty"`
	Ts   time.Time `json:"ts"`
}

// ServerEvent represents a server-sent event
type ServerEvent struct {
	Type string `json:"type"` // "message" | "typing" | "info" | "error"
	From int    `json:"from,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	userID int
	conn   *websocket.Conn
	send   chan ServerEvent
	db     *sql.DB
}

// Hub manages WebSocket client connections
type Hub struct {
	clientsByUser map[int]map[*Client]bool
	mu            sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clientsByUser: make(map[int]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clientsByUser[c.userID] == nil {
		h.clientsByUser[c.userID] = make(map[*Client]bool)
	}
	h.clientsByUser[c.userID][c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.clientsByUser[c.userID]; ok {
		delete(peers, c)
		if len(peers) == 0 {
			delete(h.clientsByUser, c.userID)
		}
	}
}

// trySend queues an event without blocking. If the writer goroutine is gone
// or the buffer is full, the event is dropped; the reader must never park on
// its own send channel.
func (c *Client) trySend(evt ServerEvent) {
	select {
	case c.send <- evt:
	default:
	}
}

func (h *Hub) sendToUser(userID int, evt ServerEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clientsByUser[userID] {
		select {
		case c.send <- evt:
		default:
			// Drop message if user's buffer is full
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// global hub
var chatHub = newHub()

// GET /ws/chat (upgrade)
func wsChatHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := getUserIDFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Int("user_id", userID).Msg("ws upgrade failed")
			return
		}

		client := &Client{
			userID: userID,
			conn:   conn,
			send:   make(chan ServerEvent, 16),
			db:     db,
		}
		chatHub.register(client)
		client.trySend(ServerEvent{Type: "info", Data: "connected"})

		go clientWriter(client)
		clientReader(client)
	}
}

func clientReader(c *Client) {
	defer func() {
		chatHub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ChatMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.trySend(ServerEvent{Type: "error", Data: "invalid message format"})
			continue
		}

		switch msg.Type {
		case "message":
			id, ts, err := saveChatMsg(c.db, c.userID, msg.To, msg.Body)
			if err != nil {
				c.trySend(ServerEvent{Type: "error", Data: "cannot send message"})
				continue
			}

			out := ServerEvent{
				Type: "message",
				From: c.userID,
				Data: ChatMessage{
					ID:   id,
					Type: "message",
					From: c.userID,
					To:   msg.To,
					Body: msg.Body,
					Ts:   ts,
				},
			}
			chatHub.sendToUser(msg.To, out)
			// echo (so sender UI updates instantly)
			chatHub.sendToUser(c.userID, out)

		case "typing":
			chatHub.sendToUser(msg.To, ServerEvent{Type: "typing", From: c.userID})

		default:
			c.trySend(ServerEvent{Type: "error", Data: "unknown message type"})
		}
	}
}

func clientWriter(c *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			// ping to keep the connection alive
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// saveChatMsg persists a message after verifying the pair is a mutual
// match. Gating and insert run in one transaction so a concurrent dislike
// cannot slip a message into a dissolved match.
func saveChatMsg(db *sql.DB, fromUserID, toUserID int, body string) (int64, time.Time, error) {
	if body == "" || fromUserID == toUserID {
		return 0, time.Time{}, validationf("empty message or self-message")
	}

	var id int64
	var ts time.Time
	err := withTx(context.Background(), db, func(tx *sql.Tx) error {
		var ok int
		err := tx.QueryRow(`
			SELECT 1 FROM matches
			WHERE actor_id = $1 AND target_id = $2 AND mutual = TRUE
			LIMIT 1
		`, fromUserID, toUserID).Scan(&ok)
		if err == sql.ErrNoRows {
			return validationf("no mutual match")
		} else if err != nil {
			return err
		}

		return tx.QueryRow(`
			INSERT INTO messages (sender_id, recipient_id, body)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, fromUserID, toUserID, body).Scan(&id, &ts)
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	return id, ts, nil
}

// GET /chats/{peerID}?limit=N - message history with one peer, newest last.
func chatHistoryHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())
		peerID, err := strconv.Atoi(chi.URLParam(r, "peerID"))
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if limit <= 0 {
			limit = 50
		}

		rows, err := db.QueryContext(r.Context(), `
			SELECT id, sender_id, recipient_id, body, created_at
			FROM (
				SELECT id, sender_id, recipient_id, body, created_at
				FROM messages
				WHERE (sender_id = $1 AND recipient_id = $2)
				   OR (sender_id = $2 AND recipient_id = $1)
				ORDER BY created_at DESC, id DESC
				LIMIT $3
			) recent
			ORDER BY created_at ASC, id ASC
		`, me, peerID, limit)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer rows.Close()

		messages := make([]ChatMessage, 0, limit)
		for rows.Next() {
			var m ChatMessage
			if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Body, &m.Ts); err != nil {
				writeEngineError(w, err)
				return
			}
			m.Type = "message"
			messages = append(messages, m)
		}
		writeJSON(w, http.StatusOK, map[string][]ChatMessage{"messages": messages})
	})
}

// ChatPeerSummary represents a summary of a chat peer with recent activity
type ChatPeerSummary struct {
	UserID         int             `json:"user_id"`
	Profile        *ProfileSummary `json:"profile,omitempty"`
	LastMessageAt  *time.Time      `json:"last_message_at,omitempty"`
	UnreadMessages int             `json:"unread_messages"`
}

// GET /chats/summary
// One row per mutual match: latest message time and unread count, for
// sidebar ordering and badges.
func chatSummaryHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())

		rows, err := db.QueryContext(r.Context(), `
			WITH peers AS (
				SELECT target_id AS peer_id FROM matches
				WHERE actor_id = $1 AND mutual = TRUE
			),
			latest AS (
				SELECT p.peer_id, MAX(m.created_at) AS last_message_at
				FROM peers p
				LEFT JOIN messages m
				  ON (m.sender_id = $1 AND m.recipient_id = p.peer_id)
				  OR (m.sender_id = p.peer_id AND m.recipient_id = $1)
				GROUP BY p.peer_id
			),
			unreads AS (
				SELECT p.peer_id, COUNT(m.id) AS unread_count
				FROM peers p
				LEFT JOIN messages m
				  ON m.sender_id = p.peer_id AND m.recipient_id = $1 AND m.is_read = FALSE
				GROUP BY p.peer_id
			)
			SELECT p.peer_id, l.last_message_at, COALESCE(u.unread_count, 0)
			FROM peers p
			LEFT JOIN latest l ON l.peer_id = p.peer_id
			LEFT JOIN unreads u ON u.peer_id = p.peer_id
			ORDER BY COALESCE(l.last_message_at, to_timestamp(0)) DESC, p.peer_id ASC
		`, me)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer rows.Close()

		summaries := make([]ChatPeerSummary, 0, 16)
		ids := make([]int, 0, 16)
		for rows.Next() {
			var s ChatPeerSummary
			if err := rows.Scan(&s.UserID, &s.LastMessageAt, &s.UnreadMessages); err != nil {
				writeEngineError(w, err)
				return
			}
			summaries = append(summaries, s)
			ids = append(ids, s.UserID)
		}
		if err := rows.Err(); err != nil {
			writeEngineError(w, err)
			return
		}

		profiles, err := loadProfileSummaries(r.Context(), db, ids)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		for i := range summaries {
			summaries[i].Profile = profiles[summaries[i].UserID]
		}

		writeJSON(w, http.StatusOK, map[string][]ChatPeerSummary{"chats": summaries})
	})
}

// POST /chats/read?peer_id=123
// Ack from the client that messages from this peer have been read.
func chatsMarkReadHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())
		peerID, err := strconv.Atoi(r.URL.Query().Get("peer_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_peer_id")
			return
		}

		_, err = db.ExecContext(r.Context(), `
			UPDATE messages SET is_read = TRUE
			WHERE sender_id = $1 AND recipient_id = $2 AND is_read = FALSE
		`, peerID, me)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}
