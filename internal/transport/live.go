package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/mcp"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveRecords is pushed whenever the day's merged timeline changes.
type LiveRecords struct {
	Records []activity.Record `json:"records"`
}

// LiveError is pushed when one category's feed fails. Other categories keep
// streaming.
type LiveError struct {
	Category activity.Category `json:"category"`
	Error    string            `json:"error"`
	Code     string            `json:"code,omitempty"`
}

// mailbox decouples subscription callbacks from the socket writer. Only the
// latest snapshot is kept.
type mailbox struct {
	mu         sync.Mutex
	records    []activity.Record
	hasRecords bool
	errs       []LiveError
	notify     chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) putRecords(recs []activity.Record) {
	if recs == nil {
		recs = []activity.Record{}
	}
	m.mu.Lock()
	m.records, m.hasRecords = recs, true
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) putError(cat activity.Category, err error) {
	msg := LiveError{Category: cat, Error: err.Error()}
	if apiErr := mcp.MapError(err); apiErr != nil {
		msg.Code = apiErr.Code
	}
	m.mu.Lock()
	m.errs = append(m.errs, msg)
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, 0, len(m.errs)+1)
	for _, e := range m.errs {
		out = append(out, e)
	}
	m.errs = nil
	if m.hasRecords {
		out = append(out, LiveRecords{Records: m.records})
		m.records, m.hasRecords = nil, false
	}
	return out
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	childID := chi.URLParam(r, "childID")
	dateKey, err := activity.ParseDateKey(chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	box := newMailbox()
	sub, err := s.timeline.Subscribe(childID, dateKey, box.putRecords, box.putError)
	if err != nil {
		s.logger.Warn("live timeline subscribe failed", "child_id", childID, "date", dateKey, "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Close()
	s.logger.Debug("live timeline opened", "child_id", childID, "date", dateKey)

	// The reader only services control frames and notices the client leaving.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-box.notify:
			for _, msg := range box.drain() {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					s.logger.Debug("live timeline write failed", "child_id", childID, "error", err)
					return
				}
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			s.logger.Debug("live timeline closed", "child_id", childID, "date", dateKey)
			return
		case <-r.Context().Done():
			return
		}
	}
}
