package server

import (
	"time"

	"github.com/gorilla/websocket"
)

// readLoop reads client frames until the connection drops. Events are
// queued for the event loop; a full queue drops the event and tells
// the client.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.server.config.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.server.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.server.config.ReadTimeout))
	})

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				s.server.metrics.WSErrors.WithLabelValues("read").Inc()
				debugf("session %s read: %v", s.ID, err)
			}
			return
		}

		switch f.Type {
		case frameEvent:
			select {
			case s.events <- f:
			default:
				s.server.metrics.WSErrors.WithLabelValues("queue_full").Inc()
				s.sendFrame(frame{Type: frameError, Message: "event queue full"})
			}
		default:
			debugf("session %s: unknown frame type %q", s.ID, f.Type)
		}
	}
}

// writeLoop sends outbound frames and heartbeats until the session
// closes.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.server.config.HeartbeatInterval)
	defer ticker.Stop()
	defer s.Close()

	for {
		select {
		case f := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.server.config.WriteTimeout))
			if err := s.conn.WriteJSON(f); err != nil {
				s.server.metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(s.server.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.server.metrics.WSErrors.WithLabelValues("ping").Inc()
				return
			}
		case <-s.done:
			return
		}
	}
}
