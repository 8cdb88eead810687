package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/randalmurphal/postflow/pkg/postflow"
	"github.com/randalmurphal/postflow/pkg/postflow/event"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadLimit    = 1 << 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The frontend is served from the same origin; non-browser
	// clients carry no Origin header at all.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsEnvelope frames every server-to-client message.
type wsEnvelope struct {
	Type     string            `json:"type"`
	Progress *event.Progress   `json:"progress,omitempty"`
	Result   *generateResponse `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// handleWS runs one pipeline per connection. The server greets with a
// connected frame, the client sends a single generateRequest frame, and
// the server streams progress events followed by a final result frame,
// then closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	if !s.writeWS(conn, wsEnvelope{Type: "connected"}) {
		return
	}

	var req generateRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeWS(conn, wsEnvelope{Type: "error", Error: "invalid request frame"})
		return
	}
	if err := req.normalize(); err != nil {
		s.writeWS(conn, wsEnvelope{Type: "error", Error: err.Error()})
		return
	}

	runID := uuid.NewString()
	s.logRequest(r, "run_id", runID, "topic", req.Topic)

	progress, cancel := s.bus.Subscribe(runID)
	defer cancel()

	type runResult struct {
		state *postflow.State
		err   error
	}
	done := make(chan runResult, 1)
	go func() {
		st, runErr := s.runner.Run(r.Context(), req.Topic,
			postflow.Platform(req.Platform), postflow.Tone(req.Tone),
			postflow.WithRunID(runID),
			postflow.WithRunNotifier(event.NewNotifier(s.bus, runID)),
		)
		done <- runResult{state: st, err: runErr}
	}()

	for {
		select {
		case p, ok := <-progress:
			if !ok {
				return
			}
			if !s.writeWS(conn, wsEnvelope{Type: "progress", Progress: &p}) {
				return
			}
		case res := <-done:
			// Flush progress events published before the run
			// finished.
			for {
				select {
				case p := <-progress:
					if !s.writeWS(conn, wsEnvelope{Type: "progress", Progress: &p}) {
						return
					}
					continue
				default:
				}
				break
			}
			if res.state == nil {
				msg := "pipeline did not start"
				if res.err != nil {
					msg = res.err.Error()
				}
				s.writeWS(conn, wsEnvelope{Type: "error", Error: msg})
				return
			}
			s.record(r, res.state)
			resp := snapshotResponse(res.state)
			s.writeWS(conn, wsEnvelope{Type: "result", Result: &resp})
			return
		}
	}
}

// writeWS sends one envelope, reporting whether the connection is
// still usable.
func (s *Server) writeWS(conn *websocket.Conn, env wsEnvelope) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(env); err != nil {
		if s.logger != nil && !errors.Is(err, websocket.ErrCloseSent) {
			s.logger.Debug("websocket write failed", slog.String("error", err.Error()))
		}
		return false
	}
	return true
}
