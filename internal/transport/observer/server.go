// Package observer streams growth frames to read-only viewer sessions
// over a websocket. Observers never influence the run: they consume the
// engine's snapshot stream and nothing else.
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"dendrite.sim/internal/protocol"
	"dendrite.sim/internal/sim/run"
)

type Server struct {
	runner *run.Runner
	boot   protocol.BootstrapResponse
	log    *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(r *run.Runner, boot protocol.BootstrapResponse, logger *log.Logger) *Server {
	return &Server{
		runner: r,
		boot:   boot,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		resp := s.boot
		resp.Count = s.runner.Count()

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub protocol.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, protocol.ErrProtoBadRequest)
			return
		}
		if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != protocol.Version {
			closeWith(conn, websocket.ClosePolicyViolation, protocol.ErrProtoBadRequest)
			return
		}
		every := sub.FrameEvery
		if every < 1 {
			every = 1
		}
		if every > 1000 {
			every = 1000
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		out := make(chan run.Frame, 4096)
		resp := make(chan []run.Frame, 1)

		var backlog []run.Frame
		live := false
		select {
		case s.runner.Join() <- run.JoinRequest{SessionID: sid, Out: out, Resp: resp}:
			// The runner may finish before it drains the join queue; fall
			// back to the stored frames in that case.
			select {
			case backlog = <-resp:
				live = true
			case <-s.runner.Done():
				backlog = s.runner.Backlog()
			}
		case <-s.runner.Done():
			// Run already over; serve the stored frames and finish.
			backlog = s.runner.Backlog()
		case <-time.After(2 * time.Second):
			closeWith(conn, websocket.CloseTryAgainLater, protocol.ErrRunBusy)
			return
		}
		if live {
			defer func() {
				select {
				case s.runner.Leave() <- sid:
				default:
					// Runner has stopped; nothing else to do.
				}
			}()
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Reader goroutine: the viewer sends nothing after SUBSCRIBE, we
		// only watch for the connection going away.
		go func() {
			for {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		var lastSent, lastSeen int
		send := func(f run.Frame) bool {
			lastSeen = f.Seq
			if f.Seq%every != 0 {
				return true
			}
			if err := writeJSON(conn, frameMsg(f)); err != nil {
				return false
			}
			lastSent = f.Seq
			return true
		}
		flush := func(f run.Frame) bool {
			// The final attachment is always delivered, stride or not.
			if lastSeen == lastSent || f.Seq != lastSeen {
				return true
			}
			return writeJSON(conn, frameMsg(f)) == nil
		}

		var last run.Frame
		for _, f := range backlog {
			last = f
			if !send(f) {
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
		if live {
		stream:
			for {
				select {
				case <-ctx.Done():
					return
				case f, ok := <-out:
					if !ok {
						break stream
					}
					last = f
					if !send(f) {
						return
					}
				}
			}
		}
		if !flush(last) {
			return
		}

		<-s.runner.Done()
		sum := s.runner.RunSummary()
		done := protocol.DoneMsg{
			Type:      protocol.TypeDone,
			Count:     sum.Count,
			MaxExtent: sum.MaxExtent,
			Radius:    sum.Radius,
		}
		if err := writeJSON(conn, done); err != nil {
			return
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
	}
}

func frameMsg(f run.Frame) protocol.FrameMsg {
	return protocol.FrameMsg{
		Type:               protocol.TypeFrame,
		Seq:                f.Seq,
		Count:              f.Count,
		Point:              f.Point,
		StepsToStick:       f.StepsToStick,
		BoundaryCollisions: f.BoundaryCollisions,
		SpawnDiameter:      f.SpawnDiameter,
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second))
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
