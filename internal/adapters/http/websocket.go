package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/evroute/internal/adapters/nats"
	"github.com/samirrijal/evroute/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// feedChannels maps the channel names clients use to NATS subjects.
var feedChannels = map[string]string{
	"routes":   natsadapter.SubjectRoutePlanned,
	"failures": natsadapter.SubjectUpstreamFailedPrefix + "*",
}

// feedCommand is a client request on the live feed.
// {"action":"subscribe","channel":"failures"}
type feedCommand struct {
	Action  string `json:"action"`  // subscribe | unsubscribe
	Channel string `json:"channel"` // routes | failures, default routes
}

var errFeedClosed = errors.New("feed session closed")

// feedConn is the part of a WebSocket connection a session writes to.
type feedConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// feedSession is one dashboard connection and its NATS subscriptions.
type feedSession struct {
	conn feedConn
	nc   *nats.Conn

	writeMu sync.Mutex
	closed  bool                          // guarded by writeMu
	subs    map[string]*nats.Subscription // channel -> subscription
}

func newFeedSession(conn feedConn, nc *nats.Conn) *feedSession {
	return &feedSession{conn: conn, nc: nc, subs: make(map[string]*nats.Subscription)}
}

// WebSocketHandler relays gateway events from NATS to dashboard clients.
// Every connection starts on the routes channel.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		s := newFeedSession(c, nc)
		remote := c.RemoteAddr().String()

		metrics.ActiveWebSockets.Inc()
		slog.Info("ws client connected", "remote", remote)
		defer func() {
			s.close()
			metrics.ActiveWebSockets.Dec()
			slog.Info("ws client disconnected", "remote", remote)
		}()

		if err := s.subscribe("routes"); err != nil {
			slog.Warn("ws default subscribe failed", "remote", remote, "error", err)
			return
		}

		done := make(chan struct{})
		defer close(done)
		go s.keepAlive(done)

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			s.handle(raw)
		}
	}
}

func (s *feedSession) handle(raw []byte) {
	var cmd feedCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		s.reply("error", "invalid JSON")
		return
	}
	if cmd.Channel == "" {
		cmd.Channel = "routes"
	}
	if _, ok := feedChannels[cmd.Channel]; !ok {
		s.reply("error", "unknown channel: "+cmd.Channel)
		return
	}

	switch cmd.Action {
	case "subscribe":
		if _, ok := s.subs[cmd.Channel]; ok {
			s.reply("status", "already subscribed", "channel", cmd.Channel)
			return
		}
		if err := s.subscribe(cmd.Channel); err != nil {
			s.reply("error", "subscribe failed: "+err.Error())
			return
		}
		s.reply("status", "subscribed", "channel", cmd.Channel)
	case "unsubscribe":
		sub, ok := s.subs[cmd.Channel]
		if !ok {
			s.reply("error", "not subscribed to "+cmd.Channel)
			return
		}
		_ = sub.Unsubscribe()
		delete(s.subs, cmd.Channel)
		s.reply("status", "unsubscribed", "channel", cmd.Channel)
	default:
		s.reply("error", "unknown action: "+cmd.Action)
	}
}

func (s *feedSession) subscribe(channel string) error {
	sub, err := s.nc.Subscribe(feedChannels[channel], func(msg *nats.Msg) {
		// Event payloads are already JSON.
		_ = s.write(websocket.TextMessage, msg.Data)
	})
	if err != nil {
		return err
	}
	s.subs[channel] = sub
	return nil
}

// reply sends a small JSON object built from key/value pairs.
func (s *feedSession) reply(kv ...string) {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	data, _ := json.Marshal(m)
	_ = s.write(websocket.TextMessage, data)
}

// write serialises writes from the read loop, NATS callbacks and pings.
// NATS may still deliver after close; those writes are dropped.
func (s *feedSession) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return errFeedClosed
	}
	return s.conn.WriteMessage(messageType, data)
}

func (s *feedSession) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *feedSession) close() {
	for channel, sub := range s.subs {
		_ = sub.Unsubscribe()
		delete(s.subs, channel)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.conn.Close()
}
