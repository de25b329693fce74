package http

import (
	"net/http"
	"sync"

	"smartquiz/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ScoreFeed pushes newly saved score records to subscribed admin clients, so
// the aggregate view refreshes without polling.
type ScoreFeed struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[chan domain.ScoreRecord]struct{}
}

func NewScoreFeed(log zerolog.Logger) *ScoreFeed {
	return &ScoreFeed{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subscribers: make(map[chan domain.ScoreRecord]struct{}),
	}
}

// Publish fans a record out to every subscriber. A slow subscriber loses its
// oldest pending record rather than blocking the save path.
func (f *ScoreFeed) Publish(rec domain.ScoreRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- rec:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- rec
		}
	}
}

// Subscribe returns a channel of saved records. The caller must invoke the
// returned cancel function to avoid leaks.
func (f *ScoreFeed) Subscribe() (<-chan domain.ScoreRecord, func()) {
	ch := make(chan domain.ScoreRecord, 8)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// ServeWS upgrades the request and streams saved score records as JSON until
// the client disconnects.
func (f *ScoreFeed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := f.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Drain control/close frames; the feed is write-only.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case rec, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(rec); err != nil {
				f.log.Debug().Err(err).Msg("ws write failed, dropping subscriber")
				return
			}
		case <-done:
			return
		}
	}
}
