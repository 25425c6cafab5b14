package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// peerUpdate is one position report from the feed.
type peerUpdate struct {
	PeerID string  `json:"peerId"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// peerFeed subscribes to a websocket peer-position stream and hands updates
// to the game loop over a buffered channel. The game drains it in Update, so
// the engine is only ever touched from its own goroutine.
type peerFeed struct {
	url     string
	log     zerolog.Logger
	updates chan peerUpdate
}

func newPeerFeed(url string, log zerolog.Logger) *peerFeed {
	return &peerFeed{
		url:     url,
		log:     log,
		updates: make(chan peerUpdate, 256),
	}
}

// run connects and reads forever, reconnecting with doubling backoff capped
// at a minute.
func (f *peerFeed) run() {
	backoff := 1 * time.Second
	for {
		f.log.Info().Str("url", f.url).Msg("connecting to peer feed")
		c, _, err := websocket.DefaultDialer.Dial(f.url, nil)
		if err != nil {
			f.log.Warn().Err(err).Dur("retry", backoff).Msg("peer feed dial failed")
			time.Sleep(backoff)
			backoff *= 2
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				f.log.Warn().Err(err).Msg("peer feed read failed, reconnecting")
				break
			}
			var upd peerUpdate
			if err := json.Unmarshal(message, &upd); err != nil {
				f.log.Debug().Err(err).Msg("skipping malformed peer update")
				continue
			}
			if upd.PeerID == "" {
				continue
			}
			select {
			case f.updates <- upd:
			default:
				// Drop when the game loop falls behind; positions are
				// superseded by the next report anyway.
			}
		}
		c.Close()
	}
}
