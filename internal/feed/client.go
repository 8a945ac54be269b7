// Package feed consumes per-frame viseme score frames from an upstream
// phoneme recognizer over a websocket and hands them to the animation
// driver. This is thin I/O glue; score generation itself lives upstream.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/facial"
)

// Frame is the wire format of one score frame.
type Frame struct {
	Visemes  []float32 `json:"visemes"`
	Laughter float32   `json:"laughter"`
}

// Client maintains a websocket connection to the score feed with
// reconnection. Received frames are converted and delivered through the
// callback; the caller decides what thread consumes them.
type Client struct {
	url     string
	log     zerolog.Logger
	onFrame func(facial.ScoreFrame)

	mu        sync.RWMutex
	connected bool
	cancel    context.CancelFunc
}

func NewClient(url string, onFrame func(facial.ScoreFrame), log zerolog.Logger) *Client {
	return &Client{
		url:     url,
		log:     log.With().Str("component", "score-feed").Logger(),
		onFrame: onFrame,
	}
}

// Connect starts the read loop in the background.
func (c *Client) Connect(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.connectLoop(ctx)
}

// Disconnect stops the read loop.
func (c *Client) Disconnect() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

// IsConnected returns connection status.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) connectLoop(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.readFrames(ctx); err != nil {
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("Score feed disconnected")

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
		} else {
			backoff = time.Second
		}
	}
}

func (c *Client) readFrames(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.log.Info().Str("url", c.url).Msg("Connected to score feed")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Warn().Err(err).Msg("Malformed score frame, skipping")
			continue
		}
		c.onFrame(convert(frame))
	}
}

// convert copies the wire frame into the fixed-size score vector.
// Frames shorter than the class count leave the tail at zero; longer
// frames are truncated.
func convert(f Frame) facial.ScoreFrame {
	var out facial.ScoreFrame
	for i, v := range f.Visemes {
		if i >= int(facial.VisemeClassCount) {
			break
		}
		out.Visemes[i] = v
	}
	out.Laughter = f.Laughter
	return out
}
