package bot

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Client asks a running bot for moves.
type Client struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
}

// NewClient returns a client sending requests on subject.
func NewClient(nc *nats.Conn, subject string, timeout time.Duration) *Client {
	return &Client{nc: nc, subject: subject, timeout: timeout}
}

// RequestMove sends a position to the bot and returns its move in UCI and
// SAN. Both are empty when the position has no legal moves.
func (c *Client) RequestMove(req Request) (*Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	res, err := c.nc.Request(c.subject, data, c.timeout)
	if err != nil {
		log.Error().Msgf("%v for request", err)
		return nil, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))

	var resp Response
	if err := json.Unmarshal(res.Data, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New("Bot returned: " + resp.Error)
	}
	return &resp, nil
}
