package kvcache

import (
	"encoding/json"
	"errors"
	"net"
	"time"
)

// Client implements KV against a cache daemon listening on a Unix socket.
// Each operation dials a fresh connection; the daemon is local, so the cost
// is negligible and it keeps the client free of connection state.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

func (c *Client) roundTrip(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, 500*time.Millisecond)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// respError maps daemon error strings back onto the package sentinels so
// errors.Is works across the socket boundary.
func respError(msg string) error {
	switch msg {
	case ErrNotFound.Error():
		return ErrNotFound
	case ErrExpired.Error():
		return ErrExpired
	default:
		return errors.New(msg)
	}
}

func (c *Client) Get(key string) ([]byte, error) {
	resp, err := c.roundTrip(Request{Op: OpGet, Key: key})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, respError(resp.Error)
	}
	return resp.Value, nil
}

func (c *Client) Set(key string, value []byte, ttl time.Duration) error {
	resp, err := c.roundTrip(Request{Op: OpSet, Key: key, Value: value, TTLSeconds: int64(ttl / time.Second)})
	if err != nil {
		return err
	}
	if !resp.OK {
		return respError(resp.Error)
	}
	return nil
}

func (c *Client) Delete(key string) error {
	resp, err := c.roundTrip(Request{Op: OpDelete, Key: key})
	if err != nil {
		return err
	}
	if !resp.OK {
		return respError(resp.Error)
	}
	return nil
}
