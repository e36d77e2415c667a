package kvcache

// Wire protocol between the MCP server and the cache daemon: newline-free
// JSON values over a Unix domain socket, one request followed by one response
// per round trip on a connection.

const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
)

type Request struct {
	Op         string `json:"op"`
	Key        string `json:"key"`
	Value      []byte `json:"value,omitempty"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Value []byte `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}
