package kvcache

import (
	"encoding/json"
	"net"
	"time"
)

// ServeConn answers protocol requests on one daemon connection until the
// peer closes it or sends malformed JSON.
func ServeConn(conn net.Conn, kv KV) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		if err := enc.Encode(Handle(kv, req)); err != nil {
			return
		}
	}
}

// Handle executes a single protocol request against kv.
func Handle(kv KV, req Request) Response {
	switch req.Op {
	case OpGet:
		v, err := kv.Get(req.Key)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, Value: v}
	case OpSet:
		ttl := time.Duration(req.TTLSeconds) * time.Second
		if err := kv.Set(req.Key, req.Value, ttl); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	case OpDelete:
		if err := kv.Delete(req.Key); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	default:
		return Response{Error: "unknown op: " + req.Op}
	}
}
