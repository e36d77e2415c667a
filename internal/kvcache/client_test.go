package kvcache

import (
	"bytes"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// serveKV runs the daemon accept loop against a Store using the same
// ServeConn that cmd/cache-server dispatches to.
func serveKV(t *testing.T, l net.Listener, s *Store) {
	t.Helper()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go ServeConn(conn, s)
		}
	}()
}

func TestClientRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "kv.bbolt"), Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	sock := filepath.Join(dir, "kv.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	serveKV(t, l, store)

	c := NewClient(sock)
	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("client Set failed: %v", err)
	}
	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("client Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Errorf("client Get = %q, want %q", got, "v")
	}

	if _, err := c.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("client Get on absent key returned %v, want ErrNotFound", err)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("client Delete failed: %v", err)
	}
	if _, err := c.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("client Get after delete returned %v, want ErrNotFound", err)
	}
}

func TestHandle(t *testing.T) {
	s := openTestStore(t)

	resp := Handle(s, Request{Op: OpSet, Key: "k", Value: []byte("v"), TTLSeconds: 60})
	if !resp.OK {
		t.Fatalf("set response: %+v", resp)
	}

	resp = Handle(s, Request{Op: OpGet, Key: "k"})
	if !resp.OK || !bytes.Equal(resp.Value, []byte("v")) {
		t.Errorf("get response = %+v, want OK with %q", resp, "v")
	}

	resp = Handle(s, Request{Op: OpGet, Key: "absent"})
	if resp.OK || resp.Error != ErrNotFound.Error() {
		t.Errorf("get on absent key = %+v, want not-found error", resp)
	}

	resp = Handle(s, Request{Op: OpDelete, Key: "k"})
	if !resp.OK {
		t.Errorf("delete response: %+v", resp)
	}

	resp = Handle(s, Request{Op: "compact"})
	if resp.OK || !strings.Contains(resp.Error, "unknown op") {
		t.Errorf("unknown op = %+v, want unknown-op error", resp)
	}
}
