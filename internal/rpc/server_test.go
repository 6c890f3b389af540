package rpc

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"ptysidecar/internal/supervisor"
)

func TestServerHandlesHelloOverSocket(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "test.sock")
	server := NewServer(sockPath, supervisor.NewRegistry(0, 0, 0, ""))

	done := make(chan error, 1)
	go func() { done <- server.Run() }()

	waitForSocket(t, sockPath)

	out, err := Send(sockPath, "hello", nil)
	if err != nil {
		t.Fatalf("Send hello: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.OK {
		t.Fatalf("response not ok: %+v", resp)
	}

	server.Stop()
	if err := <-done; err != nil {
		t.Fatalf("server.Run returned error after Stop: %v", err)
	}
}

func TestServerShutsDownOnDispose(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "test.sock")
	server := NewServer(sockPath, supervisor.NewRegistry(0, 0, 0, ""))

	done := make(chan error, 1)
	go func() { done <- server.Run() }()

	waitForSocket(t, sockPath)

	out, err := Send(sockPath, "dispose", nil)
	if err != nil {
		t.Fatalf("Send dispose: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.OK {
		t.Fatalf("dispose response not ok: %+v", resp)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server.Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not shut down after dispose")
	}
}

func waitForSocket(t *testing.T, path string) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if _, err := Send(path, "hello", nil); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
