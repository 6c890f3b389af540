package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ptysidecar/internal/supervisor"
)

// Server accepts connections on a Unix-domain socket and dispatches one
// request per connection to a Dispatcher. Acceptance is strictly serial:
// one connection is read, dispatched, and answered before the next is
// accepted — there is no per-connection goroutine and no multiplexing.
type Server struct {
	SocketPath string
	Dispatcher *Dispatcher

	ln       net.Listener
	stopping atomic.Bool
}

// NewServer builds a server bound to socketPath, dispatching onto reg.
func NewServer(socketPath string, reg *supervisor.Registry) *Server {
	return &Server{SocketPath: socketPath, Dispatcher: NewDispatcher(reg)}
}

// Run binds the socket (removing any stale file at SocketPath first) and
// serves requests until a "dispose" call succeeds, then removes the socket
// file and returns. Bind and parent-directory-create failures are returned
// as fatal errors.
func (s *Server) Run() error {
	if _, err := os.Stat(s.SocketPath); err == nil {
		if err := os.Remove(s.SocketPath); err != nil {
			return fmt.Errorf("remove stale socket %s: %w", s.SocketPath, err)
		}
	}
	if parent := filepath.Dir(s.SocketPath); parent != "." {
		if err := os.MkdirAll(parent, 0o700); err != nil {
			return fmt.Errorf("create socket parent %s: %w", parent, err)
		}
	}

	ln, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.SocketPath, err)
	}
	s.ln = ln
	defer os.Remove(s.SocketPath)
	defer ln.Close()

	log.Printf("ptysidecar: listening on %s", s.SocketPath)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stopping.Load() {
				log.Printf("ptysidecar: shutting down")
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		shutdown := s.handleConn(conn)
		if shutdown {
			log.Printf("ptysidecar: dispose received, shutting down")
			return nil
		}
	}
}

// Stop causes a blocked Run to return nil, as if "dispose" had been called.
// Safe to call from a signal handler concurrently with Run.
func (s *Server) Stop() {
	s.stopping.Store(true)
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

// handleConn reads exactly one request to EOF, dispatches it, writes
// exactly one response, and closes the connection. It reports whether the
// server should stop accepting after this request.
func (s *Server) handleConn(conn net.Conn) bool {
	defer conn.Close()

	correlationID := uuid.New().String()
	start := time.Now()

	raw, err := io.ReadAll(conn)
	if err != nil {
		writeResponse(conn, Response{Error: fmt.Sprintf("failed to read request: %v", err)})
		log.Printf("ptysidecar: request=%s read failed: %v", correlationID, err)
		return false
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		writeResponse(conn, Response{Error: fmt.Sprintf("invalid request JSON: %v", err)})
		log.Printf("ptysidecar: request=%s invalid JSON: %v", correlationID, err)
		return false
	}

	result, shutdown, err := s.Dispatcher.Handle(req)
	elapsed := time.Since(start)

	var resp Response
	if err != nil {
		resp = Response{OK: false, Error: err.Error()}
		log.Printf("ptysidecar: request=%s method=%s elapsed=%s error=%v", correlationID, req.Method, elapsed, err)
	} else {
		resp = Response{OK: true, Result: result}
		log.Printf("ptysidecar: request=%s method=%s elapsed=%s ok", correlationID, req.Method, elapsed)
	}

	writeResponse(conn, resp)
	return shutdown && err == nil
}

func writeResponse(conn net.Conn, resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("ptysidecar: encode response: %v", err)
		return
	}
	if _, err := conn.Write(payload); err != nil {
		log.Printf("ptysidecar: write response: %v", err)
	}
}
