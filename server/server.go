package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Server is the FTP server.
//
// It listens for incoming connections and dispatches each to its own
// session, handled in its own goroutine. A session serves commands
// strictly serially: the server never runs two commands for the same
// client concurrently, and there is no ABOR-style interruption of an
// in-flight transfer.
//
// Lifecycle:
//  1. Create with NewServer()
//  2. Start with ListenAndServe() or Serve()
//  3. Runs until the listener is closed or Shutdown is called
//
// Basic example:
//
//	users := server.NewUsers(map[string]string{"bob": "hunter2"})
//	s, err := server.NewServer(":2121", "/srv/ftp", server.WithUsers(users))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(s.ListenAndServe())
type Server struct {
	addr string
	root string

	users Users

	logger *slog.Logger

	welcomeMessage string

	maxIdleTime  time.Duration
	dataTimeout  time.Duration
	maxLineBytes int

	advertisedHost string

	mu         sync.Mutex
	listener   net.Listener
	conns      map[net.Conn]struct{}
	inShutdown atomic.Bool
	activeConn atomic.Int32
}

// ErrServerClosed is returned by Serve and ListenAndServe after Shutdown.
var ErrServerClosed = errors.New("ftp: server closed")

// NewServer creates an FTP server listening on addr and serving files
// rooted at root. root must exist; every client's view of the filesystem is
// confined to it regardless of the account that authenticated.
func NewServer(addr, root string, options ...Option) (*Server, error) {
	s := &Server{
		addr:           addr,
		root:           root,
		logger:         slog.Default(),
		welcomeMessage: "220 Service ready",
		maxIdleTime:    5 * time.Minute,
		dataTimeout:    30 * time.Second,
		maxLineBytes:   8192,
		conns:          make(map[net.Conn]struct{}),
	}

	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if len(s.users) == 0 {
		return nil, fmt.Errorf("at least one user is required (use WithUsers)")
	}

	return s, nil
}

// ListenAndServe is a convenience wrapper: it builds a server rooted at root
// and serves it on addr until an error occurs.
func ListenAndServe(addr, root string, options ...Option) error {
	s, err := NewServer(addr, root, options...)
	if err != nil {
		return err
	}
	return s.ListenAndServe()
}

// ListenAndServe opens a TCP listener on the server's configured address
// and serves it. It blocks until the server stops or an error occurs.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("ftp: listen on %s: %w", s.addr, err)
	}

	s.logger.Info("ftp server listening", "addr", s.addr, "root", s.root)
	return s.Serve(ln)
}

// Serve accepts connections on l until it is closed or Shutdown is called.
// Each connection is handled in its own goroutine.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.inShutdown.Load() {
		s.mu.Unlock()
		l.Close()
		return ErrServerClosed
	}
	s.listener = l
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.listener == l {
			s.listener = nil
		}
		s.mu.Unlock()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Error("accept error", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Shutdown stops accepting new connections and waits for active sessions to
// finish, or forcibly closes them once ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)

	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for s.activeConn.Load() > 0 {
			time.Sleep(100 * time.Millisecond)
		}
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		s.mu.Lock()
		conns := s.conns
		s.conns = make(map[net.Conn]struct{})
		s.mu.Unlock()

		for conn := range conns {
			conn.Close()
		}

		if err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	s.mu.Lock()
	if s.inShutdown.Load() {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	s.activeConn.Add(1)

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.activeConn.Add(-1)
	}()

	sess := newSession(s, conn)
	sess.serve()
}
