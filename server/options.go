package server

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring an FTP server.
type Option func(*Server) error

// WithLogger sets a custom logger for the server.
// If not specified, slog.Default() is used.
//
// Example with debug logging:
//
//	logger := slog.New(tint.NewHandler(os.Stderr, nil))
//	s, _ := server.NewServer(":21", "/srv/ftp", server.WithUsers(users), server.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithWelcomeMessage sets a custom welcome banner sent to clients on connect.
// If not specified, defaults to "220 Service ready".
func WithWelcomeMessage(message string) Option {
	return func(s *Server) error {
		s.welcomeMessage = message
		return nil
	}
}

// WithMaxIdleTime sets the maximum time a connection may sit idle on the
// control channel before being closed. If not specified, defaults to 5
// minutes.
func WithMaxIdleTime(duration time.Duration) Option {
	return func(s *Server) error {
		s.maxIdleTime = duration
		return nil
	}
}

// WithDataTimeout sets how long LIST/RETR/STOR wait for the client to
// connect to the passive listener. The transfer itself, once connected, has
// no deadline. If not specified, defaults to 30 seconds.
func WithDataTimeout(duration time.Duration) Option {
	return func(s *Server) error {
		s.dataTimeout = duration
		return nil
	}
}

// WithAdvertisedHost sets the IPv4 address advertised in PASV replies.
// Required when the server's local address (as seen from inside a
// container, or behind NAT) isn't reachable by clients.
func WithAdvertisedHost(host string) Option {
	return func(s *Server) error {
		s.advertisedHost = host
		return nil
	}
}

// WithMaxLineBytes caps the length of a single control-channel command line.
// If not specified, defaults to 8192 bytes.
func WithMaxLineBytes(n int) Option {
	return func(s *Server) error {
		s.maxLineBytes = n
		return nil
	}
}

// WithUsers sets the static credential table used to authenticate USER/PASS.
// This option is required; NewServer returns an error when the table is
// empty.
func WithUsers(users Users) Option {
	return func(s *Server) error {
		s.users = users
		return nil
	}
}
