package server

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

func (s *session) handleTYPE(arg string) {
	switch strings.ToUpper(arg) {
	case "A", "A N":
		s.transferType = "A"
		s.reply(200, "Type set to A.")
	case "I", "L 8":
		s.transferType = "I"
		s.reply(200, "Type set to I.")
	default:
		s.reply(504, "Type not supported.")
	}
}

// handlePASV opens a listener for the next data connection and advertises
// its address. Each PASV call replaces any listener left over from a
// previous, unused one.
func (s *session) handlePASV(_ string) {
	if s.pasvListener != nil {
		s.pasvListener.Close()
	}

	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		s.reply(425, "Can't open passive connection.")
		return
	}
	s.pasvListener = ln

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	host := s.server.advertisedHost
	if host == "" {
		host, _, _ = net.SplitHostPort(s.conn.LocalAddr().String())
	}

	ip := net.ParseIP(host)
	var parts []string
	if ip != nil && ip.To4() != nil {
		parts = strings.Split(ip.To4().String(), ".")
	}
	if len(parts) != 4 {
		parts = []string{"0", "0", "0", "0"}
	}

	p1, p2 := port/256, port%256
	s.reply(227, fmt.Sprintf("Entering Passive Mode (%s,%s,%s,%s,%d,%d).",
		parts[0], parts[1], parts[2], parts[3], p1, p2))
}

// connData accepts the single inbound data connection for the command in
// flight. The server never dials out for data (no active mode): the client
// must have already issued PASV.
func (s *session) connData() (net.Conn, error) {
	if s.pasvListener == nil {
		return nil, fmt.Errorf("no passive listener open")
	}

	ln := s.pasvListener
	s.pasvListener = nil

	if t, ok := ln.(*net.TCPListener); ok {
		_ = t.SetDeadline(time.Now().Add(s.server.dataTimeout))
	}
	conn, err := ln.Accept()
	ln.Close()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// clearPasv releases any passive listener left pending for this command. It
// is a no-op once connData has already consumed it, so LIST/RETR/STOR can
// defer it unconditionally and still release the listener on every early
// return, not just the success path.
func (s *session) clearPasv() {
	if s.pasvListener != nil {
		s.pasvListener.Close()
		s.pasvListener = nil
	}
}

func (s *session) handleRETR(path string) {
	defer s.clearPasv()

	file, err := s.vfs.Open(path, false)
	if err != nil {
		s.replyError(err)
		return
	}
	defer file.Close()

	conn, err := s.connData()
	if err != nil {
		s.reply(425, "Can't open data connection.")
		return
	}
	defer conn.Close()

	s.reply(150, "Opening data connection for RETR.")

	start := time.Now()
	n, err := io.Copy(conn, file)
	conn.Close()
	if err != nil {
		s.reply(426, "Connection closed; transfer aborted.")
		return
	}

	s.logger().Info("transfer complete", "op", "RETR", "path", path, "bytes", n, "duration_ms", time.Since(start).Milliseconds())
	s.reply(226, "Transfer complete.")
}

func (s *session) handleSTOR(path string) {
	defer s.clearPasv()

	file, err := s.vfs.Open(path, true)
	if err != nil {
		s.replyError(err)
		return
	}
	defer file.Close()

	conn, err := s.connData()
	if err != nil {
		s.reply(425, "Can't open data connection.")
		return
	}
	defer conn.Close()

	s.reply(150, "Opening data connection for STOR.")

	start := time.Now()
	n, err := io.Copy(file, conn)
	conn.Close()
	if err != nil {
		s.reply(426, "Connection closed; transfer aborted.")
		return
	}

	s.logger().Info("transfer complete", "op", "STOR", "path", path, "bytes", n, "duration_ms", time.Since(start).Milliseconds())
	s.reply(226, "Transfer complete.")
}
