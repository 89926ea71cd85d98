package ftp

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

// Client drives a single FTP control connection. All exported methods
// block until the server's reply for that command has been read; callers
// must not issue overlapping commands on the same Client.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader

	timeout time.Duration
	logger  *slog.Logger
	dialer  *net.Dialer

	host string
	port string

	currentType string

	mu          sync.Mutex
	lastCommand time.Time

	activeDataConn net.Conn
}

// Dial connects to an FTP server at addr ("host:port") and reads its
// greeting.
//
//	client, err := ftp.Dial("ftp.example.com:21")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Quit()
func Dial(addr string, options ...Option) (*Client, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, &ConnectionError{Op: "parse address", Err: err}
	}

	c := &Client{
		host:    host,
		port:    port,
		timeout: 30 * time.Second,
		dialer:  &net.Dialer{},
		logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1})),
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, &ConnectionError{Op: "apply option", Err: err}
		}
	}

	c.dialer.Timeout = c.timeout

	if err := c.connect(); err != nil {
		return nil, err
	}

	c.lastCommand = time.Now()

	return c, nil
}

// connect establishes the control connection and reads the server's 220
// greeting.
func (c *Client) connect() error {
	addr := net.JoinHostPort(c.host, c.port)
	c.logger.Debug("connecting to ftp server", "addr", addr)

	conn, err := c.dialer.Dial("tcp", addr)
	if err != nil {
		return &ConnectionError{Op: "dial", Err: err}
	}
	c.conn = conn
	c.reader = bufio.NewReader(c.conn)

	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			c.conn.Close()
			return &ConnectionError{Op: "set read deadline", Err: err}
		}
	}

	resp, err := readResponse(c.reader)
	if err != nil {
		c.conn.Close()
		return &ConnectionError{Op: "read greeting", Err: err}
	}

	c.logger.Debug("ftp greeting", "code", resp.Code, "message", resp.Message)

	if resp.Code != 220 {
		c.conn.Close()
		return &ConnectionError{Op: "greeting", Err: &CommandError{Command: "CONNECT", Code: resp.Code, Text: resp.Message}}
	}

	return nil
}

// Login authenticates with USER and, if the server asks for one, PASS.
func (c *Client) Login(username, password string) error {
	resp, err := c.sendCommand("USER", username)
	if err != nil {
		return err
	}

	if resp.Code == 230 {
		return nil
	}

	if resp.Code != 331 {
		return &AuthError{Code: resp.Code, Text: resp.Message}
	}

	resp, err = c.sendCommand("PASS", password)
	if err != nil {
		return err
	}
	if !resp.Is2xx() {
		return &AuthError{Code: resp.Code, Text: resp.Message}
	}

	return nil
}

// Quit sends QUIT and closes the control connection. Any open data
// connection is closed first.
func (c *Client) Quit() error {
	if c.conn == nil {
		return nil
	}

	c.mu.Lock()
	if c.activeDataConn != nil {
		c.activeDataConn.Close()
		c.activeDataConn = nil
	}
	c.mu.Unlock()

	_, _ = c.sendCommand("QUIT")

	return c.conn.Close()
}

// Pwd returns the current working directory via PWD.
func (c *Client) Pwd() (string, error) {
	resp, err := c.expect2xx("PWD")
	if err != nil {
		return "", err
	}

	// Example: 257 "/home/user" is the current directory. A '"' embedded in
	// the path itself is doubled ("" -> ") inside the quotes.
	path, ok := parseQuotedPath(resp.Message)
	if !ok {
		return "", &ProtocolError{Context: "PWD", Text: resp.Message}
	}

	return path, nil
}

// parseQuotedPath extracts the first double-quoted, doubled-quote-escaped
// path from an FTP reply message (RFC 959's 257 convention).
func parseQuotedPath(msg string) (string, bool) {
	start := strings.Index(msg, "\"")
	if start == -1 {
		return "", false
	}

	var sb strings.Builder
	rest := msg[start+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] != '"' {
			sb.WriteByte(rest[i])
			continue
		}
		if i+1 < len(rest) && rest[i+1] == '"' {
			sb.WriteByte('"')
			i++
			continue
		}
		return sb.String(), true
	}

	return "", false
}

// Cwd changes the working directory.
func (c *Client) Cwd(path string) error {
	_, err := c.expect2xx("CWD", path)
	return err
}

// Cdup moves up one directory level.
func (c *Client) Cdup() error {
	_, err := c.expect2xx("CDUP")
	return err
}

// Mkd creates a directory.
func (c *Client) Mkd(path string) error {
	_, err := c.expect2xx("MKD", path)
	return err
}

// Rmd removes a directory.
func (c *Client) Rmd(path string) error {
	_, err := c.expect2xx("RMD", path)
	return err
}

// Dele deletes a file.
func (c *Client) Dele(path string) error {
	_, err := c.expect2xx("DELE", path)
	return err
}

// Rename renames a file or directory using RNFR/RNTO.
func (c *Client) Rename(from, to string) error {
	resp, err := c.sendCommand("RNFR", from)
	if err != nil {
		return err
	}

	if resp.Code != 350 {
		return &CommandError{Command: "RNFR", Code: resp.Code, Text: resp.Message}
	}

	_, err = c.expect2xx("RNTO", to)
	return err
}

// List returns the raw lines of a LIST listing. No structural parsing is
// performed; each line is whatever the server sent.
func (c *Client) List(path string) ([]string, error) {
	var dataConn net.Conn
	var err error

	if path == "" {
		_, dataConn, err = c.cmdDataConnFrom("LIST")
	} else {
		_, dataConn, err = c.cmdDataConnFrom("LIST", path)
	}
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(dataConn)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		dataConn.Close()
		return nil, &TransferError{Command: "LIST", Err: err}
	}

	if err := c.finishDataConn(dataConn); err != nil {
		return nil, err
	}

	return lines, nil
}

// Type sets the transfer type ("A" or "I"), skipping the TYPE command if
// it's already in effect.
func (c *Client) Type(transferType string) error {
	if c.currentType == transferType {
		return nil
	}

	if _, err := c.expectCode(200, "TYPE", transferType); err != nil {
		return err
	}

	c.currentType = transferType
	return nil
}

// TypeAscii sets the transfer type to ASCII.
func (c *Client) TypeAscii() error { return c.Type("A") }

// TypeBinary sets the transfer type to binary (image).
func (c *Client) TypeBinary() error { return c.Type("I") }

// Noop sends a NOOP command.
func (c *Client) Noop() error {
	_, err := c.expect2xx("NOOP")
	return err
}

// Syst returns the server's system type string.
func (c *Client) Syst() (string, error) {
	resp, err := c.expect2xx("SYST")
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UploadFile opens localPath and streams it to remotePath via Store.
func (c *Client) UploadFile(localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return &TransferError{Command: "STOR", Err: err}
	}
	defer f.Close()

	return c.Store(remotePath, f)
}

// DownloadFile creates or truncates localPath and streams remotePath into
// it via Retrieve, removing the partial file on failure.
func (c *Client) DownloadFile(remotePath, localPath string) error {
	f, err := os.Create(localPath)
	if err != nil {
		return &TransferError{Command: "RETR", Err: err}
	}
	defer f.Close()

	if err := c.Retrieve(remotePath, f); err != nil {
		_ = os.Remove(localPath)
		return err
	}

	return nil
}

func (c *Client) String() string {
	return fmt.Sprintf("ftp.Client{%s}", net.JoinHostPort(c.host, c.port))
}
