package ftp

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"
)

// pasvRegex matches the PASV reply's trailing six-tuple, e.g.
// "227 Entering Passive Mode (192,168,1,1,195,149)". Using the last match
// in the reply tolerates servers that echo the tuple inside free text
// before the parenthesized form.
var pasvRegex = regexp.MustCompile(`\((\d+),(\d+),(\d+),(\d+),(\d+),(\d+)\)`)

// parsePASV parses a PASV reply and returns "host:port", e.g.
// "192,168,1,1,195,149" -> "192.168.1.1:50069" (195*256+149 = 50069).
func parsePASV(response string) (string, error) {
	all := pasvRegex.FindAllStringSubmatch(response, -1)
	if len(all) == 0 {
		return "", &ProtocolError{Context: "PASV", Text: fmt.Sprintf("no address tuple in reply: %s", response)}
	}
	matches := all[len(all)-1]

	var h [4]int
	for i := 0; i < 4; i++ {
		val, err := strconv.Atoi(matches[i+1])
		if err != nil || val < 0 || val > 255 {
			return "", &ProtocolError{Context: "PASV", Text: fmt.Sprintf("invalid IP octet: %s", matches[i+1])}
		}
		h[i] = val
	}
	host := fmt.Sprintf("%d.%d.%d.%d", h[0], h[1], h[2], h[3])
	if ip := net.ParseIP(host); ip == nil || ip.To4() == nil {
		return "", &ProtocolError{Context: "PASV", Text: fmt.Sprintf("invalid IPv4 address: %s", host)}
	}

	p1, err1 := strconv.Atoi(matches[5])
	p2, err2 := strconv.Atoi(matches[6])
	if err1 != nil || err2 != nil || p1 < 0 || p1 > 255 || p2 < 0 || p2 > 255 {
		return "", &ProtocolError{Context: "PASV", Text: fmt.Sprintf("invalid port octets: %s, %s", matches[5], matches[6])}
	}
	port := p1*256 + p2

	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// resolveDataAddr substitutes the control connection's peer host for an
// unroutable 0.0.0.0 advertised by PASV — common behind NAT.
func resolveDataAddr(pasvAddr, controlHost string) string {
	host, port, err := net.SplitHostPort(pasvAddr)
	if err != nil {
		return pasvAddr
	}
	if host == "0.0.0.0" {
		return net.JoinHostPort(controlHost, port)
	}
	return pasvAddr
}

// openPassiveDataConn issues PASV, parses the returned address, and dials
// it. This is the client's only data-connection mode.
func (c *Client) openPassiveDataConn() (net.Conn, error) {
	resp, err := c.sendCommand("PASV")
	if err != nil {
		return nil, err
	}

	if !resp.Is2xx() {
		return nil, &CommandError{Command: "PASV", Code: resp.Code, Text: resp.Message}
	}

	addr, err := parsePASV(resp.String())
	if err != nil {
		return nil, err
	}
	addr = resolveDataAddr(addr, c.host)

	dataConn, err := c.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Op: "dial data connection", Err: err}
	}

	if c.timeout > 0 {
		return &deadlineConn{Conn: dataConn, timeout: c.timeout}, nil
	}

	return dataConn, nil
}

// cmdDataConnFrom opens a passive data connection, then sends cmd on the
// control channel and requires a 1xx (transfer starting) reply. The
// caller drives the data connection and must call finishDataConn
// afterward to read the final reply.
func (c *Client) cmdDataConnFrom(cmd string, args ...string) (*Response, net.Conn, error) {
	dataConn, err := c.openPassiveDataConn()
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	c.activeDataConn = dataConn
	c.mu.Unlock()

	resp, err := c.sendCommand(cmd, args...)
	if err != nil {
		dataConn.Close()
		c.mu.Lock()
		c.activeDataConn = nil
		c.mu.Unlock()
		return nil, nil, err
	}

	if resp.Code < 100 || resp.Code >= 200 {
		dataConn.Close()
		c.mu.Lock()
		c.activeDataConn = nil
		c.mu.Unlock()
		return resp, nil, &TransferError{Command: cmd, Code: resp.Code, Text: resp.Message}
	}

	return resp, dataConn, nil
}

// finishDataConn closes the data connection and reads the final control
// reply (226 on success), per spec: the reply always follows the data
// socket's close.
func (c *Client) finishDataConn(dataConn net.Conn) error {
	if err := dataConn.Close(); err != nil {
		return &TransferError{Command: "DATA", Err: err}
	}

	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return &ConnectionError{Op: "set read deadline", Err: err}
		}
	}

	resp, err := readResponse(c.reader)
	if err != nil {
		return &ConnectionError{Op: "read transfer completion reply", Err: err}
	}

	if c.logger != nil {
		c.logger.Debug("ftp data transfer complete", "code", resp.Code, "message", resp.Message)
	}

	c.mu.Lock()
	c.activeDataConn = nil
	c.mu.Unlock()

	if !resp.Is2xx() {
		return &TransferError{Command: "DATA", Code: resp.Code, Text: resp.Message}
	}

	return nil
}
