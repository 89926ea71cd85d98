package ftp

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadResponse_SingleLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCode int
		wantMsg  string
	}{
		{"simple success", "220 Welcome\r\n", 220, "Welcome"},
		{"error response", "550 File not found\r\n", 550, "File not found"},
		{"code with no message", "200 \r\n", 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bufio.NewReader(strings.NewReader(tt.input))
			resp, err := readResponse(reader)
			require.NoError(t, err)
			require.Equal(t, tt.wantCode, resp.Code)
			require.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestReadResponse_MultiLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCode int
		wantMsg  string
	}{
		{
			name: "multi-line response",
			input: "220-Welcome to FTP\r\n" +
				"220-This is line 2\r\n" +
				"220 Ready\r\n",
			wantCode: 220,
			wantMsg:  "Welcome to FTP\nThis is line 2\nReady",
		},
		{
			name: "transfer complete",
			input: "226-Transfer complete\r\n" +
				"226 Closing data connection\r\n",
			wantCode: 226,
			wantMsg:  "Transfer complete\nClosing data connection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bufio.NewReader(strings.NewReader(tt.input))
			resp, err := readResponse(reader)
			require.NoError(t, err)
			require.Equal(t, tt.wantCode, resp.Code)
			require.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestReadResponse_InvalidCode(t *testing.T) {
	t.Parallel()
	reader := bufio.NewReader(strings.NewReader("not-a-code\r\n"))
	_, err := readResponse(reader)
	require.Error(t, err)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestParsePASV(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantAddr string
		wantErr  bool
	}{
		{
			name:     "standard PASV response",
			input:    "227 Entering Passive Mode (192,168,1,1,195,149)",
			wantAddr: "192.168.1.1:50069",
		},
		{
			name:     "PASV with text before",
			input:    "227 Entering Passive Mode (10,0,0,5,78,52)",
			wantAddr: "10.0.0.5:20020",
		},
		{
			name:    "invalid PASV response",
			input:   "227 Invalid response",
			wantErr: true,
		},
		{
			name:    "PASV with invalid IP parts",
			input:   "227 Entering Passive Mode (300,168,1,1,195,149)",
			wantErr: true,
		},
		{
			name:     "PASV with 0.0.0.0 IP",
			input:    "227 Entering Passive Mode (0,0,0,0,195,149)",
			wantAddr: "0.0.0.0:50069",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := parsePASV(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantAddr, addr)
		})
	}
}

func TestResolveDataAddr(t *testing.T) {
	t.Parallel()
	require.Equal(t, "10.0.0.5:4000", resolveDataAddr("0.0.0.0:4000", "10.0.0.5"))
	require.Equal(t, "192.168.1.1:4000", resolveDataAddr("192.168.1.1:4000", "10.0.0.5"))
}

func TestResponse_CodeChecks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code  int
		is2xx bool
		is3xx bool
		is4xx bool
		is5xx bool
	}{
		{200, true, false, false, false},
		{220, true, false, false, false},
		{331, false, true, false, false},
		{421, false, false, true, false},
		{550, false, false, false, true},
	}

	for _, tt := range tests {
		resp := &Response{Code: tt.code}
		require.Equal(t, tt.is2xx, resp.Is2xx())
		require.Equal(t, tt.is3xx, resp.Is3xx())
		require.Equal(t, tt.is4xx, resp.Is4xx())
		require.Equal(t, tt.is5xx, resp.Is5xx())
	}
}

func TestCommandError(t *testing.T) {
	t.Parallel()
	err := &CommandError{Command: "STOR file.txt", Code: 550, Text: "Permission denied"}

	require.True(t, err.Is5xx())
	require.False(t, err.Is4xx())
	require.Equal(t, "ftp: STOR file.txt failed: 550 Permission denied", err.Error())
}

func TestReadResponse_RFC2389FeatureLines(t *testing.T) {
	t.Parallel()
	response := "211-Extensions supported:\r\n" +
		" MLST size*;create;modify*;perm;media-type\r\n" +
		" SIZE\r\n" +
		"211 END\r\n"

	reader := bufio.NewReader(strings.NewReader(response))
	resp, err := readResponse(reader)
	require.NoError(t, err)
	require.Equal(t, 211, resp.Code)
	require.Len(t, resp.Lines, 4)
}
