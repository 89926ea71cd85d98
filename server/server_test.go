package server_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ftp "github.com/nullfield/miniftp"
	"github.com/nullfield/miniftp/server"
)

func startTestServer(t *testing.T) (addr string, shutdown func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	users := server.NewUsers(map[string]string{
		"bob":   "hunter2",
		"guest": "guest",
	}, server.ReadOnly("guest"))

	s, err := server.NewServer(ln.Addr().String(), t.TempDir(),
		server.WithUsers(users),
		server.WithAdvertisedHost("127.0.0.1"),
		server.WithMaxIdleTime(2*time.Second),
	)
	require.NoError(t, err)

	go s.Serve(ln)

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	}
}

func TestServer_LoginAndPwd(t *testing.T) {
	t.Parallel()
	addr, shutdown := startTestServer(t)
	defer shutdown()

	c, err := ftp.Dial(addr, ftp.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Quit()

	require.NoError(t, c.Login("bob", "hunter2"))

	dir, err := c.Pwd()
	require.NoError(t, err)
	require.Equal(t, "/", dir)
}

func TestServer_LoginRejectsBadPassword(t *testing.T) {
	t.Parallel()
	addr, shutdown := startTestServer(t)
	defer shutdown()

	c, err := ftp.Dial(addr, ftp.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Quit()

	err = c.Login("bob", "wrong")
	require.Error(t, err)
}

func TestServer_StoreRetrieveDeleteRoundTrip(t *testing.T) {
	t.Parallel()
	addr, shutdown := startTestServer(t)
	defer shutdown()

	c, err := ftp.Dial(addr, ftp.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Quit()
	require.NoError(t, c.Login("bob", "hunter2"))

	payload := "round trip through a real listener"
	require.NoError(t, c.Store("greeting.txt", strings.NewReader(payload)))

	var buf strings.Builder
	require.NoError(t, c.Retrieve("greeting.txt", &buf))
	require.Equal(t, payload, buf.String())

	lines, err := c.List("")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "greeting.txt")

	require.NoError(t, c.Dele("greeting.txt"))
}

func TestServer_MkdDirectoryLifecycle(t *testing.T) {
	t.Parallel()
	addr, shutdown := startTestServer(t)
	defer shutdown()

	c, err := ftp.Dial(addr, ftp.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Quit()
	require.NoError(t, c.Login("bob", "hunter2"))

	require.NoError(t, c.Mkd("photos"))
	require.NoError(t, c.Cwd("photos"))

	dir, err := c.Pwd()
	require.NoError(t, err)
	require.Equal(t, "/photos", dir)

	require.NoError(t, c.Cdup())
	require.NoError(t, c.Rmd("photos"))
}

func TestServer_ReadOnlyUserCannotWrite(t *testing.T) {
	t.Parallel()
	addr, shutdown := startTestServer(t)
	defer shutdown()

	c, err := ftp.Dial(addr, ftp.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Quit()
	require.NoError(t, c.Login("guest", "guest"))

	err = c.Mkd("nope")
	require.Error(t, err)
	var cmdErr *ftp.CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, 550, cmdErr.Code)
}

func TestServer_EscapingPathIsRejected(t *testing.T) {
	t.Parallel()
	addr, shutdown := startTestServer(t)
	defer shutdown()

	c, err := ftp.Dial(addr, ftp.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Quit()
	require.NoError(t, c.Login("bob", "hunter2"))

	err = c.Cwd("../../../../etc")
	require.Error(t, err)
}
