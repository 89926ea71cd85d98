package server

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func (s *session) handlePWD(_ string) {
	s.reply(257, fmt.Sprintf("\"%s\" is the current directory.", quotePath(s.vfs.Getwd())))
}

func (s *session) handleCWD(path string) {
	if err := s.vfs.Chdir(path); err != nil {
		s.replyError(err)
		return
	}
	s.reply(250, "Directory successfully changed.")
}

func (s *session) handleCDUP(_ string) {
	s.handleCWD("..")
}

func (s *session) handleLIST(arg string) {
	defer s.clearPasv()

	entries, err := s.vfs.List(arg)
	if err != nil {
		s.reply(550, "Error listing directory: "+err.Error())
		return
	}

	conn, err := s.connData()
	if err != nil {
		s.reply(425, "Can't open data connection.")
		return
	}
	defer conn.Close()

	s.reply(150, "Here comes the directory listing.")
	for _, entry := range entries {
		printListEntry(conn, entry)
	}
	conn.Close()
	s.reply(226, "Directory send OK.")
}

// printListEntry writes one line of a Unix-style long listing. Owner and
// group are always "owner"/"group": the virtual filesystem has no concept
// of uid/gid, only the OS-level permission bits in entry.Mode().
func printListEntry(w io.Writer, entry os.FileInfo) {
	fmt.Fprintf(w, "%s 1 owner group %d %s %s\r\n",
		entry.Mode().String(), entry.Size(), entry.ModTime().Format("Jan 02 15:04"), entry.Name())
}

func (s *session) handleMKD(path string) {
	if err := s.vfs.Mkdir(path); err != nil {
		s.replyError(err)
		return
	}
	s.logger().Info("directory created", "path", path)
	s.reply(257, fmt.Sprintf("\"%s\" created.", quotePath(path)))
}

// quotePath doubles embedded quote characters per RFC 959's convention for
// quoting a pathname inside a 257 reply.
func quotePath(path string) string {
	return strings.ReplaceAll(path, "\"", "\"\"")
}

func (s *session) handleRMD(path string) {
	if err := s.vfs.RemoveDir(path); err != nil {
		s.replyError(err)
		return
	}
	s.logger().Info("directory removed", "path", path)
	s.reply(250, "Directory removed.")
}

func (s *session) handleDELE(path string) {
	if err := s.vfs.Remove(path); err != nil {
		s.replyError(err)
		return
	}
	s.logger().Info("file deleted", "path", path)
	s.reply(250, "File deleted.")
}

func (s *session) handleRNFR(path string) {
	if _, err := s.vfs.Stat(path); err != nil {
		s.reply(550, "File not found.")
		return
	}
	s.renameFrom = path
	s.reply(350, "Requested file action pending further information.")
}

func (s *session) handleRNTO(path string) {
	if s.renameFrom == "" {
		s.reply(503, "Bad sequence of commands. Send RNFR first.")
		return
	}
	from := s.renameFrom
	s.renameFrom = ""

	if err := s.vfs.Rename(from, path); err != nil {
		s.replyError(err)
		return
	}
	s.logger().Info("file renamed", "from", from, "to", path)
	s.reply(250, "Requested file action successful, file renamed.")
}
