package server

func (s *session) handleUSER(user string) {
	s.user = user
	s.isLoggedIn = false
	s.reply(331, "User name okay, need password.")
}

func (s *session) handlePASS(pass string) {
	readOnly, ok := s.server.users.authenticate(s.user, pass)
	if !ok {
		s.logger().Warn("authentication failed")
		s.reply(530, "Login incorrect.")
		return
	}

	s.readOnly = readOnly
	s.vfs = newVFS(s.server.root, readOnly)
	s.isLoggedIn = true
	s.logger().Info("authentication succeeded")
	s.reply(230, "User logged in, proceed.")
}

func (s *session) handleSYST(_ string) {
	s.reply(215, "UNIX Type: L8")
}
