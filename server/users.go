package server

// userRecord is one entry in the server's static user table: a password and
// the permissions granted once USER/PASS succeed.
type userRecord struct {
	password string
	readOnly bool
}

// Users is a static, in-memory credential table. Authentication is a plain
// equality check against the stored password; there is no hashing, salting,
// or external identity provider involved.
type Users map[string]userRecord

// NewUsers builds a Users table from username/password pairs, granting
// read-write access to each. Use UserOption to mark specific accounts
// read-only.
func NewUsers(pairs map[string]string, opts ...UserOption) Users {
	u := make(Users, len(pairs))
	for name, pass := range pairs {
		u[name] = userRecord{password: pass}
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UserOption adjusts a single account's record after NewUsers populates the
// table from its password map.
type UserOption func(Users)

// ReadOnly marks user as unable to STOR, DELE, RMD, MKD, or RNFR/RNTO.
func ReadOnly(user string) UserOption {
	return func(u Users) {
		rec, ok := u[user]
		if !ok {
			return
		}
		rec.readOnly = true
		u[user] = rec
	}
}

// authenticate checks user/pass against the table. ok reports whether the
// credentials matched; readOnly reports whether the account is barred from
// mutating operations.
func (u Users) authenticate(user, pass string) (readOnly bool, ok bool) {
	rec, found := u[user]
	if !found || rec.password != pass {
		return false, false
	}
	return rec.readOnly, true
}
