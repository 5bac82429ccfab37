package model

import (
	"errors"
	"net/mail"
	"regexp"
)

// Role is a user's permission level.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleReadonly Role = "readonly"
)

// Roles lists every valid Role.
var Roles = []Role{RoleAdmin, RoleUser, RoleReadonly}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleReadonly:
		return true
	}
	return false
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := parseEnum("role", b, Roles)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// CanWrite reports whether the role may dispatch mutating operations.
func (r Role) CanWrite() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	case RoleReadonly:
		return false
	}
	return false
}

// NeverLoggedIn is the LastLogin value of a freshly created account. It is
// a stored token, not display text: consoles render it through the i18n
// catalog (i18n.MsgNeverLoggedIn).
const NeverLoggedIn = "never"

var usernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_.-]{0,31}$`)

// UserAccount is a dashboard login.
type UserAccount struct {
	ID        string `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	FullName  string `json:"fullName" yaml:"fullName"`
	Email     string `json:"email" yaml:"email"`
	Role      Role   `json:"role" yaml:"role"`
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	LastLogin string `json:"lastLogin" yaml:"lastLogin"`
}

func (u UserAccount) Kind() Kind       { return KindUsers }
func (u UserAccount) RecordID() string { return u.ID }

func (u UserAccount) WithID(id string) UserAccount {
	u.ID = id
	return u
}

func (u UserAccount) WithEnabled(enabled bool) UserAccount {
	u.Enabled = enabled
	return u
}

func (u UserAccount) Validate() error {
	var errs []error
	if !usernamePattern.MatchString(u.Username) {
		errs = append(errs, invalid("username", "%q must be 1-32 lowercase characters", u.Username))
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		errs = append(errs, invalid("email", "invalid address %q", u.Email))
	}
	if err := checkEnum("role", u.Role, Roles); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Principal is the identity of the logged-in operator.
type Principal struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Role     Role   `json:"role" yaml:"role"`
}
