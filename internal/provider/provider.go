// Package provider defines the boundary between rampart and whatever
// performs operations on the appliance, and ships the backends that stand
// in for it today.
package provider

import (
	"context"
	"errors"
	"fmt"

	"grimm.is/rampart/internal/model"
)

// Op names one provider call. Values double as metric and message labels.
type Op string

const (
	OpFetch   Op = "fetch"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpToggle  Op = "toggle"
	OpUpdates Op = "updates"
	OpInstall Op = "install"
	OpReboot  Op = "reboot"
	OpLogin   Op = "login"
	OpLogout  Op = "logout"
)

// Ops lists the calls each collection supports.
var Ops = map[model.Kind][]Op{
	model.KindFirewall: {OpFetch, OpCreate, OpUpdate, OpDelete, OpToggle},
	model.KindVPN:      {OpFetch, OpCreate, OpUpdate, OpDelete, OpToggle},
	model.KindNetwork:  {OpFetch, OpCreate, OpUpdate, OpDelete, OpToggle},
	model.KindUsers:    {OpFetch, OpCreate, OpUpdate, OpDelete, OpToggle},
	model.KindSystem:   {OpFetch, OpUpdates, OpInstall, OpReboot},
	model.KindSession:  {OpLogin, OpLogout},
}

// Supports reports whether kind has op.
func Supports(kind model.Kind, op Op) bool {
	for _, o := range Ops[kind] {
		if o == op {
			return true
		}
	}
	return false
}

// ErrNotFound is returned for an id the backend does not hold.
var ErrNotFound = errors.New("not found")

// Error is a failure whose Message is meant for the operator.
// Failures of any other type get a generic per-operation message.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an operator-facing Error.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Message extracts the operator-facing message from err, if it carries one.
func Message(err error) (string, bool) {
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message, true
	}
	return "", false
}

// Toggle is the result of enabling or disabling a record.
type Toggle struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Resource performs the five calls available on an id-keyed collection.
type Resource[T model.Record[T]] interface {
	List(ctx context.Context) ([]T, error)
	// Create stores draft and returns it with its assigned id.
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id string) (string, error)
	Toggle(ctx context.Context, id string, enabled bool) (Toggle, error)
}

// System performs the calls on the system singleton.
type System interface {
	Info(ctx context.Context) (model.SystemInfo, error)
	Updates(ctx context.Context) ([]model.Update, error)
	InstallUpdate(ctx context.Context, id string) (string, error)
	Reboot(ctx context.Context) error
}

// Authenticator is the placeholder login check.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.Principal, error)
	Logout(ctx context.Context) error
}

// Set bundles one backend per collection.
type Set struct {
	Firewall Resource[model.FirewallRule]
	VPN      Resource[model.VPNTunnel]
	Network  Resource[model.NetworkInterface]
	Users    Resource[model.UserAccount]
	System   System
	Auth     Authenticator
}
