// Package access decides who may see and change a task.
//
// The rule is a pure predicate over the caller, the task owner and the operation.
// Two modes exist and a deployment runs exactly one of them:
//
//   - ModeStrict: every operation needs a caller and only the owner ever sees a task.
//     Denials look like the task does not exist.
//   - ModeReadOpen: anyone may list and read; only the owner may update or delete.
//     Denials on visible tasks are reported as forbidden unless DenyAsNotFound is set.
package access

import (
	"fmt"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeReadOpen Mode = "read_open"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, ModeReadOpen:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown access mode %q", s)
	}
}

type Operation int

const (
	OpList Operation = iota
	OpCreate
	OpRead
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpRead:
		return "read"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// IsWrite reports whether the operation mutates an existing task.
func (o Operation) IsWrite() bool {
	return o == OpUpdate || o == OpDelete
}

// Caller is the identity resolved from a request. A nil *Caller is anonymous.
type Caller struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     string
}

// CanAccess is the ownership rule. ownerID is ignored for OpList and OpCreate.
func CanAccess(caller *Caller, ownerID uuid.UUID, op Operation, mode Mode) bool {
	if requiresCaller(op, mode) && caller == nil {
		return false
	}

	switch op {
	case OpCreate:
		return caller != nil
	case OpList:
		return true
	case OpRead:
		if mode == ModeReadOpen {
			return true
		}
		return caller.UserID == ownerID
	case OpUpdate, OpDelete:
		return caller != nil && caller.UserID == ownerID
	default:
		return false
	}
}

func requiresCaller(op Operation, mode Mode) bool {
	if mode == ModeStrict {
		return true
	}
	return op != OpList && op != OpRead
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyNotFound
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyNotFound:
		return "not_found"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Policy is the configured mode plus how read_open reports denied writes.
type Policy struct {
	Mode           Mode
	DenyAsNotFound bool
}

func NewPolicy(mode Mode, denyAsNotFound bool) Policy {
	return Policy{Mode: mode, DenyAsNotFound: denyAsNotFound}
}

// RequiresCaller reports whether op needs an authenticated caller under this policy.
func (p Policy) RequiresCaller(op Operation) bool {
	return requiresCaller(op, p.Mode)
}

// ListScope returns the owner a listing must be filtered to, or nil for no filter.
// The bool is false when the caller may not list at all.
func (p Policy) ListScope(caller *Caller) (*uuid.UUID, bool) {
	if !CanAccess(caller, uuid.Nil, OpList, p.Mode) {
		return nil, false
	}
	if p.Mode == ModeStrict {
		id := caller.UserID
		return &id, true
	}
	return nil, true
}

// Decide applies the predicate to an existing task owned by ownerID.
func (p Policy) Decide(caller *Caller, ownerID uuid.UUID, op Operation) Decision {
	if p.RequiresCaller(op) && caller == nil {
		return DenyUnauthenticated
	}
	if CanAccess(caller, ownerID, op, p.Mode) {
		return Allow
	}
	if p.Mode == ModeStrict || p.DenyAsNotFound {
		return DenyNotFound
	}
	return DenyForbidden
}
