// Package access decides whether an actor may read or mutate an owned resource.
//
// The evaluator is a pure function. Callers load the resource, describe it with a
// Resource value and translate the Decision into their own error vocabulary.
package access

import (
	"errors"
)

// Operation is the kind of access requested.
type Operation int

const (
	OpRead Operation = iota + 1
	OpUpdate
	OpDelete
	OpCreateChild
)

func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpCreateChild:
		return "create-child"
	default:
		return "unknown"
	}
}

// Resource describes the ownership and visibility of the target. Resources without a
// visibility flag (gym logs, accounts) leave Public false.
type Resource struct {
	Exists  bool
	OwnerID string
	Public  bool
}

// Decision is the outcome of Evaluate.
type Decision int

const (
	Allow Decision = iota
	DenyNotFound
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyNotFound:
		return "deny-not-found"
	default:
		return "deny-forbidden"
	}
}

var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("access to resource forbidden")
)

// Err converts a denial into ErrNotFound or ErrForbidden; Allow yields nil.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyNotFound:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}

// Evaluate applies the ownership rules in order, first match wins:
//
//  1. create-child requires actor == owner.
//  2. update and delete require actor == owner, public or not.
//  3. read is allowed on public resources, otherwise requires actor == owner.
//  4. anything else is denied.
//
// An empty actor is anonymous and can only pass the public branch of rule 3.
func Evaluate(actor string, res Resource, op Operation) Decision {
	if !res.Exists {
		return DenyNotFound
	}
	isOwner := actor != "" && actor == res.OwnerID

	switch op {
	case OpCreateChild, OpUpdate, OpDelete:
		if isOwner {
			return Allow
		}
		return DenyForbidden
	case OpRead:
		if res.Public || isOwner {
			return Allow
		}
		return DenyForbidden
	default:
		return DenyForbidden
	}
}
