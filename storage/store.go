// Package storage defines a minimal persistence interface used to hold role
// definitions and role assignments between requests. The authorization engine
// itself never touches a store; it consumes immutable snapshots assembled by
// the roles package from whatever Store implementation the host wires in.
//
// Models are represented as structs and should have a `PK() string` method.
package storage

import (
	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"google.golang.org/grpc/codes"
)

var (
	// Returned when a record does not exist.
	ErrNotFound = errors.NewC("record not found", codes.NotFound)

	// Returned when a record conflicts with an existing key.
	ErrAlreadyExists = errors.NewC("primary key already exists", codes.AlreadyExists)

	// Returned when List is called with a non-slice.
	ErrSliceRequired = errors.NewC("pointer slice required", codes.InvalidArgument)

	// Returned when List is called with a filter and slice of mismatching types.
	ErrTypeMismatch = errors.NewC("type mismatch", codes.InvalidArgument)

	// Returned when a store is passed an uninitialized pointer.
	ErrNilModel = errors.NewC("uninitialized pointer passed as model", codes.InvalidArgument)
)

// Store offers basic create, read, update, upsert, delete, list, and exists
// operations for persisting models.
type Store interface {
	// Create multiple entities. Fails if any primary key already exists.
	Create(models ...Model) error

	// Read a record with the given id.
	Read(id string, model Model) error

	// Update multiple entities. Fails if any record does not exist.
	Update(models ...Model) error

	// Update or insert multiple entities.
	Upsert(models ...Model) error

	// Delete a record. Only the primary key needs to be populated.
	Delete(model Model) error

	// List populates the slice of models with records that have fields which
	// match the non-zero fields of filter.
	List(models any, filter Model) error

	// Exists returns true if a record with the given id exists.
	Exists(id string, model Model) (bool, error)
}
