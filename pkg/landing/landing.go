// Package landing contains the core domain types for the landing page subscription service.
package landing

import (
	"errors"
	"fmt"
	"time"
)

// Subscriber is one confirmed email signup. It is created once and never updated.
type Subscriber struct {
	CreatedAt time.Time `json:"created_at" bson:"createdAt"` // Set on creation, immutable
	ID        string    `json:"id" bson:"_id"`
	Email     string    `json:"email" bson:"email"` // Unique, compared byte-exact
}

// Result is the outcome of a subscribe request.
type Result int

const (
	Created            Result = iota // New subscriber persisted and notified
	AlreadySubscribed                // Email already present
	ValidationFailed                 // Missing or malformed email
	NotificationFailed               // Persisted, but the welcome email failed
	StoreUnavailable                 // Persistence layer error
)

func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case AlreadySubscribed:
		return "already_subscribed"
	case ValidationFailed:
		return "validation_failed"
	case NotificationFailed:
		return "notification_failed"
	case StoreUnavailable:
		return "store_unavailable"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// ErrAlreadySubscribed is returned by stores when the email already has a record.
var ErrAlreadySubscribed = errors.New("email already subscribed")

// StoreError indicates an infrastructure failure in the subscriber store.
type StoreError struct {
	Err error
	Op  string
}

// NewStoreError wraps err as a StoreError for operation op.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err means the email is already subscribed.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadySubscribed)
}

// IsStoreError reports whether err is an infrastructure failure from a store.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
