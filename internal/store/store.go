// Package store defines the persistence contracts for the billing
// ledger, per-sender state and derivados, so the jsonfile and postgres
// backings stay interchangeable.
package store

import (
	"context"
	"errors"

	"github.com/Richetti123/CashFlow/internal/domain"
)

var (
	ErrNotFound  = errors.New("registro no encontrado")
	ErrDuplicate = errors.New("el registro ya existe")
)

// Ledger is the client/payment record store. Every mutation is durably
// persisted before the call returns.
type Ledger interface {
	// Register adds a new client. The first payment entry is seeded by
	// the caller inside c.Payments. Fails with ErrDuplicate when the
	// number is already present.
	Register(ctx context.Context, c domain.Client) error
	Get(ctx context.Context, number string) (domain.Client, error)
	// List returns records in store iteration order, not sorted.
	List(ctx context.Context) ([]domain.Client, error)
	Remove(ctx context.Context, number string) error
	AppendPayment(ctx context.Context, number string, p domain.Payment) error
	// ConfirmPayment marks the latest unconfirmed payment with proofRef,
	// or appends a new confirmed entry dated date when none is pending.
	ConfirmPayment(ctx context.Context, number, proofRef, date string) error
	SetSuspended(ctx context.Context, number string, suspended bool) error
	// BindChat attaches a transport chat to a registered number.
	BindChat(ctx context.Context, number string, chatID int64) error
	FindByChat(ctx context.Context, chatID int64) (domain.Client, error)
}

// UserStates is the per-sender flag store.
type UserStates interface {
	// GetOrCreate returns the state for id, creating a zero-value record
	// on first access. Atomic for concurrent calls on the same id.
	GetOrCreate(ctx context.Context, id string) (domain.UserState, error)
	Update(ctx context.Context, id string, awaiting bool, clientName, clientNumber string) error
}

// Derivados is the grouping-reference store.
type Derivados interface {
	Add(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]domain.Derivado, error)
}
