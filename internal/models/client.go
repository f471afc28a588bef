package models

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord wraps every validation failure so callers can
// distinguish bad input from storage failures.
var ErrInvalidRecord = errors.New("invalid ledger record")

// Client represents one ledger line: the tickets and money state of a
// single person for the current draw.
type Client struct {
	// ID is the unique identifier for the client (UUID format),
	// assigned by the store on creation.
	ID string `json:"id"`

	// Name is the display name. Must be non-empty; uniqueness is not
	// enforced, two clients may share a name.
	Name string `json:"name"`

	// TicketsDelivered is the number of tickets issued to the client
	// for the current draw.
	TicketsDelivered int `json:"ticketsDelivered"`

	// TicketsReturned is the number of unsold tickets handed back.
	// Never exceeds TicketsDelivered.
	TicketsReturned int `json:"ticketsReturned"`

	// AmountPaid is the money received from the client, cumulative
	// across edits within the current draw.
	AmountPaid float64 `json:"amountPaid"`

	// PreviousDebt is the unpaid balance carried over from an earlier
	// draw, entered manually or via import.
	PreviousDebt float64 `json:"previousDebt"`
}

// Validate checks the ledger invariants. It is called by the storage
// layer on every insert and update, so a returned count above the
// delivered count can never reach the database.
func (c *Client) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidRecord)
	}
	if c.TicketsDelivered < 0 {
		return fmt.Errorf("%w: ticketsDelivered must not be negative, got %d", ErrInvalidRecord, c.TicketsDelivered)
	}
	if c.TicketsReturned < 0 {
		return fmt.Errorf("%w: ticketsReturned must not be negative, got %d", ErrInvalidRecord, c.TicketsReturned)
	}
	if c.TicketsReturned > c.TicketsDelivered {
		return fmt.Errorf("%w: ticketsReturned (%d) exceeds ticketsDelivered (%d)",
			ErrInvalidRecord, c.TicketsReturned, c.TicketsDelivered)
	}
	if c.AmountPaid < 0 {
		return fmt.Errorf("%w: amountPaid must not be negative, got %g", ErrInvalidRecord, c.AmountPaid)
	}
	if c.PreviousDebt < 0 {
		return fmt.Errorf("%w: previousDebt must not be negative, got %g", ErrInvalidRecord, c.PreviousDebt)
	}
	return nil
}
