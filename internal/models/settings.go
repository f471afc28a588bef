package models

import "time"

// DateFormat is how draw dates are rendered and stored (ISO-8601, day
// granularity).
const DateFormat = "2006-01-02"

// LotterySettings is the configuration of the single active draw.
// It is a singleton: the store keeps exactly one row and replaces it
// wholesale on every update or import.
type LotterySettings struct {
	// DrawDate is the calendar date of the next draw. Only the date
	// part is meaningful.
	DrawDate time.Time `json:"drawDate"`

	// TicketPrice is the unit price per ticket, non-negative.
	TicketPrice float64 `json:"ticketPrice"`
}
