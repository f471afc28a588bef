// Package calculator derives balances from ledger state. Everything in
// here is a pure function of its inputs: no storage, no clock, no
// shared state.
package calculator

import (
	"sort"

	"lotocontrol/internal/models"
)

// Balance computes the signed amount a client currently owes:
//
//	totalDue = (ticketsDelivered - ticketsReturned) × ticketPrice
//	balance  = totalDue + previousDebt - amountPaid
//
// Positive means the client owes money; zero or negative means settled
// or overpaid.
func Balance(c models.Client, ticketPrice float64) float64 {
	totalDue := float64(c.TicketsDelivered-c.TicketsReturned) * ticketPrice
	return totalDue + c.PreviousDebt - c.AmountPaid
}

// HasDebt reports whether the client's balance is strictly positive.
// An exactly settled client (balance 0) has no debt.
func HasDebt(c models.Client, ticketPrice float64) bool {
	return Balance(c, ticketPrice) > 0
}

// ClientBalance pairs a client with its balance for one settings
// snapshot. Recomputed on every read, never persisted.
type ClientBalance struct {
	Client  models.Client `json:"client"`
	Balance float64       `json:"balance"`
	HasDebt bool          `json:"hasDebt"`
}

// WithBalances computes per-client balances, preserving the input
// order. A nil settings snapshot means no draw has been configured yet;
// the ticket price is then zero and balances reduce to
// previousDebt - amountPaid.
func WithBalances(clients []models.Client, settings *models.LotterySettings) []ClientBalance {
	var price float64
	if settings != nil {
		price = settings.TicketPrice
	}
	out := make([]ClientBalance, len(clients))
	for i, c := range clients {
		b := Balance(c, price)
		out[i] = ClientBalance{Client: c, Balance: b, HasDebt: b > 0}
	}
	return out
}

// Summary aggregates the whole ledger for presentation.
type Summary struct {
	// Clients sorted by descending balance, debtors first.
	Clients []ClientBalance `json:"clients"`

	// TotalPending is the signed sum of all balances. A client in
	// credit subtracts from the total.
	TotalPending float64 `json:"totalPending"`

	ClientsWithDebt    int `json:"clientsWithDebt"`
	ClientsWithoutDebt int `json:"clientsWithoutDebt"`
}

// Summarize computes the aggregate view for the given client list and
// settings snapshot (nil settings handled as in WithBalances).
func Summarize(clients []models.Client, settings *models.LotterySettings) Summary {
	balances := WithBalances(clients, settings)
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Balance > balances[j].Balance
	})

	s := Summary{Clients: balances}
	for _, cb := range balances {
		s.TotalPending += cb.Balance
		if cb.HasDebt {
			s.ClientsWithDebt++
		}
	}
	s.ClientsWithoutDebt = len(balances) - s.ClientsWithDebt
	return s
}
