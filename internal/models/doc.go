// Package models defines the core domain models for LotoControl.
//
// # Models
//
//   - Client: one ledger line per person for the current draw
//   - LotterySettings: the single active draw's configuration
//
// There is exactly one active draw at a time: LotterySettings is a
// singleton record, replaced wholesale whenever a new draw is configured
// or imported. Clients are created individually or in bulk via the
// spreadsheet import and updated as returned tickets and payments are
// recorded.
//
// # Design Principles
//
// 1. **Single user**: no accounts, no ownership fields
// 2. **One draw at a time**: settings carry no history
// 3. **Validation at the model boundary**: Client.Validate is the single
// place the ledger invariants live; the storage layer calls it on every
// insert and update
package models
