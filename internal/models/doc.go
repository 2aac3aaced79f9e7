// Package models defines the core domain models for famfund.
//
// # Shared expenses
//
// The contribute feature is modelled with:
//   - Participant: a named party inside one ledger
//   - ExpenseEvent: one shared cost paid by one participant for a group
//   - SplitShare: the derived portion of an event owed by one participant
//   - Transfer: a proposed (or recorded) repayment between two participants
//   - LedgerInfo: the persisted header of a shared expense pool
//
// All amounts are integers in minor currency units (cents). Floating point is never
// used for money.
//
// # Personal finance
//
// Category and Transaction track a user's own spending, income and savings.
//
// # Relationships
//
// Models reference each other by ID strings instead of pointers. A Ledger owns its
// events; participants are shared by id and never duplicated.
package models
