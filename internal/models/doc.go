// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Group: a set of people sharing expenses
//   - User: a person, identified by a unique email address
//   - Membership: links one User to one Group, in join order
//   - Expense: an immutable record of one payment made on behalf of a group
//   - Balance: one directional debt edge derived from an expense
//
// # Design Principles
//
// 1. **Append-only debts**: Balance rows are never updated. Net positions are
// derived by summing rows on read.
// 2. **Decimal money**: amounts use shopspring/decimal, never float64.
// 3. **Avoid circular references**: relationships are ID strings, not pointers.
package models
