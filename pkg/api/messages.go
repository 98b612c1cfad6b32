package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts are decimals encoded as JSON strings ("30.00"); numbers are
// accepted on input.

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Members in join order.
	Members []*User `json:"members,omitempty"`
}

type MemberInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Strategy    string          `json:"strategy"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Balance is one directional debt row: Debtor owes Creditor Amount.
type Balance struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id"`
	ExpenseID  string          `json:"expense_id,omitempty"`
	DebtorID   string          `json:"debtor_id"`
	CreditorID string          `json:"creditor_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Share is one user's portion of an expense.
type Share struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// MemberBalance is a member's aggregate position in a group. A positive
// NetBalance means others owe this member.
type MemberBalance struct {
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	NetBalance      decimal.Decimal `json:"net_balance"`
	TotalOwed       decimal.Decimal `json:"total_owed"`
	TotalOwedToThem decimal.Decimal `json:"total_owed_to_them"`
	OwesTo          []*Share        `json:"owes_to"`
	OwedBy          []*Share        `json:"owed_by"`
}

// GroupService

type CreateGroupRequest struct {
	Name    string         `json:"name"`
	Members []*MemberInput `json:"members,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID string       `json:"group_id"`
	Member  *MemberInput `json:"member"`
}

type AddMemberResponse struct {
	User *User `json:"user"`

	// Added is false when the user was already a member.
	Added bool `json:"added"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct {
	BalancesRemoved int64 `json:"balances_removed"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`

	// NetCounterparties collapses each pair of members into one entry in
	// the owes_to/owed_by lists. Totals are unaffected.
	NetCounterparties bool `json:"net_counterparties,omitempty"`
}

type GetGroupBalancesResponse struct {
	// Balances has one entry per member, in join order.
	Balances []*MemberBalance `json:"balances"`
}

// ExpenseService

type RecordExpenseRequest struct {
	GroupID     string            `json:"group_id"`
	PayerID     string            `json:"payer_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description,omitempty"`
	Strategy    string            `json:"strategy"`
	Percentages []decimal.Decimal `json:"percentages,omitempty"`
}

type RecordExpenseResponse struct {
	Expense   *Expense        `json:"expense"`
	Balances  []*Balance      `json:"balances"`
	Remainder decimal.Decimal `json:"remainder"`
}

type PreviewSplitRequest struct {
	GroupID     string            `json:"group_id"`
	PayerID     string            `json:"payer_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Strategy    string            `json:"strategy"`
	Percentages []decimal.Decimal `json:"percentages,omitempty"`
}

type PreviewSplitResponse struct {
	Shares    []*Share        `json:"shares"`
	Debts     []*Share        `json:"debts"`
	Remainder decimal.Decimal `json:"remainder"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type ListBalancesRequest struct {
	GroupID    string `json:"group_id"`
	DebtorID   string `json:"debtor_id,omitempty"`
	CreditorID string `json:"creditor_id,omitempty"`
}

type ListBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}
