package domain

import "github.com/shopspring/decimal"

// Role represents user role in the system
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// MemberStatus is the billing state of a member.
type MemberStatus string

const (
	StatusPaid     MemberStatus = "paid"
	StatusPending  MemberStatus = "pending"
	StatusOverdue  MemberStatus = "overdue"
	StatusDeceased MemberStatus = "deceased"
)

// Valid reports whether s is one of the known member statuses.
func (s MemberStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue, StatusDeceased:
		return true
	}
	return false
}

// StatusForPending derives a member status from the pending balance.
// Forced-pending operations and the deceased override bypass this.
func StatusForPending(pending decimal.Decimal) MemberStatus {
	if pending.LessThanOrEqual(decimal.Zero) {
		return StatusPaid
	}
	return StatusPending
}

// BillStatus is the settlement state of a bill.
type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
)

// PaymentSource records how funds arrived.
type PaymentSource string

const (
	SourceManual  PaymentSource = "manual"
	SourceGateway PaymentSource = "gateway"
)
