package customer

import (
	"strconv"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProspect Status = "Prospect"
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusProspect, StatusActive, StatusInactive:
		return Status(s), true
	}
	return "", false
}

// Column names exactly as they appear in the storage header.
const (
	ColumnCustomerID = "Customer ID"
	ColumnFirstName  = "First Name"
	ColumnLastName   = "Last Name"
	ColumnEmail      = "Email"
	ColumnPhone      = "Phone"
	ColumnStatus     = "Status"
	ColumnAmount     = "Amount"
)

// Columns returns the declared schema in storage order.
func Columns() []string {
	return []string{
		ColumnCustomerID,
		ColumnFirstName,
		ColumnLastName,
		ColumnEmail,
		ColumnPhone,
		ColumnStatus,
		ColumnAmount,
	}
}

type Customer struct {
	CustomerID int64           `json:"customerId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Status     Status          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
}

// Fields returns the row's cells as strings, in declared column order.
// A zero CustomerID serializes as an empty cell: zero is the unset marker
// left behind when the ID column failed type coercion on load.
func (c Customer) Fields() []string {
	id := ""
	if c.CustomerID != 0 {
		id = strconv.FormatInt(c.CustomerID, 10)
	}
	return []string{
		id,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		string(c.Status),
		c.Amount.String(),
	}
}
