package dto

import (
	"crm-engine/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Status    string           `json:"status"`
	Amount    *decimal.Decimal `json:"amount"`
}

func (r *CreateCustomerRequest) Input() customer.NewCustomerInput {
	return customer.NewCustomerInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Status:    r.Status,
		Amount:    r.Amount,
	}
}

// UpdateCustomerRequest is a partial update: absent fields stay untouched.
type UpdateCustomerRequest struct {
	FirstName *string          `json:"firstName"`
	LastName  *string          `json:"lastName"`
	Email     *string          `json:"email"`
	Phone     *string          `json:"phone"`
	Status    *string          `json:"status"`
	Amount    *decimal.Decimal `json:"amount"`
}

func (r *UpdateCustomerRequest) Updates() customer.CustomerUpdate {
	return customer.CustomerUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Status:    r.Status,
		Amount:    r.Amount,
	}
}

type CustomerResponse struct {
	CustomerID int64           `json:"customerId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		CustomerID: cust.CustomerID,
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Email:      cust.Email,
		Phone:      cust.Phone,
		Status:     string(cust.Status),
		Amount:     cust.Amount,
	}
}

func NewCustomerListResponse(rows []customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, len(rows))
	for i := range rows {
		resp[i] = NewCustomerResponse(&rows[i])
	}
	return resp
}

// MessageResponse carries the human confirmation message for a mutation,
// plus the affected record when one exists.
type MessageResponse struct {
	Message  string            `json:"message"`
	Customer *CustomerResponse `json:"customer,omitempty"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
