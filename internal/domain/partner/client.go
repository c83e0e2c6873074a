package partner

import (
	"strings"

	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/domain/shared/valueobject"
)

// ClientStatus mirrors the backend's client status
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client is a customer company that places orders and receives dispatches
type Client struct {
	ID            string           `json:"id"`
	CompanyName   string           `json:"company_name"`
	ContactPerson string           `json:"contact_person"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	Address       string           `json:"address"`
	GSTNumber     string           `json:"gst_number"`
	Status        ClientStatus     `json:"status"`
	CreatedAt     shared.Timestamp `json:"created_at"`
}

// StateCode returns the GST state code of the client, or "" if unknown
func (c Client) StateCode() string {
	return valueobject.GSTINStateCode(c.GSTNumber)
}

// IsActive reports whether the client can receive new orders
func (c Client) IsActive() bool {
	return c.Status == "" || c.Status == ClientStatusActive
}

// ClientInput is the create/update form for a client
type ClientInput struct {
	CompanyName   string       `json:"company_name" form:"company_name" binding:"required,min=2,max=200"`
	ContactPerson string       `json:"contact_person" form:"contact_person" binding:"max=100"`
	Email         string       `json:"email" form:"email" binding:"omitempty,email"`
	Phone         string       `json:"phone" form:"phone" binding:"omitempty,min=10,max=15"`
	Address       string       `json:"address" form:"address" binding:"max=500"`
	GSTNumber     string       `json:"gst_number" form:"gst_number"`
	Status        ClientStatus `json:"status,omitempty" form:"status"`
}

// Normalize trims fields and upper-cases the GSTIN
func (in ClientInput) Normalize() ClientInput {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.GSTNumber = valueobject.NormalizeGSTIN(in.GSTNumber)
	if in.Status == "" {
		in.Status = ClientStatusActive
	}
	return in
}

// Validate checks the fields the binding tags cannot express
func (in ClientInput) Validate() error {
	if in.CompanyName == "" {
		return shared.InvalidInput("Company name is required")
	}
	if in.GSTNumber != "" && !valueobject.ValidGSTIN(in.GSTNumber) {
		return shared.InvalidInput("GST number must be a valid 15-character GSTIN")
	}
	if in.Status != ClientStatusActive && in.Status != ClientStatusInactive {
		return shared.InvalidInput("Status must be active or inactive")
	}
	return nil
}
