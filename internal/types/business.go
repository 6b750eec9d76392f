package types

import "time"

// LineItem is one sold line of a transaction
type LineItem struct {
	Name      string  `json:"name"`
	Variant   *string `json:"variant,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Category  *string `json:"category,omitempty"`
}

// Amount returns unit price times quantity
func (li LineItem) Amount() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Transaction is one monetary event. IsGrooming and IsStore are persisted at
// classification time and may both be true.
type Transaction struct {
	ID            string     `json:"id"`
	ClientID      *string    `json:"client_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	TotalAmount   float64    `json:"total_amount"`
	TaxAmount     float64    `json:"tax_amount"`
	PaymentMethod string     `json:"payment_method"`
	Items         []LineItem `json:"items"`
	IsGrooming    bool       `json:"is_grooming"`
	IsStore       bool       `json:"is_store"`
}

// HasValidDate reports whether the timestamp was parsed from the source row
func (t Transaction) HasValidDate() bool {
	return !t.CreatedAt.IsZero()
}

// MatchType selects how a classification rule compares its keyword
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
)

// RevenueTarget is the revenue line a rule assigns
type RevenueTarget string

const (
	TargetGrooming RevenueTarget = "grooming"
	TargetStore    RevenueTarget = "store"
)

// ClassificationRule maps a keyword to a revenue line. Rules are evaluated in
// Position order.
type ClassificationRule struct {
	ID        string        `json:"id" yaml:"id"`
	Keyword   string        `json:"keyword" yaml:"keyword"`
	MatchType MatchType     `json:"match_type" yaml:"match_type"`
	Target    RevenueTarget `json:"target" yaml:"target"`
	Position  int           `json:"position" yaml:"position"`
}

// Client is a roster entry
type Client struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Employee is a groomer or front-desk staff member
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Product is a catalog entry that can be sold at the store
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"min_stock"`
}

// Dataset is a portable dump of the business data, used for offline analysis
// and bulk imports. Appointments are joined rows and only feed offline
// analysis.
type Dataset struct {
	Transactions []Transaction        `json:"transactions"`
	Clients      []Client             `json:"clients"`
	Employees    []Employee           `json:"employees,omitempty"`
	Products     []Product            `json:"products"`
	Rules        []ClassificationRule `json:"rules,omitempty"`
	Appointments []RawAppointment     `json:"appointments,omitempty"`
}
