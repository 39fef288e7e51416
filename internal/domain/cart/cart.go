package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the transient pre-confirmation selection. It is keyed by an
// opaque token handed to the visitor instead of server-side session state,
// so services receive it explicitly.
type Cart struct {
	ID              int64     `json:"-"`
	Token           string    `json:"token"`
	CustomerName    string    `json:"customer_name,omitempty"`
	CustomerPhone   string    `json:"customer_phone,omitempty"`
	CustomerAddress string    `json:"customer_address,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Items           []Item    `json:"items"`
}

type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Qty         decimal.Decimal `json:"qty"`
	Unit        string          `json:"unit"`
}
