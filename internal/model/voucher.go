package model

import (
	"time"

	"gorm.io/gorm"
)

// Voucher represents a sales invoice. InvoiceNo is empty on rows that
// predate the numbering scheme; the display layer derives a fallback.
type Voucher struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CompanyID string         `json:"company_id" gorm:"type:varchar(64);index"`
	InvoiceNo string         `json:"invoice_no" gorm:"type:varchar(20)"`
	Date      string         `json:"date" gorm:"type:varchar(10)"`
	PartyID   uint           `json:"party_id" gorm:"index"`
	Note      string         `json:"note" gorm:"type:text"`
	Subtotal  float64        `json:"subtotal"`
	TaxTotal  float64        `json:"tax_total"`
	Total     float64        `json:"total"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Items []VoucherItem `json:"items,omitempty" gorm:"foreignKey:VoucherID"`
}

// VoucherItem is a single line on a voucher. Amounts are computed at save
// time: base = price * qty, tax = base * rate / 100, amount = base + tax.
type VoucherItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	VoucherID uint    `json:"voucher_id" gorm:"index;not null"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name" gorm:"type:varchar(100)"`
	Price     float64 `json:"price"`
	Qty       float64 `json:"qty"`
	TaxRate   float64 `json:"tax"`
	TaxAmount float64 `json:"tax_amount"`
	Amount    float64 `json:"amount"`
	Unit      string  `json:"unit" gorm:"type:varchar(20)"`
}
