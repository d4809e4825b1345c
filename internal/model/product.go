package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents an item a company sells.
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CompanyID   string         `json:"company_id" gorm:"type:varchar(64);index"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Price       float64        `json:"price" gorm:"not null"`
	HSN         string         `json:"hsn" gorm:"type:varchar(10)"`
	TaxRate     float64        `json:"tax"`
	Unit        string         `json:"unit" gorm:"type:varchar(20);default:'Pcs'"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
