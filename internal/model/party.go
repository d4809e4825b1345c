package model

import (
	"time"

	"gorm.io/gorm"
)

// Party represents a customer of a company. An empty CompanyID marks a
// legacy record created before multi-tenancy; the orphan sweep adopts it.
type Party struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CompanyID string         `json:"company_id" gorm:"type:varchar(64);index"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Mobile    string         `json:"mobile" gorm:"type:varchar(10)"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	GST       string         `json:"gst" gorm:"type:varchar(15)"`
	Address   string         `json:"address" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
