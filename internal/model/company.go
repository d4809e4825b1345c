package model

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a tenant in the companies registry. The registry lives
// in the shared database only; the company's own records live in the
// partition described by DBConfig.
type Company struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	CompanyID string `json:"id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name      string `json:"company_name" gorm:"type:varchar(100);not null"`
	// Legacy credential pair kept for companies created before phone login.
	UserID   string `json:"user_id" gorm:"type:varchar(50);index"`
	Password string `json:"password" gorm:"type:varchar(100)"`
	Phone    string `json:"phone" gorm:"type:varchar(10);index"`
	PIN      string `json:"pin" gorm:"type:varchar(10)"`
	Email    string `json:"email" gorm:"type:varchar(100)"`
	GST      string `json:"gst" gorm:"type:varchar(15)"`
	Address  string `json:"address" gorm:"type:text"`
	// DBConfig is the raw, vendor-supplied connection descriptor. It may be
	// malformed; the tenant directory decides whether it is usable.
	DBConfig  string         `json:"db_config" gorm:"type:text"`
	Active    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
