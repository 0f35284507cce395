package models

import (
	"time"

	"gorm.io/datatypes"
)

// Company is the singleton profile record for the installation.
type Company struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Email       string         `gorm:"type:varchar(255)" json:"email"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone"`
	Website     string         `gorm:"type:varchar(255)" json:"website"`
	Address     string         `gorm:"type:text" json:"address"`
	SocialLinks datatypes.JSON `gorm:"type:json" json:"social_links"`
	Metadata    datatypes.JSON `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}
