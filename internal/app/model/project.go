package model

import (
	"time"
)

type Project struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"not null;index" json:"title"`
	Description string    `json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks"`
}

func (Project) TableName() string {
	return "projects"
}
