package models

import (
	"time"

	"gorm.io/gorm"
)

// Recipe is a named dish owned by exactly one user. Owner and creation time
// are fixed once the row exists.
type Recipe struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedOn time.Time `gorm:"column:created_on;autoCreateTime;index" json:"created_on"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ImageURL  string    `gorm:"column:image_url" json:"image_url,omitempty"`
	Batches   []Batch   `gorm:"foreignKey:RecipeID" json:"batches,omitempty"`
}

func (Recipe) TableName() string { return "recipes" }

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}
