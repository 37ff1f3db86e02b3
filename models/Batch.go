package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Batch is one attempt at making a Recipe.
type Batch struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	RecipeID    string       `gorm:"type:varchar(36);not null;index" json:"recipe_id"`
	CreatedOn   time.Time    `gorm:"column:created_on;autoCreateTime;index" json:"created_on"`
	Name        string       `json:"name"`
	Notes       string       `gorm:"type:text" json:"notes"`
	BatchNumber int          `gorm:"not null;default:1" json:"batch_number"`
	ImageURL    string       `gorm:"column:image_url" json:"image_url,omitempty"`
	Ingredients []Ingredient `gorm:"foreignKey:BatchID" json:"ingredients,omitempty"`
	Steps       []Step       `gorm:"foreignKey:BatchID" json:"steps,omitempty"`
}

func (Batch) TableName() string { return "batches" }

func (b *Batch) BeforeCreate(*gorm.DB) error {
	b.ID = ensureID(b.ID)
	return nil
}

// DefaultBatchName is the name suggested for the n-th batch of a recipe.
func DefaultBatchName(number int) string {
	return fmt.Sprintf("Batch #%d", number)
}
