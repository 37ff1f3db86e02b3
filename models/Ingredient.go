package models

import "gorm.io/gorm"

// Ingredient is a free-text line item of a Batch, e.g. "2 cups flour".
// Amount and Unit are optional structured hints.
type Ingredient struct {
	ID          string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	BatchID     string   `gorm:"type:varchar(36);not null;index" json:"batch_id"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Amount      *float64 `json:"amount,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Note        string   `gorm:"type:text" json:"note,omitempty"`
	Position    int      `gorm:"not null;default:0" json:"-"`
}

func (Ingredient) TableName() string { return "ingredients" }

func (i *Ingredient) BeforeCreate(*gorm.DB) error {
	i.ID = ensureID(i.ID)
	return nil
}
