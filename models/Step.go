package models

import "gorm.io/gorm"

// Step is an ordered instruction of a Batch. StepNumber is 1-based.
type Step struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	BatchID     string `gorm:"type:varchar(36);not null;index" json:"batch_id"`
	StepNumber  int    `gorm:"not null" json:"step_number"`
	Description string `gorm:"type:text;not null" json:"description"`
	Note        string `gorm:"type:text" json:"note,omitempty"`
}

func (Step) TableName() string { return "steps" }

func (s *Step) BeforeCreate(*gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}
