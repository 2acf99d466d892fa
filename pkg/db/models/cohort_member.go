package models

import (
	"time"

	"github.com/google/uuid"
)

// CohortMember links one eligible salon to a cohort. Members are cascade
// deleted with their cohort.
type CohortMember struct {
	CohortID uuid.UUID `gorm:"column:cohort_id;type:uuid;primaryKey"`
	UserID   string    `gorm:"column:user_id;primaryKey"`
	AddedAt  time.Time `gorm:"column:added_at;autoCreateTime"`
}

// TableName pins the table explicitly.
func (CohortMember) TableName() string { return "cohort_members" }
