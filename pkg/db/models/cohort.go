package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Cohort is one loyalty cohort: a named month window plus the salons whose
// consecutive activity qualified them. Cohorts are wiped and recreated on
// every rebuild; rows are never updated in place.
type Cohort struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string         `gorm:"column:name;not null;uniqueIndex"`
	Description    *string        `gorm:"column:description"`
	StartMonth     string         `gorm:"column:start_month;not null"`
	EndMonth       string         `gorm:"column:end_month;not null"`
	CreatedBy      string         `gorm:"column:created_by;not null"`
	NearMissSample pq.StringArray `gorm:"column:near_miss_sample;type:text[];default:ARRAY[]::text[]"`
	Members        []CohortMember `gorm:"foreignKey:CohortID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table explicitly.
func (Cohort) TableName() string { return "cohorts" }
