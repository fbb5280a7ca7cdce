package crud

import (
	"time"

	helper "portfolio_backend/internals/helpers"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every stored entity.
type Base struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"isActive"`
	DisplayOrder int       `gorm:"not null;default:0;index" json:"displayOrder"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Invariant is implemented by models with cross-field rules that must hold
// after a partial update has been merged onto the stored record.
type Invariant interface {
	CheckInvariants() []helper.FieldViolation
}

// DateRange reports endDate < startDate.
func DateRange(start time.Time, end *time.Time) []helper.FieldViolation {
	if end == nil || start.IsZero() || end.IsZero() || !end.Before(start) {
		return nil
	}
	return []helper.FieldViolation{{Field: "endDate", Message: "must not be before startDate"}}
}

// CommonUpdates copies the Base fields every update DTO accepts.
func CommonUpdates(fields map[string]any, displayOrder *int, isActive *bool) map[string]any {
	if displayOrder != nil {
		fields["display_order"] = *displayOrder
	}
	if isActive != nil {
		fields["is_active"] = *isActive
	}
	return fields
}
