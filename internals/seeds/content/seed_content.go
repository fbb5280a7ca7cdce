package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"portfolio_backend/internals/features/crud"
	helper "portfolio_backend/internals/helpers"

	"gorm.io/gorm"
)

// Plan describes how one entity list is seeded.
type Plan[T any, C crud.CreateInput[T]] struct {
	Name string
	// Exists reports whether the row for in is already present.
	Exists func(tx *gorm.DB, in C) (bool, error)
	// Prepare fills derived columns before insert.
	Prepare func(tx *gorm.DB, m *T) error
}

// SeedFromJSON inserts every entry of the JSON array at filePath that is not
// present yet. Entries go through the same rules as the create endpoint.
func SeedFromJSON[T any, C crud.CreateInput[T]](ctx context.Context, db *gorm.DB, filePath string, plan Plan[T, C]) (int, error) {
	log.Printf("[SEED] reading %s", filePath)
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, err
	}
	var seeds []C
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}
	helper.Normalize(seeds)

	tx := db.WithContext(ctx)
	inserted := 0
	for i, in := range seeds {
		if v := helper.Validate(in); len(v) > 0 {
			return inserted, fmt.Errorf("%s[%d]: %w", plan.Name, i, helper.NewValidationError(v...))
		}
		if plan.Exists != nil {
			found, err := plan.Exists(tx, in)
			if err != nil {
				return inserted, err
			}
			if found {
				log.Printf("[SEED] %s[%d] already present, skipping", plan.Name, i)
				continue
			}
		}

		m := in.ToModel()
		if inv, ok := any(m).(crud.Invariant); ok {
			if v := inv.CheckInvariants(); len(v) > 0 {
				return inserted, fmt.Errorf("%s[%d]: %w", plan.Name, i, helper.NewValidationError(v...))
			}
		}
		if plan.Prepare != nil {
			if err := plan.Prepare(tx, m); err != nil {
				return inserted, err
			}
		}
		if err := tx.Create(m).Error; err != nil {
			return inserted, fmt.Errorf("%s[%d]: %w", plan.Name, i, err)
		}
		inserted++
	}
	log.Printf("[SEED] %s: %d inserted", plan.Name, inserted)
	return inserted, nil
}

// CountWhere is an Exists helper for a single lookup.
func CountWhere(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
