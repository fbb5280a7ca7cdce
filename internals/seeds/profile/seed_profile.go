package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/profile/dto"
	"portfolio_backend/internals/features/profile/model"
	helper "portfolio_backend/internals/helpers"

	"gorm.io/gorm"
)

// SeedProfileFromJSON creates the site profile unless one exists.
func SeedProfileFromJSON(ctx context.Context, db *gorm.DB, filePath string) (bool, error) {
	tx := db.WithContext(ctx)
	var n int64
	if err := crud.Active(tx.Model(&model.ProfileModel{})).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		log.Println("[SEED] profile already present, skipping")
		return false, nil
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return false, err
	}
	var in dto.CreateProfileRequest
	if err := json.Unmarshal(raw, &in); err != nil {
		return false, fmt.Errorf("decode %s: %w", filePath, err)
	}
	helper.Normalize(&in)
	if v := helper.Validate(in); len(v) > 0 {
		return false, fmt.Errorf("profile: %w", helper.NewValidationError(v...))
	}
	if err := tx.Create(in.ToModel()).Error; err != nil {
		return false, err
	}
	log.Println("[SEED] profile created")
	return true, nil
}
