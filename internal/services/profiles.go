// profiles.go
//
// An investment team CRM service for firms, funds, companies, notes and deals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of endowment-crm.
// endowment-crm is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// endowment-crm is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with endowment-crm.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/endowment-crm/internal/metrics"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfilePatch is the body of a profile update
type ProfilePatch struct {
	FullName  *string `json:"fullName" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=1024"`
}

// EnsureProfile returns the caller's profile, creating it from the identity on first use.
func EnsureProfile(ctx context.Context, db *gorm.DB, id *Identity) (*models.Profile, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	profile, err := GetProfile(ctx, db, id.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	created := models.Profile{
		ID:       id.UserID,
		Email:    id.Email,
		FullName: strings.TrimSpace(id.Name),
	}
	result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
	if result.Error != nil {
		return nil, translateError("ensureProfile", "profile", id.UserID, result.Error)
	}
	if result.RowsAffected == 0 {
		// A concurrent first request inserted it.
		return GetProfile(ctx, db, id.UserID)
	}

	metrics.RecordsCreated.WithLabelValues("profile").Inc()
	return &created, nil
}

// GetProfile returns a profile by user id
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		return nil, translateError("getProfile", "profile", userID, err)
	}
	return &profile, nil
}

// UpdateProfile changes the caller's display name or avatar. The new name shows on
// every note the caller has written.
func UpdateProfile(ctx context.Context, db *gorm.DB, id *Identity, input ProfilePatch) (*models.Profile, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	profile, err := EnsureProfile(ctx, db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, types.NewValidationError("fullName", "is required")
		}
		updates["full_name"] = name
	}
	if input.AvatarURL != nil {
		if url := trimmed(input.AvatarURL); url != nil {
			updates["avatar_url"] = *url
		} else {
			updates["avatar_url"] = nil
		}
	}

	if err := db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		return nil, translateError("updateProfile", "profile", id.UserID, err)
	}
	return GetProfile(ctx, db, id.UserID)
}
