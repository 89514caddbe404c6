// firms.go
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
	"strings"

	"github.com/localnerve/endowment-crm/internal/metrics"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/types"
	"gorm.io/gorm"
)

// FirmInput is the body of a firm create
type FirmInput struct {
	Name         string            `json:"name" yaml:"name" validate:"required,max=255"`
	MarketType   models.MarketType `json:"marketType" yaml:"marketType" validate:"required,oneof=public_markets private_markets"`
	Description  *string           `json:"description" yaml:"description"`
	Website      *string           `json:"website" yaml:"website" validate:"omitempty,max=512"`
	Headquarters *string           `json:"headquarters" yaml:"headquarters" validate:"omitempty,max=255"`
	FoundedYear  types.FlexInt     `json:"foundedYear" yaml:"foundedYear"`
}

// FirmPatch is the body of a firm partial update. Blank optional fields are cleared.
type FirmPatch struct {
	Name         *string            `json:"name" validate:"omitempty,max=255"`
	MarketType   *models.MarketType `json:"marketType"`
	Description  *string            `json:"description"`
	Website      *string            `json:"website" validate:"omitempty,max=512"`
	Headquarters *string            `json:"headquarters" validate:"omitempty,max=255"`
	FoundedYear  types.FlexInt      `json:"foundedYear"`
}

// ListFirms returns firms newest first
func ListFirms(ctx context.Context, db *gorm.DB, filter ListFilter) ([]models.Firm, error) {
	q := nameSearch(db.WithContext(ctx), filter.Search)
	if filter.Market != "" {
		q = q.Where("market_type = ?", filter.Market)
	}

	firms := []models.Firm{}
	if err := q.Order("created_at DESC").Find(&firms).Error; err != nil {
		return nil, translateError("listFirms", "firm", "", err)
	}
	return firms, nil
}

// GetFirm returns a firm by id
func GetFirm(ctx context.Context, db *gorm.DB, id string) (*models.Firm, error) {
	var firm models.Firm
	if err := db.WithContext(ctx).Where("id = ?", id).First(&firm).Error; err != nil {
		return nil, translateError("getFirm", "firm", id, err)
	}
	return &firm, nil
}

// CreateFirm inserts a firm
func CreateFirm(ctx context.Context, db *gorm.DB, input FirmInput) (*models.Firm, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}
	if err := validYear("foundedYear", input.FoundedYear.Ptr()); err != nil {
		return nil, err
	}

	firm := models.Firm{
		Name:         input.Name,
		MarketType:   input.MarketType,
		Description:  trimmed(input.Description),
		Website:      trimmed(input.Website),
		Headquarters: trimmed(input.Headquarters),
		FoundedYear:  input.FoundedYear.Ptr(),
	}
	if err := db.WithContext(ctx).Create(&firm).Error; err != nil {
		return nil, translateError("createFirm", "firm", "", err)
	}

	metrics.RecordsCreated.WithLabelValues("firm").Inc()
	return &firm, nil
}

// UpdateFirm applies a partial update
func UpdateFirm(ctx context.Context, db *gorm.DB, id string, input FirmPatch) (*models.Firm, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	firm, err := GetFirm(ctx, db, id)
	if err != nil {
		return nil, err
	}

	p := patch{}
	if err := p.required("name", "name", input.Name); err != nil {
		return nil, err
	}
	if input.MarketType != nil {
		if err := validMarket("marketType", *input.MarketType); err != nil {
			return nil, err
		}
		p["market_type"] = *input.MarketType
	}
	p.text("description", input.Description)
	p.text("website", input.Website)
	p.text("headquarters", input.Headquarters)
	if err := p.year("foundedYear", "founded_year", input.FoundedYear); err != nil {
		return nil, err
	}

	if err := p.apply(ctx, db, "firm", id, firm); err != nil {
		return nil, err
	}
	return firm, nil
}

// DeleteFirm removes a firm, its funds and every tag link that points at either.
// Deals and entity attachments that reference them are left in place.
func DeleteFirm(ctx context.Context, db *gorm.DB, id string) error {
	var fundIDs []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var firm models.Firm
		if err := tx.Select("id").Where("id = ?", id).First(&firm).Error; err != nil {
			return translateError("deleteFirm", "firm", id, err)
		}

		if err := tx.Model(&models.Fund{}).Where("firm_id = ?", id).Pluck("id", &fundIDs).Error; err != nil {
			return translateError("deleteFirm", "fund", "", err)
		}

		if err := tx.Where("entity_type = ? AND entity_id = ?", models.EntityFirm, id).
			Delete(&models.TagLink{}).Error; err != nil {
			return translateError("deleteFirm", "tag", "", err)
		}

		if len(fundIDs) > 0 {
			if err := tx.Where("entity_type = ? AND entity_id IN ?", models.EntityFund, fundIDs).
				Delete(&models.TagLink{}).Error; err != nil {
				return translateError("deleteFirm", "tag", "", err)
			}
			if err := tx.Where("id IN ?", fundIDs).Delete(&models.Fund{}).Error; err != nil {
				return translateError("deleteFirm", "fund", "", err)
			}
		}

		if err := tx.Where("id = ?", id).Delete(&models.Firm{}).Error; err != nil {
			return translateError("deleteFirm", "firm", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordsDeleted.WithLabelValues("fund").Add(float64(len(fundIDs)))
	metrics.RecordsDeleted.WithLabelValues("firm").Inc()
	return nil
}
