// funds.go
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

// FundInput is the body of a fund create. MarketType may be omitted when FirmID is
// given, in which case the firm's market type is used.
type FundInput struct {
	Name        string            `json:"name" yaml:"name" validate:"required,max=255"`
	FirmID      *string           `json:"firmId" yaml:"firmId"`
	MarketType  models.MarketType `json:"marketType" yaml:"marketType" validate:"omitempty,oneof=public_markets private_markets"`
	Description *string           `json:"description" yaml:"description"`
	VintageYear types.FlexInt     `json:"vintageYear" yaml:"vintageYear"`
	FundSize    *string           `json:"fundSize" yaml:"fundSize" validate:"omitempty,max=64"`
	Strategy    *string           `json:"strategy" yaml:"strategy" validate:"omitempty,max=255"`
}

// FundPatch is the body of a fund partial update. A blank firmId detaches the fund.
type FundPatch struct {
	Name        *string            `json:"name" validate:"omitempty,max=255"`
	FirmID      *string            `json:"firmId"`
	MarketType  *models.MarketType `json:"marketType"`
	Description *string            `json:"description"`
	VintageYear types.FlexInt      `json:"vintageYear"`
	FundSize    *string            `json:"fundSize" validate:"omitempty,max=64"`
	Strategy    *string            `json:"strategy" validate:"omitempty,max=255"`
}

// ListFunds returns funds newest first, each with its firm
func ListFunds(ctx context.Context, db *gorm.DB, filter ListFilter) ([]models.Fund, error) {
	q := nameSearch(db.WithContext(ctx), filter.Search)
	if filter.Market != "" {
		q = q.Where("market_type = ?", filter.Market)
	}
	if filter.FirmID != "" {
		q = q.Where("firm_id = ?", filter.FirmID)
	}

	funds := []models.Fund{}
	if err := q.Preload("Firm").Order("created_at DESC").Find(&funds).Error; err != nil {
		return nil, translateError("listFunds", "fund", "", err)
	}
	return funds, nil
}

// GetFund returns a fund by id with its firm
func GetFund(ctx context.Context, db *gorm.DB, id string) (*models.Fund, error) {
	var fund models.Fund
	if err := db.WithContext(ctx).Preload("Firm").Where("id = ?", id).First(&fund).Error; err != nil {
		return nil, translateError("getFund", "fund", id, err)
	}
	return &fund, nil
}

// CreateFund inserts a fund
func CreateFund(ctx context.Context, db *gorm.DB, input FundInput) (*models.Fund, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}
	if err := validYear("vintageYear", input.VintageYear.Ptr()); err != nil {
		return nil, err
	}

	fund := models.Fund{
		Name:        input.Name,
		FirmID:      trimmed(input.FirmID),
		MarketType:  input.MarketType,
		Description: trimmed(input.Description),
		VintageYear: input.VintageYear.Ptr(),
		FundSize:    trimmed(input.FundSize),
		Strategy:    trimmed(input.Strategy),
	}

	if fund.FirmID != nil {
		firm, err := GetFirm(ctx, db, *fund.FirmID)
		if err != nil {
			return nil, err
		}
		if fund.MarketType == "" {
			fund.MarketType = firm.MarketType
		}
		fund.Firm = firm
	}
	if fund.MarketType == "" {
		return nil, types.NewValidationError("marketType", "is required when no firm is given")
	}

	if err := db.WithContext(ctx).Omit("Firm").Create(&fund).Error; err != nil {
		return nil, translateError("createFund", "fund", "", err)
	}

	metrics.RecordsCreated.WithLabelValues("fund").Inc()
	return &fund, nil
}

// UpdateFund applies a partial update
func UpdateFund(ctx context.Context, db *gorm.DB, id string, input FundPatch) (*models.Fund, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	var fund models.Fund
	if err := db.WithContext(ctx).Where("id = ?", id).First(&fund).Error; err != nil {
		return nil, translateError("updateFund", "fund", id, err)
	}

	p := patch{}
	if err := p.required("name", "name", input.Name); err != nil {
		return nil, err
	}
	if input.FirmID != nil {
		if firmID := trimmed(input.FirmID); firmID != nil {
			if err := RequireEntity(ctx, db, models.FirmRef(*firmID)); err != nil {
				return nil, err
			}
			p["firm_id"] = *firmID
		} else {
			p["firm_id"] = nil
		}
	}
	if input.MarketType != nil {
		if err := validMarket("marketType", *input.MarketType); err != nil {
			return nil, err
		}
		p["market_type"] = *input.MarketType
	}
	p.text("description", input.Description)
	if err := p.year("vintageYear", "vintage_year", input.VintageYear); err != nil {
		return nil, err
	}
	p.text("fund_size", input.FundSize)
	p.text("strategy", input.Strategy)

	if err := p.apply(ctx, db, "fund", id, &fund); err != nil {
		return nil, err
	}
	return GetFund(ctx, db, id)
}

// DeleteFund removes a fund and the tag links that point at it
func DeleteFund(ctx context.Context, db *gorm.DB, id string) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Fund{})
		if res.Error != nil {
			return translateError("deleteFund", "fund", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return &types.NotFoundError{Entity: "fund", ID: id}
		}
		if err := tx.Where("entity_type = ? AND entity_id = ?", models.EntityFund, id).
			Delete(&models.TagLink{}).Error; err != nil {
			return translateError("deleteFund", "tag", "", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordsDeleted.WithLabelValues("fund").Inc()
	return nil
}
