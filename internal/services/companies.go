// companies.go
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

// CompanyInput is the body of a company create
type CompanyInput struct {
	Name         string        `json:"name" yaml:"name" validate:"required,max=255"`
	Description  *string       `json:"description" yaml:"description"`
	Website      *string       `json:"website" yaml:"website" validate:"omitempty,max=512"`
	Industry     *string       `json:"industry" yaml:"industry" validate:"omitempty,max=255"`
	Headquarters *string       `json:"headquarters" yaml:"headquarters" validate:"omitempty,max=255"`
	FoundedYear  types.FlexInt `json:"foundedYear" yaml:"foundedYear"`
}

// CompanyPatch is the body of a company partial update
type CompanyPatch struct {
	Name         *string       `json:"name" validate:"omitempty,max=255"`
	Description  *string       `json:"description"`
	Website      *string       `json:"website" validate:"omitempty,max=512"`
	Industry     *string       `json:"industry" validate:"omitempty,max=255"`
	Headquarters *string       `json:"headquarters" validate:"omitempty,max=255"`
	FoundedYear  types.FlexInt `json:"foundedYear"`
}

// ListCompanies returns companies newest first
func ListCompanies(ctx context.Context, db *gorm.DB, filter ListFilter) ([]models.Company, error) {
	companies := []models.Company{}
	if err := nameSearch(db.WithContext(ctx), filter.Search).
		Order("created_at DESC").Find(&companies).Error; err != nil {
		return nil, translateError("listCompanies", "company", "", err)
	}
	return companies, nil
}

// GetCompany returns a company by id
func GetCompany(ctx context.Context, db *gorm.DB, id string) (*models.Company, error) {
	var company models.Company
	if err := db.WithContext(ctx).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, translateError("getCompany", "company", id, err)
	}
	return &company, nil
}

// CreateCompany inserts a company
func CreateCompany(ctx context.Context, db *gorm.DB, input CompanyInput) (*models.Company, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}
	if err := validYear("foundedYear", input.FoundedYear.Ptr()); err != nil {
		return nil, err
	}

	company := models.Company{
		Name:         input.Name,
		Description:  trimmed(input.Description),
		Website:      trimmed(input.Website),
		Industry:     trimmed(input.Industry),
		Headquarters: trimmed(input.Headquarters),
		FoundedYear:  input.FoundedYear.Ptr(),
	}
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, translateError("createCompany", "company", "", err)
	}

	metrics.RecordsCreated.WithLabelValues("company").Inc()
	return &company, nil
}

// UpdateCompany applies a partial update
func UpdateCompany(ctx context.Context, db *gorm.DB, id string, input CompanyPatch) (*models.Company, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	company, err := GetCompany(ctx, db, id)
	if err != nil {
		return nil, err
	}

	p := patch{}
	if err := p.required("name", "name", input.Name); err != nil {
		return nil, err
	}
	p.text("description", input.Description)
	p.text("website", input.Website)
	p.text("industry", input.Industry)
	p.text("headquarters", input.Headquarters)
	if err := p.year("foundedYear", "founded_year", input.FoundedYear); err != nil {
		return nil, err
	}

	if err := p.apply(ctx, db, "company", id, company); err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany removes a company and the tag links that point at it
func DeleteCompany(ctx context.Context, db *gorm.DB, id string) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Company{})
		if res.Error != nil {
			return translateError("deleteCompany", "company", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return &types.NotFoundError{Entity: "company", ID: id}
		}
		if err := tx.Where("entity_type = ? AND entity_id = ?", models.EntityCompany, id).
			Delete(&models.TagLink{}).Error; err != nil {
			return translateError("deleteCompany", "tag", "", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordsDeleted.WithLabelValues("company").Inc()
	return nil
}
