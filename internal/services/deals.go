// deals.go
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
	"time"

	"github.com/localnerve/endowment-crm/internal/metrics"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DealInput is the body of a deal create
type DealInput struct {
	Name              string              `json:"name" validate:"required,max=255"`
	EntityType        string              `json:"entityType" validate:"required"`
	EntityID          string              `json:"entityId" validate:"required"`
	Stage             models.DealStage    `json:"stage" validate:"omitempty,oneof=triage diligence ic_vote committed pass"`
	Priority          models.DealPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Description       *string             `json:"description"`
	ProposedAmount    *string             `json:"proposedAmount" validate:"omitempty,max=64"`
	ExpectedCloseDate *string             `json:"expectedCloseDate"`
	ActualCloseDate   *string             `json:"actualCloseDate"`
	OwnerID           string              `json:"ownerId" validate:"omitempty,max=64"`
	OwnerName         string              `json:"ownerName" validate:"required,max=255"`
}

// DealPatch is the body of a deal partial update. Any stage may follow any other.
type DealPatch struct {
	Name              *string              `json:"name" validate:"omitempty,max=255"`
	EntityType        *string              `json:"entityType"`
	EntityID          *string              `json:"entityId"`
	Stage             *models.DealStage    `json:"stage"`
	Priority          *models.DealPriority `json:"priority"`
	Description       *string              `json:"description"`
	ProposedAmount    *string              `json:"proposedAmount" validate:"omitempty,max=64"`
	ExpectedCloseDate *string              `json:"expectedCloseDate"`
	ActualCloseDate   *string              `json:"actualCloseDate"`
	OwnerName         *string              `json:"ownerName" validate:"omitempty,max=255"`
}

// DealFilter narrows deal lists. Zero values disable a filter.
type DealFilter struct {
	Search string
	Stage  models.DealStage
	Target *models.EntityRef
}

// ListDeals returns deals newest first
func ListDeals(ctx context.Context, db *gorm.DB, filter DealFilter) ([]models.Deal, error) {
	q := nameSearch(db.WithContext(ctx), filter.Search)
	if filter.Stage != "" {
		if !filter.Stage.Valid() {
			return nil, types.NewValidationError("stage", "unknown stage %q", filter.Stage)
		}
		q = q.Where("stage = ?", filter.Stage)
	}
	if filter.Target != nil {
		q = q.Where("entity_type = ? AND entity_id = ?", filter.Target.Type, filter.Target.ID)
	}

	deals := []models.Deal{}
	if err := q.Order("created_at DESC").Find(&deals).Error; err != nil {
		return nil, translateError("listDeals", "deal", "", err)
	}
	return deals, nil
}

// GetDeal returns a deal by id
func GetDeal(ctx context.Context, db *gorm.DB, id string) (*models.Deal, error) {
	var deal models.Deal
	if err := db.WithContext(ctx).Where("id = ?", id).First(&deal).Error; err != nil {
		return nil, translateError("getDeal", "deal", id, err)
	}
	return &deal, nil
}

// CreateDeal inserts a deal against an existing entity. OwnerID defaults to the caller.
func CreateDeal(ctx context.Context, db *gorm.DB, id *Identity, input DealInput) (*models.Deal, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.OwnerName = strings.TrimSpace(input.OwnerName)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	ref, err := models.ParseEntityRef(input.EntityType, input.EntityID)
	if err != nil {
		return nil, types.NewValidationError("entityType", "%v", err)
	}
	expected, err := parseDate("expectedCloseDate", input.ExpectedCloseDate)
	if err != nil {
		return nil, err
	}
	actual, err := parseDate("actualCloseDate", input.ActualCloseDate)
	if err != nil {
		return nil, err
	}

	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" && id != nil {
		ownerID = id.UserID
	}
	if ownerID == "" {
		return nil, &types.UnauthorizedError{Reason: "deal owner is required"}
	}

	if err := RequireEntity(ctx, db, ref); err != nil {
		return nil, err
	}

	deal := models.Deal{
		Name:              input.Name,
		EntityRef:         ref,
		Stage:             input.Stage,
		Priority:          input.Priority,
		Description:       trimmed(input.Description),
		ProposedAmount:    trimmed(input.ProposedAmount),
		ExpectedCloseDate: expected,
		ActualCloseDate:   actual,
		OwnerID:           ownerID,
		OwnerName:         input.OwnerName,
	}
	if err := db.WithContext(ctx).Create(&deal).Error; err != nil {
		return nil, translateError("createDeal", "deal", "", err)
	}

	metrics.RecordsCreated.WithLabelValues("deal").Inc()
	return &deal, nil
}

// UpdateDeal applies a partial update, stamping updatedAt
func UpdateDeal(ctx context.Context, db *gorm.DB, id string, input DealPatch) (*models.Deal, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	deal, err := GetDeal(ctx, db, id)
	if err != nil {
		return nil, err
	}
	previousStage := deal.Stage

	p := patch{}
	if err := p.required("name", "name", input.Name); err != nil {
		return nil, err
	}
	if err := p.required("ownerName", "owner_name", input.OwnerName); err != nil {
		return nil, err
	}
	if input.EntityType != nil || input.EntityID != nil {
		ref := deal.EntityRef
		if input.EntityType != nil {
			ref.Type = models.EntityType(strings.TrimSpace(*input.EntityType))
		}
		if input.EntityID != nil {
			ref.ID = strings.TrimSpace(*input.EntityID)
		}
		if err := ref.Validate(); err != nil {
			return nil, types.NewValidationError("entityType", "%v", err)
		}
		if err := RequireEntity(ctx, db, ref); err != nil {
			return nil, err
		}
		p["entity_type"] = ref.Type
		p["entity_id"] = ref.ID
	}
	if input.Stage != nil {
		if !input.Stage.Valid() {
			return nil, types.NewValidationError("stage", "unknown stage %q", *input.Stage)
		}
		p["stage"] = *input.Stage
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, types.NewValidationError("priority", "unknown priority %q", *input.Priority)
		}
		p["priority"] = *input.Priority
	}
	p.text("description", input.Description)
	p.text("proposed_amount", input.ProposedAmount)
	if err := p.date("expectedCloseDate", "expected_close_date", input.ExpectedCloseDate); err != nil {
		return nil, err
	}
	if err := p.date("actualCloseDate", "actual_close_date", input.ActualCloseDate); err != nil {
		return nil, err
	}

	if err := p.apply(ctx, db, "deal", id, deal); err != nil {
		return nil, err
	}

	if deal.Stage != previousStage {
		metrics.DealStageChanges.WithLabelValues(string(previousStage), string(deal.Stage)).Inc()
	}
	return deal, nil
}

// DeleteDeal removes a deal
func DeleteDeal(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Deal{})
	if res.Error != nil {
		return translateError("deleteDeal", "deal", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &types.NotFoundError{Entity: "deal", ID: id}
	}

	metrics.RecordsDeleted.WithLabelValues("deal").Inc()
	return nil
}

// parseDate accepts YYYY-MM-DD or RFC3339. Nil or blank means no date.
func parseDate(field string, v *string) (*datatypes.Date, error) {
	s := trimmed(v)
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, *s); err != nil {
			return nil, types.NewValidationError(field, "must be a date (YYYY-MM-DD)")
		}
	}
	d := datatypes.Date(t.UTC())
	return &d, nil
}

// date sets a nullable date column. A blank value clears it.
func (p patch) date(field, column string, v *string) error {
	if v == nil {
		return nil
	}
	d, err := parseDate(field, v)
	if err != nil {
		return err
	}
	if d == nil {
		p[column] = nil
	} else {
		p[column] = *d
	}
	return nil
}
