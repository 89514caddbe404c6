// entities.go
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

	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/types"
	"gorm.io/gorm"
)

// EntitySummary is the display form of an EntityRef target.
type EntitySummary struct {
	Type       models.EntityType  `json:"entityType"`
	ID         string             `json:"entityId"`
	Name       string             `json:"name"`
	MarketType *models.MarketType `json:"marketType,omitempty"`
}

// Ref returns the reference this summary describes.
func (s EntitySummary) Ref() models.EntityRef {
	return models.EntityRef{Type: s.Type, ID: s.ID}
}

// ListFilter narrows entity list queries. Zero values disable a filter.
type ListFilter struct {
	Search string
	Market models.MarketType
	FirmID string
}

func tableFor(t models.EntityType) (string, error) {
	switch t {
	case models.EntityFirm:
		return models.Firm{}.TableName(), nil
	case models.EntityFund:
		return models.Fund{}.TableName(), nil
	case models.EntityCompany:
		return models.Company{}.TableName(), nil
	}
	return "", types.NewValidationError("entityType", "unknown entity type %q", t)
}

// RequireEntity returns NotFound unless ref resolves to a row of its discriminant's table.
func RequireEntity(ctx context.Context, db *gorm.DB, ref models.EntityRef) error {
	if err := ref.Validate(); err != nil {
		return types.NewValidationError("entityType", "%v", err)
	}
	table, err := tableFor(ref.Type)
	if err != nil {
		return err
	}

	var count int64
	if err := db.WithContext(ctx).Table(table).Where("id = ?", ref.ID).Count(&count).Error; err != nil {
		return translateError("requireEntity", string(ref.Type), ref.ID, err)
	}
	if count == 0 {
		return &types.NotFoundError{Entity: string(ref.Type), ID: ref.ID}
	}
	return nil
}

// LookupEntities resolves refs to display summaries with one query per discriminant.
// Refs whose target does not exist are absent from the result.
func LookupEntities(ctx context.Context, db *gorm.DB, refs []models.EntityRef) (map[models.EntityRef]EntitySummary, error) {
	ids := make(map[models.EntityType][]string)
	for _, ref := range refs {
		ids[ref.Type] = append(ids[ref.Type], ref.ID)
	}

	out := make(map[models.EntityRef]EntitySummary, len(refs))
	db = db.WithContext(ctx)

	if len(ids[models.EntityFirm]) > 0 {
		var firms []models.Firm
		if err := db.Select("id", "name", "market_type").Where("id IN ?", ids[models.EntityFirm]).Find(&firms).Error; err != nil {
			return nil, translateError("lookupEntities", "firm", "", err)
		}
		for _, f := range firms {
			market := f.MarketType
			out[f.Ref()] = EntitySummary{Type: models.EntityFirm, ID: f.ID, Name: f.Name, MarketType: &market}
		}
	}

	if len(ids[models.EntityFund]) > 0 {
		var funds []models.Fund
		if err := db.Select("id", "name", "market_type").Where("id IN ?", ids[models.EntityFund]).Find(&funds).Error; err != nil {
			return nil, translateError("lookupEntities", "fund", "", err)
		}
		for _, f := range funds {
			market := f.MarketType
			out[f.Ref()] = EntitySummary{Type: models.EntityFund, ID: f.ID, Name: f.Name, MarketType: &market}
		}
	}

	if len(ids[models.EntityCompany]) > 0 {
		var companies []models.Company
		if err := db.Select("id", "name").Where("id IN ?", ids[models.EntityCompany]).Find(&companies).Error; err != nil {
			return nil, translateError("lookupEntities", "company", "", err)
		}
		for _, c := range companies {
			out[c.Ref()] = EntitySummary{Type: models.EntityCompany, ID: c.ID, Name: c.Name}
		}
	}

	return out, nil
}

// nameSearch applies a case-insensitive substring match on name.
func nameSearch(q *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return q
	}
	return q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
}

func validMarket(field string, m models.MarketType) error {
	if !m.Valid() {
		return types.NewValidationError(field, "must be one of [%s %s]", models.MarketPublic, models.MarketPrivate)
	}
	return nil
}

func validYear(field string, year *int) error {
	if year != nil && (*year < 1000 || *year > 9999) {
		return types.NewValidationError(field, "must be a four digit year")
	}
	return nil
}

// patch collects column updates for a partial update.
type patch map[string]interface{}

// text sets a nullable text column. A blank value clears it.
func (p patch) text(column string, v *string) {
	if v == nil {
		return
	}
	if t := trimmed(v); t != nil {
		p[column] = *t
	} else {
		p[column] = nil
	}
}

// required sets a non-null text column, rejecting blanks.
func (p patch) required(field, column string, v *string) error {
	if v == nil {
		return nil
	}
	t := trimmed(v)
	if t == nil {
		return types.NewValidationError(field, "is required")
	}
	p[column] = *t
	return nil
}

// year sets a nullable year column. An empty string or null clears it.
func (p patch) year(field, column string, v types.FlexInt) error {
	if !v.Present {
		return nil
	}
	if err := validYear(field, v.Ptr()); err != nil {
		return err
	}
	if v.Set {
		p[column] = v.Value
	} else {
		p[column] = nil
	}
	return nil
}

// apply writes the patch to the row identified by id and reloads it into dest.
func (p patch) apply(ctx context.Context, db *gorm.DB, entity, id string, dest interface{}) error {
	p["updated_at"] = time.Now().UTC()
	db = db.WithContext(ctx)

	res := db.Model(dest).Where("id = ?", id).Updates(map[string]interface{}(p))
	if res.Error != nil {
		return translateError("update "+entity, entity, id, res.Error)
	}
	if err := db.Where("id = ?", id).First(dest).Error; err != nil {
		return translateError("reload", entity, id, err)
	}
	return nil
}
