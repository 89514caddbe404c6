// tags.go
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
	"fmt"
	"strings"

	"github.com/localnerve/endowment-crm/internal/metrics"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/types"
	"gorm.io/gorm"
)

// TagInput is a caller-supplied tag target
type TagInput struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
}

// Ref parses the input into a validated EntityRef
func (t TagInput) Ref() (models.EntityRef, error) {
	ref, err := models.ParseEntityRef(strings.TrimSpace(t.EntityType), strings.TrimSpace(t.EntityID))
	if err != nil {
		return models.EntityRef{}, types.NewValidationError("entityTags", "%v", err)
	}
	return ref, nil
}

// TagView is a tag link with its target's display name and, for firms and funds,
// its market type.
type TagView struct {
	models.TagLink
	Name       string             `json:"name"`
	MarketType *models.MarketType `json:"marketType,omitempty"`
}

// NoteEntities groups the records a note is tagged to.
type NoteEntities struct {
	Firms     []models.Firm    `json:"firms"`
	Funds     []models.Fund    `json:"funds"`
	Companies []models.Company `json:"companies"`
}

func requireNote(ctx context.Context, db *gorm.DB, noteID string) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", noteID).Count(&count).Error; err != nil {
		return translateError("requireNote", "note", noteID, err)
	}
	if count == 0 {
		return &types.NotFoundError{Entity: "note", ID: noteID}
	}
	return nil
}

func relationship(noteID string, ref models.EntityRef) string {
	return fmt.Sprintf("note:%s -> %s", noteID, ref)
}

// AddTag links a note to an entity. Both must exist and the link must be new.
func AddTag(ctx context.Context, db *gorm.DB, noteID string, ref models.EntityRef) (*models.TagLink, error) {
	if err := ref.Validate(); err != nil {
		return nil, types.NewValidationError("entityType", "%v", err)
	}
	if err := requireNote(ctx, db, noteID); err != nil {
		return nil, err
	}
	if err := RequireEntity(ctx, db, ref); err != nil {
		return nil, err
	}

	link, err := insertTag(ctx, db, noteID, ref)
	if err != nil {
		return nil, err
	}

	metrics.NoteTags.WithLabelValues("add", string(ref.Type)).Inc()
	return link, nil
}

// insertTag creates the link row, reporting an existing triple as a duplicate.
func insertTag(ctx context.Context, db *gorm.DB, noteID string, ref models.EntityRef) (*models.TagLink, error) {
	db = db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.TagLink{}).
		Where("note_id = ? AND entity_type = ? AND entity_id = ?", noteID, ref.Type, ref.ID).
		Count(&count).Error; err != nil {
		return nil, translateError("addTag", "tag", "", err)
	}
	if count > 0 {
		return nil, &types.DuplicateRelationshipError{Relationship: relationship(noteID, ref)}
	}

	link := models.NewTagLink(noteID, ref)
	if err := db.Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &types.DuplicateRelationshipError{Relationship: relationship(noteID, ref)}
		}
		return nil, translateError("addTag", "tag", "", err)
	}
	return &link, nil
}

// RemoveTag deletes the link if present. A missing link is not an error.
func RemoveTag(ctx context.Context, db *gorm.DB, noteID string, ref models.EntityRef) error {
	if err := ref.Validate(); err != nil {
		return types.NewValidationError("entityType", "%v", err)
	}

	res := db.WithContext(ctx).
		Where("note_id = ? AND entity_type = ? AND entity_id = ?", noteID, ref.Type, ref.ID).
		Delete(&models.TagLink{})
	if res.Error != nil {
		return translateError("removeTag", "tag", "", res.Error)
	}

	if res.RowsAffected > 0 {
		metrics.NoteTags.WithLabelValues("remove", string(ref.Type)).Inc()
	}
	return nil
}

// ListTagsForNote returns a note's links with their targets resolved. Links whose
// target no longer exists are omitted.
func ListTagsForNote(ctx context.Context, db *gorm.DB, noteID string) ([]TagView, error) {
	if err := requireNote(ctx, db, noteID); err != nil {
		return nil, err
	}

	var links []models.TagLink
	if err := db.WithContext(ctx).Where("note_id = ?", noteID).
		Order("created_at ASC").Find(&links).Error; err != nil {
		return nil, translateError("listTags", "tag", "", err)
	}
	return resolveTags(ctx, db, links)
}

func resolveTags(ctx context.Context, db *gorm.DB, links []models.TagLink) ([]TagView, error) {
	refs := make([]models.EntityRef, len(links))
	for i, l := range links {
		refs[i] = l.Ref()
	}
	targets, err := LookupEntities(ctx, db, refs)
	if err != nil {
		return nil, err
	}

	views := make([]TagView, 0, len(links))
	for _, l := range links {
		target, ok := targets[l.Ref()]
		if !ok {
			continue
		}
		views = append(views, TagView{TagLink: l, Name: target.Name, MarketType: target.MarketType})
	}
	return views, nil
}

// GetNoteEntities returns the firms, funds and companies a note is tagged to.
func GetNoteEntities(ctx context.Context, db *gorm.DB, noteID string) (*NoteEntities, error) {
	if err := requireNote(ctx, db, noteID); err != nil {
		return nil, err
	}

	tagged := func(t models.EntityType) *gorm.DB {
		return db.Model(&models.TagLink{}).Select("entity_id").
			Where("note_id = ? AND entity_type = ?", noteID, t)
	}

	q := db.WithContext(ctx)
	result := &NoteEntities{Firms: []models.Firm{}, Funds: []models.Fund{}, Companies: []models.Company{}}
	if err := q.Where("id IN (?)", tagged(models.EntityFirm)).Order("name").Find(&result.Firms).Error; err != nil {
		return nil, translateError("noteEntities", "firm", "", err)
	}
	if err := q.Where("id IN (?)", tagged(models.EntityFund)).Order("name").Find(&result.Funds).Error; err != nil {
		return nil, translateError("noteEntities", "fund", "", err)
	}
	if err := q.Where("id IN (?)", tagged(models.EntityCompany)).Order("name").Find(&result.Companies).Error; err != nil {
		return nil, translateError("noteEntities", "company", "", err)
	}
	return result, nil
}

// ListNotesForEntity returns the notes tagged to ref, newest first and attributed.
func ListNotesForEntity(ctx context.Context, db *gorm.DB, ref models.EntityRef) ([]NoteView, error) {
	if err := ref.Validate(); err != nil {
		return nil, types.NewValidationError("entityType", "%v", err)
	}

	tagged := db.Model(&models.TagLink{}).Select("note_id").
		Where("entity_type = ? AND entity_id = ?", ref.Type, ref.ID)

	var notes []models.Note
	if err := db.WithContext(ctx).Preload("Tags").
		Where("id IN (?)", tagged).
		Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, translateError("listNotesForEntity", "note", "", err)
	}
	return AttributeNotes(ctx, db, notes)
}
