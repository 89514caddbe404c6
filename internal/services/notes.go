// notes.go
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
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Note list paging defaults
const (
	DefaultNoteLimit = 20
	MaxNoteLimit     = 100
)

// MarketAll disables the market filter on note lists
const MarketAll = "all"

// NoteFilter selects a page of notes. Market is "all", "" or a market type.
// MaxLimit overrides MaxNoteLimit when positive.
type NoteFilter struct {
	Market   string
	Limit    int
	MaxLimit int
}

// NoteInput is the body of a note create
type NoteInput struct {
	Title      string                   `json:"title" validate:"required,max=255"`
	Content    string                   `json:"content" validate:"required"`
	IsPublic   *bool                    `json:"isPublic"`
	EntityTags types.FlexList[TagInput] `json:"entityTags"`
}

// NotePatch is the body of a note partial update
type NotePatch struct {
	Title    *string `json:"title" validate:"omitempty,max=255"`
	Content  *string `json:"content"`
	IsPublic *bool   `json:"isPublic"`
}

// ListNotes returns the newest notes, optionally only those tagged to a firm or fund
// of the given market. Notes reachable through several tags appear once.
func ListNotes(ctx context.Context, db *gorm.DB, filter NoteFilter) ([]NoteView, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultNoteLimit
	}
	max := filter.MaxLimit
	if max <= 0 {
		max = MaxNoteLimit
	}
	if limit > max {
		limit = max
	}

	q := db.WithContext(ctx).Preload("Tags")
	if market := strings.TrimSpace(filter.Market); market != "" && market != MarketAll {
		if err := validMarket("market", models.MarketType(market)); err != nil {
			return nil, err
		}
		q = q.Where("id IN (?)", marketNoteIDs(db, models.MarketType(market)))
	}

	var notes []models.Note
	if err := q.Order("created_at DESC").Limit(limit).Find(&notes).Error; err != nil {
		return nil, translateError("listNotes", "note", "", err)
	}
	return AttributeNotes(ctx, db, notes)
}

// marketNoteIDs selects ids of notes tagged to a firm or fund of market. Companies carry
// no market type, so company-only notes never match.
func marketNoteIDs(db *gorm.DB, market models.MarketType) *gorm.DB {
	return db.Table("note_entity_tags AS t").Select("t.note_id").
		Joins("LEFT JOIN firms f ON t.entity_type = ? AND f.id = t.entity_id", models.EntityFirm).
		Joins("LEFT JOIN funds fu ON t.entity_type = ? AND fu.id = t.entity_id", models.EntityFund).
		Where("f.market_type = ? OR fu.market_type = ?", market, market)
}

// GetNote returns an attributed note with its tag links
func GetNote(ctx context.Context, db *gorm.DB, id string) (*NoteView, error) {
	var note models.Note
	if err := db.WithContext(ctx).Preload("Tags").Where("id = ?", id).First(&note).Error; err != nil {
		return nil, translateError("getNote", "note", id, err)
	}
	view, err := AttributeNote(ctx, db, note)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateNote inserts a note and its tag links in one transaction. The author snapshot is
// the caller's profile name, else the identity's name or email. Any failing tag rolls
// the note back.
func CreateNote(ctx context.Context, db *gorm.DB, id *Identity, input NoteInput) (*NoteView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if strings.TrimSpace(input.Content) == "" {
		input.Content = ""
	}
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	refs, err := uniqueRefs(input.EntityTags.Slice())
	if err != nil {
		return nil, err
	}

	userID := id.UserID
	note := models.Note{
		Title:    input.Title,
		Content:  input.Content,
		UserID:   &userID,
		IsPublic: true,
	}
	if input.IsPublic != nil {
		note.IsPublic = *input.IsPublic
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := EnsureProfile(ctx, tx, id)
		if err != nil {
			return err
		}
		note.AuthorName = profile.FullName
		if note.AuthorName == "" {
			note.AuthorName = id.DisplayName()
		}

		if err := tx.Omit(clause.Associations).Create(&note).Error; err != nil {
			return translateError("createNote", "note", "", err)
		}

		for _, ref := range refs {
			if err := RequireEntity(ctx, tx, ref); err != nil {
				return err
			}
			link, err := insertTag(ctx, tx, note.ID, ref)
			if err != nil {
				return err
			}
			note.Tags = append(note.Tags, *link)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordsCreated.WithLabelValues("note").Inc()
	for _, ref := range refs {
		metrics.NoteTags.WithLabelValues("add", string(ref.Type)).Inc()
	}

	view, err := AttributeNote(ctx, db, note)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// uniqueRefs parses tag inputs, dropping repeated triples.
func uniqueRefs(inputs []TagInput) ([]models.EntityRef, error) {
	seen := make(map[models.EntityRef]struct{}, len(inputs))
	refs := make([]models.EntityRef, 0, len(inputs))
	for _, in := range inputs {
		ref, err := in.Ref()
		if err != nil {
			return nil, err
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs, nil
}

// UpdateNote applies a partial update to title, content or visibility
func UpdateNote(ctx context.Context, db *gorm.DB, id string, input NotePatch) (*NoteView, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, types.NewValidationError("title", "is required")
		}
		updates["title"] = title
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, types.NewValidationError("content", "is required")
		}
		updates["content"] = *input.Content
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}

	res := db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translateError("updateNote", "note", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &types.NotFoundError{Entity: "note", ID: id}
	}
	return GetNote(ctx, db, id)
}

// DeleteNote removes a note with its tag links and attachments. Attachment blobs are
// removed after the rows, and failures there are only logged.
func DeleteNote(ctx context.Context, db *gorm.DB, blobs storage.BlobStore, id string) error {
	var paths []string

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FileAttachment{}).Where("note_id = ?", id).
			Pluck("file_path", &paths).Error; err != nil {
			return translateError("deleteNote", "file", "", err)
		}
		if err := tx.Where("note_id = ?", id).Delete(&models.TagLink{}).Error; err != nil {
			return translateError("deleteNote", "tag", "", err)
		}
		if err := tx.Where("note_id = ?", id).Delete(&models.FileAttachment{}).Error; err != nil {
			return translateError("deleteNote", "file", "", err)
		}

		res := tx.Where("id = ?", id).Delete(&models.Note{})
		if res.Error != nil {
			return translateError("deleteNote", "note", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return &types.NotFoundError{Entity: "note", ID: id}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordsDeleted.WithLabelValues("note").Inc()
	removeBlobs(ctx, blobs, paths)
	return nil
}

func removeBlobs(ctx context.Context, blobs storage.BlobStore, paths []string) {
	if blobs == nil {
		return
	}
	for _, p := range paths {
		if err := blobs.Delete(ctx, p); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			log.Warn().Err(err).Str("path", p).Msg("failed to remove attachment blob")
		}
	}
}
