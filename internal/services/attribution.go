// attribution.go
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

	"github.com/localnerve/endowment-crm/internal/models"
	"gorm.io/gorm"
)

// UnknownAuthor is shown when a note has neither a live profile nor a snapshot name.
const UnknownAuthor = "Unknown User"

// NoteView is a note as surfaced to readers, with its author resolved.
type NoteView struct {
	models.Note
	Author string `json:"author"`
}

// ResolveAuthorName picks the display author of a note. The live profile name wins when
// the note's user reference resolves to profile and the name is not blank. Otherwise the
// snapshot captured at creation is used, and fallback when that is empty too.
func ResolveAuthorName(note models.Note, profile *models.Profile, fallback string) string {
	if note.UserID != nil && profile != nil && profile.ID == *note.UserID {
		if name := strings.TrimSpace(profile.FullName); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(note.AuthorName); name != "" {
		return name
	}
	return fallback
}

// AttributeNotes resolves authors for a page of notes with a single profile lookup.
func AttributeNotes(ctx context.Context, db *gorm.DB, notes []models.Note) ([]NoteView, error) {
	seen := make(map[string]struct{})
	var userIDs []string
	for _, n := range notes {
		if n.UserID == nil || *n.UserID == "" {
			continue
		}
		if _, ok := seen[*n.UserID]; !ok {
			seen[*n.UserID] = struct{}{}
			userIDs = append(userIDs, *n.UserID)
		}
	}

	profiles := make(map[string]*models.Profile, len(userIDs))
	if len(userIDs) > 0 {
		var rows []models.Profile
		if err := db.WithContext(ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
			return nil, translateError("attributeNotes", "profile", "", err)
		}
		for i := range rows {
			profiles[rows[i].ID] = &rows[i]
		}
	}

	views := make([]NoteView, len(notes))
	for i, n := range notes {
		var profile *models.Profile
		if n.UserID != nil {
			profile = profiles[*n.UserID]
		}
		views[i] = NoteView{Note: n, Author: ResolveAuthorName(n, profile, UnknownAuthor)}
	}
	return views, nil
}

// AttributeNote resolves the author of a single note.
func AttributeNote(ctx context.Context, db *gorm.DB, note models.Note) (NoteView, error) {
	views, err := AttributeNotes(ctx, db, []models.Note{note})
	if err != nil {
		return NoteView{}, err
	}
	return views[0], nil
}
