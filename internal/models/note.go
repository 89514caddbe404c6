// note.go
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

package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is a free-text research or meeting record.
//
// UserID is the live reference to the author's profile and AuthorName is the name
// captured when the note was written. Display names are resolved at read time.
type Note struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	UserID      *string          `gorm:"size:64;index" json:"userId"`
	AuthorName  string           `gorm:"size:255;not null;default:''" json:"authorName"`
	IsPublic    bool             `gorm:"not null" json:"isPublic"`
	CreatedAt   time.Time        `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"not null" json:"updatedAt"`
	Tags        []TagLink        `gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Attachments []FileAttachment `gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TagLink associates a note with one firm, fund or company. The entity id is not a
// foreign key: the target table is chosen by EntityType.
type TagLink struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	NoteID     string     `gorm:"size:36;not null;uniqueIndex:idx_note_entity_tag" json:"noteId"`
	EntityType EntityType `gorm:"not null;uniqueIndex:idx_note_entity_tag;index:idx_tag_entity" json:"entityType"`
	EntityID   string     `gorm:"size:36;not null;uniqueIndex:idx_note_entity_tag;index:idx_tag_entity" json:"entityId"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
}

// TableName overrides the table name for Note
func (Note) TableName() string {
	return "notes"
}

// TableName overrides the table name for TagLink
func (TagLink) TableName() string {
	return "note_entity_tags"
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	n.ID = ensureID(n.ID)
	return nil
}

func (t *TagLink) BeforeCreate(tx *gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}

// Ref returns the tagged entity.
func (t TagLink) Ref() EntityRef {
	return EntityRef{Type: t.EntityType, ID: t.EntityID}
}

// NewTagLink builds an unsaved link between noteID and ref.
func NewTagLink(noteID string, ref EntityRef) TagLink {
	return TagLink{NoteID: noteID, EntityType: ref.Type, EntityID: ref.ID}
}
