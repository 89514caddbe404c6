// file.go
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

// FileAttachment is the metadata row of a blob held by the blob store. It points at an
// entity or at a note. Only the note reference cascades on delete.
type FileAttachment struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	FileName   string      `gorm:"size:255;not null" json:"fileName"`
	FilePath   string      `gorm:"size:1024;not null" json:"filePath"`
	FileSize   int64       `gorm:"not null" json:"fileSize"`
	FileType   string      `gorm:"size:255;not null" json:"fileType"`
	EntityType *EntityType `gorm:"index:idx_file_entity" json:"entityType"`
	EntityID   *string     `gorm:"size:36;index:idx_file_entity" json:"entityId"`
	NoteID     *string     `gorm:"size:36;index" json:"noteId"`
	UploadedBy string      `gorm:"size:64;not null" json:"uploadedBy"`
	CreatedAt  time.Time   `gorm:"not null" json:"createdAt"`
}

// TableName overrides the table name for FileAttachment
func (FileAttachment) TableName() string {
	return "file_attachments"
}

func (f *FileAttachment) BeforeCreate(tx *gorm.DB) error {
	f.ID = ensureID(f.ID)
	return nil
}

// Ref returns the referenced entity, if any.
func (f FileAttachment) Ref() (EntityRef, bool) {
	if f.EntityType == nil || f.EntityID == nil {
		return EntityRef{}, false
	}
	return EntityRef{Type: *f.EntityType, ID: *f.EntityID}, true
}

// SetRef points the attachment at ref.
func (f *FileAttachment) SetRef(ref EntityRef) {
	t, id := ref.Type, ref.ID
	f.EntityType = &t
	f.EntityID = &id
}
