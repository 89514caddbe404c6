// deal.go
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

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Deal tracks a prospective investment against a firm, fund or company.
type Deal struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	Name              string          `gorm:"size:255;not null;index" json:"name"`
	EntityRef         `gorm:"embedded"`
	Stage             DealStage       `gorm:"not null;default:'triage';index" json:"stage"`
	Priority          DealPriority    `gorm:"not null;default:'medium'" json:"priority"`
	Description       *string         `gorm:"type:text" json:"description"`
	ProposedAmount    *string         `gorm:"size:64" json:"proposedAmount"`
	ExpectedCloseDate *datatypes.Date `json:"expectedCloseDate"`
	ActualCloseDate   *datatypes.Date `json:"actualCloseDate"`
	OwnerID           string          `gorm:"size:64;not null" json:"ownerId"`
	OwnerName         string          `gorm:"size:255;not null" json:"ownerName"`
	CreatedAt         time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updatedAt"`
}

// TableName overrides the table name for Deal
func (Deal) TableName() string {
	return "deals"
}

func (d *Deal) BeforeCreate(tx *gorm.DB) error {
	d.ID = ensureID(d.ID)
	if d.Stage == "" {
		d.Stage = StageTriage
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return nil
}
