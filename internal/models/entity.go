// entity.go
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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Firm is an investment management company.
type Firm struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:255;not null;index" json:"name"`
	MarketType   MarketType `gorm:"not null;index" json:"marketType"`
	Description  *string    `gorm:"type:text" json:"description"`
	Website      *string    `gorm:"size:512" json:"website"`
	Headquarters *string    `gorm:"size:255" json:"headquarters"`
	FoundedYear  *int       `json:"foundedYear"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updatedAt"`
}

// Fund is an investment vehicle, optionally managed by a Firm.
type Fund struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Name        string     `gorm:"size:255;not null;index" json:"name"`
	FirmID      *string    `gorm:"size:36;index" json:"firmId"`
	Firm        *Firm      `gorm:"foreignKey:FirmID;references:ID;constraint:OnDelete:CASCADE" json:"firm,omitempty"`
	MarketType  MarketType `gorm:"not null;index" json:"marketType"`
	Description *string    `gorm:"type:text" json:"description"`
	VintageYear *int       `json:"vintageYear"`
	FundSize    *string    `gorm:"size:64" json:"fundSize"`
	Strategy    *string    `gorm:"size:255" json:"strategy"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

// Company is a portfolio or prospect company. Companies carry no market type.
type Company struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:255;not null;index" json:"name"`
	Description  *string   `gorm:"type:text" json:"description"`
	Website      *string   `gorm:"size:512" json:"website"`
	Industry     *string   `gorm:"size:255" json:"industry"`
	Headquarters *string   `gorm:"size:255" json:"headquarters"`
	FoundedYear  *int      `json:"foundedYear"`
	CreatedAt    time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName overrides the table name for Firm
func (Firm) TableName() string {
	return "firms"
}

// TableName overrides the table name for Fund
func (Fund) TableName() string {
	return "funds"
}

// TableName overrides the table name for Company
func (Company) TableName() string {
	return "companies"
}

func (f *Firm) BeforeCreate(tx *gorm.DB) error {
	f.ID = ensureID(f.ID)
	return nil
}

func (f *Fund) BeforeCreate(tx *gorm.DB) error {
	f.ID = ensureID(f.ID)
	return nil
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

// Ref returns the polymorphic reference to this firm.
func (f Firm) Ref() EntityRef { return FirmRef(f.ID) }

// Ref returns the polymorphic reference to this fund.
func (f Fund) Ref() EntityRef { return FundRef(f.ID) }

// Ref returns the polymorphic reference to this company.
func (c Company) Ref() EntityRef { return CompanyRef(c.ID) }

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
