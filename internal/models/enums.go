// enums.go
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
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// MarketType classifies firms and funds.
type MarketType string

const (
	MarketPublic  MarketType = "public_markets"
	MarketPrivate MarketType = "private_markets"
)

// Valid reports whether m is a known market type.
func (m MarketType) Valid() bool {
	return m == MarketPublic || m == MarketPrivate
}

// GormDBDataType keeps enum columns portable across the supported dialects.
func (MarketType) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return enumColumnType(db)
}

// EntityType is the discriminant of an EntityRef.
type EntityType string

const (
	EntityFirm    EntityType = "firm"
	EntityFund    EntityType = "fund"
	EntityCompany EntityType = "company"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityFirm, EntityFund, EntityCompany:
		return true
	}
	return false
}

func (EntityType) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return enumColumnType(db)
}

// DealStage is the pipeline column of a deal. Any stage may follow any other.
type DealStage string

const (
	StageTriage    DealStage = "triage"
	StageDiligence DealStage = "diligence"
	StageICVote    DealStage = "ic_vote"
	StageCommitted DealStage = "committed"
	StagePass      DealStage = "pass"
)

// DealStages lists the stages in board order.
var DealStages = []DealStage{StageTriage, StageDiligence, StageICVote, StageCommitted, StagePass}

// Valid reports whether s is a known stage.
func (s DealStage) Valid() bool {
	for _, stage := range DealStages {
		if s == stage {
			return true
		}
	}
	return false
}

func (DealStage) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return enumColumnType(db)
}

// DealPriority ranks deals on the board.
type DealPriority string

const (
	PriorityLow    DealPriority = "low"
	PriorityMedium DealPriority = "medium"
	PriorityHigh   DealPriority = "high"
)

// DealPriorities lists the priorities from lowest to highest.
var DealPriorities = []DealPriority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority.
func (p DealPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func (DealPriority) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return enumColumnType(db)
}

func enumColumnType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "sqlserver", "mssql":
		return "NVARCHAR(32)"
	case "sqlite":
		return "TEXT"
	}
	return "VARCHAR(32)"
}

// EntityRef points at exactly one Firm, Fund or Company. The zero value is not a valid reference.
type EntityRef struct {
	Type EntityType `gorm:"column:entity_type;not null" json:"entityType"`
	ID   string     `gorm:"column:entity_id;size:36;not null" json:"entityId"`
}

// FirmRef references a firm.
func FirmRef(id string) EntityRef { return EntityRef{Type: EntityFirm, ID: id} }

// FundRef references a fund.
func FundRef(id string) EntityRef { return EntityRef{Type: EntityFund, ID: id} }

// CompanyRef references a company.
func CompanyRef(id string) EntityRef { return EntityRef{Type: EntityCompany, ID: id} }

// ParseEntityRef validates a discriminant and id pair coming from a caller.
func ParseEntityRef(entityType, id string) (EntityRef, error) {
	ref := EntityRef{Type: EntityType(entityType), ID: id}
	if err := ref.Validate(); err != nil {
		return EntityRef{}, err
	}
	return ref, nil
}

// Validate reports a malformed reference.
func (r EntityRef) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unknown entity type %q", r.Type)
	}
	if r.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	return nil
}

func (r EntityRef) String() string {
	return string(r.Type) + ":" + r.ID
}
