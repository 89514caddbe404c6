// data.go
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

package helpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/endowment-crm/internal/database"
	"github.com/localnerve/endowment-crm/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenTestDB creates a migrated in-memory SQLite database private to the test.
// A single connection is used, so work inside a transaction must go through the
// transaction handle.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         database.NewLogger("silent"),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateTestFirm inserts a firm
func CreateTestFirm(t *testing.T, db *gorm.DB, name string, market models.MarketType) models.Firm {
	t.Helper()
	firm := models.Firm{Name: name, MarketType: market}
	if err := db.Create(&firm).Error; err != nil {
		t.Fatalf("Failed to create firm %s: %v", name, err)
	}
	return firm
}

// CreateTestFund inserts a fund under firm, or a standalone fund when firm is nil
func CreateTestFund(t *testing.T, db *gorm.DB, name string, firm *models.Firm, market models.MarketType) models.Fund {
	t.Helper()
	fund := models.Fund{Name: name, MarketType: market}
	if firm != nil {
		fund.FirmID = &firm.ID
	}
	if err := db.Omit("Firm").Create(&fund).Error; err != nil {
		t.Fatalf("Failed to create fund %s: %v", name, err)
	}
	return fund
}

// CreateTestCompany inserts a company
func CreateTestCompany(t *testing.T, db *gorm.DB, name string) models.Company {
	t.Helper()
	company := models.Company{Name: name}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("Failed to create company %s: %v", name, err)
	}
	return company
}

// CreateTestProfile inserts a profile
func CreateTestProfile(t *testing.T, db *gorm.DB, id, fullName string) models.Profile {
	t.Helper()
	profile := models.Profile{ID: id, Email: id + "@example.com", FullName: fullName}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to create profile %s: %v", id, err)
	}
	return profile
}

// CreateTestNote inserts a note written at the given time and tags it to refs
func CreateTestNote(t *testing.T, db *gorm.DB, title string, userID *string, authorName string, at time.Time, refs ...models.EntityRef) models.Note {
	t.Helper()
	note := models.Note{
		Title:      title,
		Content:    title + " content",
		UserID:     userID,
		AuthorName: authorName,
		IsPublic:   true,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	if err := db.Omit("Tags", "Attachments").Create(&note).Error; err != nil {
		t.Fatalf("Failed to create note %s: %v", title, err)
	}
	for _, ref := range refs {
		link := models.NewTagLink(note.ID, ref)
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("Failed to tag note %s to %s: %v", title, ref, err)
		}
	}
	return note
}

// CreateTestDeal inserts a deal against ref
func CreateTestDeal(t *testing.T, db *gorm.DB, name string, ref models.EntityRef, stage models.DealStage, at time.Time) models.Deal {
	t.Helper()
	deal := models.Deal{
		Name:      name,
		EntityRef: ref,
		Stage:     stage,
		OwnerID:   "owner-1",
		OwnerName: "Deal Owner",
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := db.Create(&deal).Error; err != nil {
		t.Fatalf("Failed to create deal %s: %v", name, err)
	}
	return deal
}
