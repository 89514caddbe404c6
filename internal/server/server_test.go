// server_test.go
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

package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/endowment-crm/internal/config"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/server"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const validSession = "valid-session"

type stubValidator struct{}

func (stubValidator) ValidateSession(ctx context.Context, cookie string, roles []string) (*services.Identity, error) {
	if cookie != validSession {
		return nil, errors.New("unknown session")
	}
	return &services.Identity{UserID: "user-1", Email: "dana@example.com", Name: "Dana Whitfield"}, nil
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := helpers.OpenTestDB(t)
	blobs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	app := server.New(server.Options{DB: db, Blobs: blobs, Validator: stubValidator{}})
	return app, db
}

func do(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequiresSession(t *testing.T) {
	app, _ := setupApp(t)

	resp := do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes", nil, ""))
	helpers.AssertStatus(t, resp, http.StatusUnauthorized)
	envelope := helpers.ParseError(t, resp)
	assert.Equal(t, "unauthorized", envelope.Type)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes", nil, "forged"))
	helpers.AssertStatus(t, resp, http.StatusUnauthorized)
	envelope = helpers.ParseError(t, resp)
	assert.Equal(t, "Invalid session", envelope.Message)
}

func TestVersionHeader(t *testing.T) {
	app, _ := setupApp(t)

	req := helpers.JSONRequest(t, http.MethodGet, "/api/profile", nil, validSession)
	req.Header.Set("X-Api-Version", "1")
	resp := do(t, app, req)
	helpers.AssertStatus(t, resp, http.StatusOK)
	assert.Equal(t, "1.0.0", resp.Header.Get("X-Api-Version"))

	var profile models.Profile
	helpers.ParseJSON(t, resp, &profile)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "Dana Whitfield", profile.FullName)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := setupApp(t)

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	helpers.AssertStatus(t, resp, http.StatusNotFound)
	envelope := helpers.ParseError(t, resp)
	assert.Equal(t, "notFound", envelope.Type)
}

func TestFirmLifecycle(t *testing.T) {
	app, _ := setupApp(t)

	resp := do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/firms",
		map[string]interface{}{"name": "Sequoia", "marketType": "private_markets", "foundedYear": "1972"}, validSession))
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var firm models.Firm
	helpers.ParseJSON(t, resp, &firm)
	require.NotEmpty(t, firm.ID)
	require.NotNil(t, firm.FoundedYear)
	assert.Equal(t, 1972, *firm.FoundedYear)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/firms",
		map[string]interface{}{"name": "No Market"}, validSession))
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	envelope := helpers.ParseError(t, resp)
	assert.Equal(t, "validation", envelope.Type)
	assert.Equal(t, "marketType", envelope.Field)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodPatch, "/api/firms/"+firm.ID,
		map[string]interface{}{"headquarters": "Menlo Park"}, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/firms/"+firm.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var detail services.FirmDetail
	helpers.ParseJSON(t, resp, &detail)
	require.NotNil(t, detail.Firm.Headquarters)
	assert.Equal(t, "Menlo Park", *detail.Firm.Headquarters)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/firms?market=public_markets", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var firms []models.Firm
	helpers.ParseJSON(t, resp, &firms)
	assert.Empty(t, firms)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/firms?market=venture", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodDelete, "/api/firms/"+firm.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/firms/"+firm.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusNotFound)
}

func TestEmptyBody(t *testing.T) {
	app, _ := setupApp(t)

	resp := do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/companies", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	envelope := helpers.ParseError(t, resp)
	assert.Equal(t, "body", envelope.Field)
}

func TestNoteTagging(t *testing.T) {
	app, db := setupApp(t)
	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	company := helpers.CreateTestCompany(t, db, "Stripe")

	resp := do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/notes", map[string]interface{}{
		"title":      "Q4 Review",
		"content":    "Strong quarter",
		"entityTags": map[string]string{"entityType": "firm", "entityId": firm.ID},
	}, validSession))
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var note services.NoteView
	helpers.ParseJSON(t, resp, &note)
	assert.Equal(t, "Dana Whitfield", note.Author)
	require.Len(t, note.Tags, 1)

	tag := map[string]string{"entityType": "company", "entityId": company.ID}
	resp = do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/notes/"+note.ID+"/tags", tag, validSession))
	helpers.AssertStatus(t, resp, http.StatusCreated)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/notes/"+note.ID+"/tags", tag, validSession))
	helpers.AssertStatus(t, resp, http.StatusConflict)
	envelope := helpers.ParseError(t, resp)
	assert.Equal(t, "duplicateRelationship", envelope.Type)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes/"+note.ID+"/tags", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var tags []services.TagView
	helpers.ParseJSON(t, resp, &tags)
	assert.Len(t, tags, 2)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodDelete, "/api/notes/"+note.ID+"/tags/company/"+company.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusNoContent)
	helpers.AssertNoContent(t, resp)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodDelete, "/api/notes/"+note.ID+"/tags/company/"+company.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusNoContent)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodDelete, "/api/notes/"+note.ID+"/tags/person/x", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes/"+note.ID+"/entities", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var entities services.NoteEntities
	helpers.ParseJSON(t, resp, &entities)
	assert.Len(t, entities.Firms, 1)
	assert.Empty(t, entities.Companies)
}

func TestNoteListQuery(t *testing.T) {
	app, db := setupApp(t)
	firm := helpers.CreateTestFirm(t, db, "Wellington", models.MarketPublic)
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		helpers.CreateTestNote(t, db, "note", nil, "Bob", now.Add(-time.Duration(i)*time.Minute), firm.Ref())
	}
	helpers.CreateTestNote(t, db, "untagged", nil, "Bob", now.Add(-time.Hour))

	resp := do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes?limit=2", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var notes []services.NoteView
	helpers.ParseJSON(t, resp, &notes)
	assert.Len(t, notes, 2)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes?market=public_markets", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	notes = nil
	helpers.ParseJSON(t, resp, &notes)
	assert.Len(t, notes, 3)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes?limit=0", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	envelope := helpers.ParseError(t, resp)
	assert.Equal(t, "limit", envelope.Field)
}

func TestDealCreateUsesCaller(t *testing.T) {
	app, db := setupApp(t)
	company := helpers.CreateTestCompany(t, db, "Figma")

	resp := do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/deals", map[string]interface{}{
		"name": "Series F", "entityType": "company", "entityId": company.ID, "ownerName": "Dana",
	}, validSession))
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var deal models.Deal
	helpers.ParseJSON(t, resp, &deal)
	assert.Equal(t, "user-1", deal.OwnerID)
	assert.Equal(t, models.StageTriage, deal.Stage)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodPatch, "/api/deals/"+deal.ID,
		map[string]interface{}{"stage": "committed"}, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/deals?stage=committed", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var deals []models.Deal
	helpers.ParseJSON(t, resp, &deals)
	require.Len(t, deals, 1)
	assert.Equal(t, deal.ID, deals[0].ID)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/dashboard/stats", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var stats services.DashboardStats
	helpers.ParseJSON(t, resp, &stats)
	assert.Equal(t, int64(1), stats.Deals.ByStage[models.StageCommitted])
}

func TestFileUploadAndDownload(t *testing.T) {
	app, db := setupApp(t)
	fund := helpers.CreateTestFund(t, db, "Fund XVI", nil, models.MarketPrivate)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("entityType", "fund"))
	require.NoError(t, form.WriteField("entityId", fund.ID))
	part, err := form.CreateFormFile("file", "lpa.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("limited partnership agreement"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: validSession})
	resp := do(t, app, req)
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var file models.FileAttachment
	helpers.ParseJSON(t, resp, &file)
	assert.Equal(t, "lpa.txt", file.FileName)
	assert.Equal(t, "user-1", file.UploadedBy)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/files/"+file.ID+"/download", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "limited partnership agreement", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "lpa.txt")

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/files?entityType=fund&entityId="+fund.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var files []models.FileAttachment
	helpers.ParseJSON(t, resp, &files)
	assert.Len(t, files, 1)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/files?entityType=fund", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusBadRequest)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodDelete, "/api/files/"+file.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/files/"+file.ID+"/download", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusNotFound)
}

func TestPrivateNoteRoundTrip(t *testing.T) {
	app, _ := setupApp(t)

	resp := do(t, app, helpers.JSONRequest(t, http.MethodPost, "/api/notes", map[string]interface{}{
		"title":    "secret",
		"content":  "board minutes",
		"isPublic": false,
	}, validSession))
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created services.NoteView
	helpers.ParseJSON(t, resp, &created)
	assert.False(t, created.IsPublic)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes/"+created.ID, nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var fetched services.NoteView
	helpers.ParseJSON(t, resp, &fetched)
	assert.False(t, fetched.IsPublic)
}

func TestPatchNullYearClears(t *testing.T) {
	app, db := setupApp(t)
	company := helpers.CreateTestCompany(t, db, "Stripe")

	resp := do(t, app, helpers.JSONRequest(t, http.MethodPatch, "/api/companies/"+company.ID,
		map[string]interface{}{"foundedYear": 2010}, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var updated models.Company
	helpers.ParseJSON(t, resp, &updated)
	require.NotNil(t, updated.FoundedYear)
	assert.Equal(t, 2010, *updated.FoundedYear)

	resp = do(t, app, helpers.JSONRequest(t, http.MethodPatch, "/api/companies/"+company.ID,
		map[string]interface{}{"foundedYear": nil}, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	updated = models.Company{}
	helpers.ParseJSON(t, resp, &updated)
	assert.Nil(t, updated.FoundedYear)
}

func TestConfiguredNotesMaxLimit(t *testing.T) {
	db := helpers.OpenTestDB(t)
	blobs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	app := server.New(server.Options{
		Config:    &config.Config{NotesDefaultLimit: 20, NotesMaxLimit: 200},
		DB:        db,
		Blobs:     blobs,
		Validator: stubValidator{},
	})

	now := time.Now().UTC()
	for i := 0; i < services.MaxNoteLimit+5; i++ {
		helpers.CreateTestNote(t, db, "note", nil, "Bob", now.Add(-time.Duration(i)*time.Second))
	}

	resp := do(t, app, helpers.JSONRequest(t, http.MethodGet, "/api/notes?limit=150", nil, validSession))
	helpers.AssertStatus(t, resp, http.StatusOK)
	var notes []services.NoteView
	helpers.ParseJSON(t, resp, &notes)
	assert.Len(t, notes, services.MaxNoteLimit+5)
}
