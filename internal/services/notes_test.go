// notes_test.go
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
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/localnerve/endowment-crm/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testIdentity() *Identity {
	return &Identity{UserID: "user-1", Email: "dana@example.com", Name: "Dana"}
}

func noteCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Note{}).Count(&n).Error)
	return n
}

func TestListNotesMarketFilter(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()

	private := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	public := helpers.CreateTestFirm(t, db, "Wellington", models.MarketPublic)
	fund := helpers.CreateTestFund(t, db, "Fund XVI", &private, models.MarketPrivate)
	company := helpers.CreateTestCompany(t, db, "Stripe")

	now := time.Now().UTC()
	both := helpers.CreateTestNote(t, db, "firm and fund", nil, "Bob", now, private.Ref(), fund.Ref())
	companyOnly := helpers.CreateTestNote(t, db, "company only", nil, "Bob", now.Add(-time.Minute), company.Ref())
	publicNote := helpers.CreateTestNote(t, db, "public", nil, "Bob", now.Add(-2*time.Minute), public.Ref())

	notes, err := ListNotes(ctx, db, NoteFilter{Market: string(models.MarketPrivate)})
	require.NoError(t, err)
	require.Len(t, notes, 1, "a note reached through two tags appears once")
	assert.Equal(t, both.ID, notes[0].ID)

	notes, err = ListNotes(ctx, db, NoteFilter{Market: string(models.MarketPublic)})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, publicNote.ID, notes[0].ID)

	for _, market := range []string{"", MarketAll} {
		notes, err = ListNotes(ctx, db, NoteFilter{Market: market})
		require.NoError(t, err)
		require.Len(t, notes, 3)
		assert.Equal(t, []string{both.ID, companyOnly.ID, publicNote.ID},
			[]string{notes[0].ID, notes[1].ID, notes[2].ID})
	}

	_, err = ListNotes(ctx, db, NoteFilter{Market: "venture"})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestListNotesLimit(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < DefaultNoteLimit+5; i++ {
		helpers.CreateTestNote(t, db, "note", nil, "Bob", now.Add(-time.Duration(i)*time.Second))
	}

	notes, err := ListNotes(ctx, db, NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, notes, DefaultNoteLimit)

	notes, err = ListNotes(ctx, db, NoteFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, notes, 3)

	notes, err = ListNotes(ctx, db, NoteFilter{Limit: MaxNoteLimit * 2})
	require.NoError(t, err)
	assert.Len(t, notes, DefaultNoteLimit+5)
}

func TestCreateNoteRequiresIdentity(t *testing.T) {
	db := helpers.OpenTestDB(t)

	_, err := CreateNote(context.Background(), db, nil, NoteInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, types.ErrUnauthorized)
	assert.Zero(t, noteCount(t, db))
}

func TestCreateNoteValidation(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()

	_, err := CreateNote(ctx, db, testIdentity(), NoteInput{Title: "  ", Content: "c"})
	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	_, err = CreateNote(ctx, db, testIdentity(), NoteInput{Title: "t", Content: "   "})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "content", verr.Field)
}

func TestCreateNoteWithTags(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()

	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	fund := helpers.CreateTestFund(t, db, "Fund XVI", &firm, models.MarketPrivate)

	var input NoteInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Q4 Review",
		"content": "Strong quarter",
		"isPublic": false,
		"entityTags": [
			{"entityType": "firm", "entityId": "`+firm.ID+`"},
			{"entityType": "fund", "entityId": "`+fund.ID+`"},
			{"entityType": "firm", "entityId": "`+firm.ID+`"}
		]
	}`), &input))

	note, err := CreateNote(ctx, db, testIdentity(), input)
	require.NoError(t, err)
	assert.Len(t, note.Tags, 2, "repeated tags are collapsed")
	assert.Equal(t, "Dana", note.Author)

	got, err := GetNote(ctx, db, note.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)
	assert.Len(t, got.Tags, 2)

	profile, err := GetProfile(ctx, db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Dana", profile.FullName)
}

func TestCreateNoteSingleTagObject(t *testing.T) {
	db := helpers.OpenTestDB(t)
	company := helpers.CreateTestCompany(t, db, "Stripe")

	var input NoteInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","content":"c",
		"entityTags":{"entityType":"company","entityId":"`+company.ID+`"}}`), &input))

	note, err := CreateNote(context.Background(), db, testIdentity(), input)
	require.NoError(t, err)
	require.Len(t, note.Tags, 1)
	assert.Equal(t, company.ID, note.Tags[0].EntityID)
	assert.True(t, note.IsPublic)
}

func TestCreateNoteRollsBackOnBadTag(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)

	input := NoteInput{
		Title:   "Q4 Review",
		Content: "Strong quarter",
		EntityTags: types.FlexList[TagInput]{
			{EntityType: "firm", EntityID: firm.ID},
			{EntityType: "fund", EntityID: "missing"},
		},
	}
	_, err := CreateNote(ctx, db, testIdentity(), input)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.Zero(t, noteCount(t, db))
	var links int64
	require.NoError(t, db.Model(&models.TagLink{}).Count(&links).Error)
	assert.Zero(t, links)

	input.EntityTags = types.FlexList[TagInput]{{EntityType: "person", EntityID: "x"}}
	_, err = CreateNote(ctx, db, testIdentity(), input)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Zero(t, noteCount(t, db))
}

func TestUpdateNote(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	note := helpers.CreateTestNote(t, db, "draft", nil, "Bob", time.Now())

	private := false
	updated, err := UpdateNote(ctx, db, note.ID, NotePatch{Title: strPtr(" final "), IsPublic: &private})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, note.Content, updated.Content)

	_, err = UpdateNote(ctx, db, note.ID, NotePatch{Content: strPtr("")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = UpdateNote(ctx, db, "missing", NotePatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteNoteCascades(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	blobs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	note := helpers.CreateTestNote(t, db, "Q4 Review", nil, "Bob", time.Now(), firm.Ref())

	body := "quarterly letter"
	file, err := UploadFile(ctx, db, blobs, testIdentity(), UploadInput{
		FileName: "letter.txt",
		FileType: "text/plain",
		FileSize: int64(len(body)),
		Body:     strings.NewReader(body),
		NoteID:   note.ID,
	})
	require.NoError(t, err)

	require.NoError(t, DeleteNote(ctx, db, blobs, note.ID))

	assert.Zero(t, noteCount(t, db))
	var links, files int64
	require.NoError(t, db.Model(&models.TagLink{}).Count(&links).Error)
	require.NoError(t, db.Model(&models.FileAttachment{}).Count(&files).Error)
	assert.Zero(t, links)
	assert.Zero(t, files)

	_, err = blobs.Get(ctx, file.FilePath)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)

	_, err = GetFirm(ctx, db, firm.ID)
	assert.NoError(t, err, "tagged entities survive")

	err = DeleteNote(ctx, db, blobs, note.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCreatePrivateNote(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()

	private := false
	note, err := CreateNote(ctx, db, testIdentity(), NoteInput{Title: "secret", Content: "c", IsPublic: &private})
	require.NoError(t, err)
	assert.False(t, note.IsPublic)

	var stored models.Note
	require.NoError(t, db.Where("id = ?", note.ID).First(&stored).Error)
	assert.False(t, stored.IsPublic)

	note, err = CreateNote(ctx, db, testIdentity(), NoteInput{Title: "open", Content: "c"})
	require.NoError(t, err)
	assert.True(t, note.IsPublic)
}

func TestListNotesConfiguredMaxLimit(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < MaxNoteLimit+5; i++ {
		helpers.CreateTestNote(t, db, "note", nil, "Bob", now.Add(-time.Duration(i)*time.Second))
	}

	notes, err := ListNotes(ctx, db, NoteFilter{Limit: MaxNoteLimit + 5, MaxLimit: 2 * MaxNoteLimit})
	require.NoError(t, err)
	assert.Len(t, notes, MaxNoteLimit+5)

	notes, err = ListNotes(ctx, db, NoteFilter{Limit: MaxNoteLimit + 5})
	require.NoError(t, err)
	assert.Len(t, notes, MaxNoteLimit)

	notes, err = ListNotes(ctx, db, NoteFilter{Limit: 10, MaxLimit: 4})
	require.NoError(t, err)
	assert.Len(t, notes, 4)
}
