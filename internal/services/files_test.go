// files_test.go
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
	"io"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/localnerve/endowment-crm/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFileMetadata(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	note := helpers.CreateTestNote(t, db, "Q4 Review", nil, "Bob", time.Now())

	input := FileInput{
		FileName:   "deck.pdf",
		FilePath:   "firm/" + firm.ID + "/1_deck.pdf",
		FileSize:   2048,
		FileType:   "application/pdf",
		EntityType: strPtr("firm"),
		EntityID:   &firm.ID,
	}
	file, err := CreateFile(ctx, db, testIdentity(), input)
	require.NoError(t, err)
	assert.Equal(t, "user-1", file.UploadedBy)
	ref, ok := file.Ref()
	require.True(t, ok)
	assert.Equal(t, firm.Ref(), ref)

	_, err = CreateFile(ctx, db, nil, input)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	half := input
	half.EntityID = nil
	_, err = CreateFile(ctx, db, testIdentity(), half)
	assert.ErrorIs(t, err, types.ErrValidation)

	empty := input
	empty.FileSize = 0
	_, err = CreateFile(ctx, db, testIdentity(), empty)
	assert.ErrorIs(t, err, types.ErrValidation)

	onNote := FileInput{FileName: "memo.txt", FilePath: "notes/x/1_memo.txt", FileSize: 1, FileType: "text/plain", NoteID: &note.ID}
	_, err = CreateFile(ctx, db, testIdentity(), onNote)
	require.NoError(t, err)

	missing := "missing"
	onNote.NoteID = &missing
	_, err = CreateFile(ctx, db, testIdentity(), onNote)
	assert.ErrorIs(t, err, types.ErrNotFound)

	byEntity, err := ListFiles(ctx, db, FileFilter{Target: &ref})
	require.NoError(t, err)
	require.Len(t, byEntity, 1)
	assert.Equal(t, file.ID, byEntity[0].ID)

	byNote, err := ListFiles(ctx, db, FileFilter{NoteID: note.ID})
	require.NoError(t, err)
	require.Len(t, byNote, 1)
	assert.Equal(t, "memo.txt", byNote[0].FileName)

	all, err := ListFiles(ctx, db, FileFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUploadDownloadDelete(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	blobs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	company := helpers.CreateTestCompany(t, db, "Stripe")
	ref := company.Ref()
	body := "cap table"

	file, err := UploadFile(ctx, db, blobs, testIdentity(), UploadInput{
		FileName: "cap table (v2).xlsx",
		FileSize: int64(len(body)),
		Body:     strings.NewReader(body),
		Target:   &ref,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.FilePath, "company/"+company.ID+"/"), file.FilePath)
	assert.True(t, strings.HasSuffix(file.FilePath, "_cap_table__v2_.xlsx"), file.FilePath)
	assert.Equal(t, "application/octet-stream", file.FileType)

	download, err := DownloadFile(ctx, db, blobs, file.ID)
	require.NoError(t, err)
	assert.Empty(t, download.URL)
	require.NotNil(t, download.Body)
	content, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	require.NoError(t, download.Body.Close())
	assert.Equal(t, body, string(content))

	require.NoError(t, DeleteFile(ctx, db, blobs, file.ID))
	_, err = GetFile(ctx, db, file.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = blobs.Get(ctx, file.FilePath)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)

	assert.ErrorIs(t, DeleteFile(ctx, db, blobs, file.ID), types.ErrNotFound)
}

func TestUploadRejectsBadTargets(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	root := t.TempDir()
	blobs, err := storage.NewFileStore(root)
	require.NoError(t, err)

	upload := func(target *models.EntityRef, noteID string) error {
		_, err := UploadFile(ctx, db, blobs, testIdentity(), UploadInput{
			FileName: "a.txt", FileSize: 1, Body: strings.NewReader("a"), Target: target, NoteID: noteID,
		})
		return err
	}

	assert.ErrorIs(t, upload(nil, ""), types.ErrValidation)
	missing := models.FirmRef("missing")
	assert.ErrorIs(t, upload(&missing, ""), types.ErrNotFound)
	assert.ErrorIs(t, upload(nil, "missing"), types.ErrNotFound)

	_, err = UploadFile(ctx, db, blobs, nil, UploadInput{FileName: "a.txt", FileSize: 1, Body: strings.NewReader("a"), NoteID: "x"})
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	files, err := ListFiles(ctx, db, FileFilter{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDownloadMissingBlob(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	blobs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)

	file, err := CreateFile(ctx, db, testIdentity(), FileInput{
		FileName: "gone.pdf", FilePath: "firm/x/1_gone.pdf", FileSize: 10, FileType: "application/pdf",
		EntityType: strPtr("firm"), EntityID: &firm.ID,
	})
	require.NoError(t, err)

	_, err = DownloadFile(ctx, db, blobs, file.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = DownloadFile(ctx, db, blobs, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
