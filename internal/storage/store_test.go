// store_test.go
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

package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Q3_memo__final_.pdf", storage.SanitizeFileName("Q3 memo (final).pdf"))
	assert.Equal(t, "passwd", storage.SanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "evil.txt", storage.SanitizeFileName(`C:\temp\evil.txt`))
	assert.Equal(t, "file", storage.SanitizeFileName(""))
}

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "firm/abc/1700000000123_deck.pdf", storage.ObjectKey("firm", "abc", at, "deck.pdf"))
	assert.Equal(t, "notes/n1/1700000000123_a_b.txt", storage.ObjectKey("notes", "n1", at, "a b.txt"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	key := "company/c1/1_report.txt"
	require.NoError(t, store.Put(ctx, key, strings.NewReader("hello"), 5, "text/plain"))

	rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	url, err := store.PresignURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
	assert.ErrorIs(t, store.Delete(ctx, key), storage.ErrBlobNotFound)
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}
