// seed_test.go
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
	"testing"

	"github.com/localnerve/endowment-crm/data"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedEmbeddedData(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()

	seed, err := ParseSeed(data.SeedYAML)
	require.NoError(t, err)

	result, err := Seed(ctx, db, seed)
	require.NoError(t, err)
	assert.Equal(t, len(seed.Firms), result.Firms)
	assert.Equal(t, len(seed.Funds), result.Funds)
	assert.Equal(t, len(seed.Companies), result.Companies)
	assert.Equal(t, len(seed.Notes), result.Notes)
	assert.Equal(t, len(seed.Deals), result.Deals)

	notes, err := ListNotes(ctx, db, NoteFilter{Market: MarketAll})
	require.NoError(t, err)
	require.Len(t, notes, result.Notes)
	for _, n := range notes {
		assert.NotEqual(t, UnknownAuthor, n.Author)
	}

	var funds []models.Fund
	require.NoError(t, db.Where("firm_id IS NOT NULL").Find(&funds).Error)
	assert.NotEmpty(t, funds)

	_, err = Seed(ctx, db, seed)
	assert.ErrorIs(t, err, ErrAlreadySeeded)
}

func TestSeedUnknownReference(t *testing.T) {
	db := helpers.OpenTestDB(t)

	seed, err := ParseSeed([]byte(`
firms:
  - key: a
    name: Alpha
    marketType: private_markets
funds:
  - key: f
    firm: nope
    name: Fund I
`))
	require.NoError(t, err)

	_, err = Seed(context.Background(), db, seed)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Firm{}).Count(&count).Error)
	assert.Zero(t, count, "a failed seed leaves nothing behind")
}

func TestParseSeedRejectsBadYAML(t *testing.T) {
	_, err := ParseSeed([]byte("firms: [unclosed"))
	assert.Error(t, err)
}
