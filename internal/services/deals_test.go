// deals_test.go
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
	"errors"
	"testing"
	"time"

	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/localnerve/endowment-crm/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDealDefaults(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	fund := helpers.CreateTestFund(t, db, "Fund XVI", nil, models.MarketPrivate)

	deal, err := CreateDeal(ctx, db, testIdentity(), DealInput{
		Name:              "Fund XVI commitment",
		EntityType:        "fund",
		EntityID:          fund.ID,
		OwnerName:         "Dana",
		ExpectedCloseDate: strPtr("2026-12-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageTriage, deal.Stage)
	assert.Equal(t, models.PriorityMedium, deal.Priority)
	assert.Equal(t, "user-1", deal.OwnerID)
	require.NotNil(t, deal.ExpectedCloseDate)

	got, err := GetDeal(ctx, db, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageTriage, got.Stage)
	assert.Equal(t, fund.ID, got.EntityRef.ID)
}

func TestCreateDealValidation(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	company := helpers.CreateTestCompany(t, db, "Stripe")

	base := func() DealInput {
		return DealInput{Name: "Secondary", EntityType: "company", EntityID: company.ID, OwnerName: "Dana"}
	}

	tests := []struct {
		name   string
		mutate func(*DealInput)
		field  string
	}{
		{"missing owner name", func(in *DealInput) { in.OwnerName = " " }, "ownerName"},
		{"missing name", func(in *DealInput) { in.Name = "" }, "name"},
		{"unknown stage", func(in *DealInput) { in.Stage = "closed" }, "stage"},
		{"unknown priority", func(in *DealInput) { in.Priority = "urgent" }, "priority"},
		{"bad entity type", func(in *DealInput) { in.EntityType = "person" }, "entityType"},
		{"bad date", func(in *DealInput) { in.ActualCloseDate = strPtr("31/12/2026") }, "actualCloseDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := base()
			tt.mutate(&input)
			_, err := CreateDeal(ctx, db, testIdentity(), input)
			var verr *types.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	input := base()
	input.EntityID = "missing"
	_, err := CreateDeal(ctx, db, testIdentity(), input)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = CreateDeal(ctx, db, nil, base())
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	input = base()
	input.OwnerID = "owner-9"
	deal, err := CreateDeal(ctx, db, nil, input)
	require.NoError(t, err)
	assert.Equal(t, "owner-9", deal.OwnerID)
}

func TestUpdateDealMovesToAnyStage(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	deal := helpers.CreateTestDeal(t, db, "Commitment", firm.Ref(), models.StageTriage, time.Now())

	for _, stage := range []models.DealStage{models.StageCommitted, models.StageTriage, models.StagePass, models.StageICVote} {
		s := stage
		updated, err := UpdateDeal(ctx, db, deal.ID, DealPatch{Stage: &s})
		require.NoError(t, err)
		assert.Equal(t, stage, updated.Stage)
	}

	bad := models.DealStage("closed")
	_, err := UpdateDeal(ctx, db, deal.ID, DealPatch{Stage: &bad})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestUpdateDealFields(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	company := helpers.CreateTestCompany(t, db, "Figma")
	deal := helpers.CreateTestDeal(t, db, "Commitment", firm.Ref(), models.StageTriage, time.Now())

	high := models.PriorityHigh
	updated, err := UpdateDeal(ctx, db, deal.ID, DealPatch{
		Priority:          &high,
		EntityType:        strPtr("company"),
		EntityID:          &company.ID,
		ProposedAmount:    strPtr("$25M"),
		ExpectedCloseDate: strPtr("2026-06-30T00:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, company.Ref(), updated.EntityRef)
	require.NotNil(t, updated.ProposedAmount)
	assert.Equal(t, "$25M", *updated.ProposedAmount)
	assert.NotNil(t, updated.ExpectedCloseDate)

	updated, err = UpdateDeal(ctx, db, deal.ID, DealPatch{ProposedAmount: strPtr(""), ExpectedCloseDate: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.ProposedAmount)
	assert.Nil(t, updated.ExpectedCloseDate)

	_, err = UpdateDeal(ctx, db, deal.ID, DealPatch{OwnerName: strPtr("")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = UpdateDeal(ctx, db, "missing", DealPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListDealsFilters(t *testing.T) {
	db := helpers.OpenTestDB(t)
	ctx := context.Background()
	firm := helpers.CreateTestFirm(t, db, "Sequoia", models.MarketPrivate)
	company := helpers.CreateTestCompany(t, db, "Stripe")
	now := time.Now().UTC()
	a := helpers.CreateTestDeal(t, db, "Sequoia commitment", firm.Ref(), models.StageDiligence, now)
	b := helpers.CreateTestDeal(t, db, "Stripe secondary", company.Ref(), models.StageDiligence, now.Add(time.Minute))
	helpers.CreateTestDeal(t, db, "Stripe tender", company.Ref(), models.StagePass, now.Add(2*time.Minute))

	deals, err := ListDeals(ctx, db, DealFilter{Stage: models.StageDiligence})
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, b.ID, deals[0].ID)
	assert.Equal(t, a.ID, deals[1].ID)

	ref := company.Ref()
	deals, err = ListDeals(ctx, db, DealFilter{Target: &ref, Search: "secondary"})
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, b.ID, deals[0].ID)

	_, err = ListDeals(ctx, db, DealFilter{Stage: "closed"})
	assert.ErrorIs(t, err, types.ErrValidation)

	require.NoError(t, DeleteDeal(ctx, db, a.ID))
	assert.ErrorIs(t, DeleteDeal(ctx, db, a.ID), types.ErrNotFound)
}
