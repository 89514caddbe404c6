// deals.go
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

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/localnerve/endowment-crm/internal/utils"
	"gorm.io/gorm"
)

// DealHandler handles deal pipeline routes
type DealHandler struct {
	DB *gorm.DB
}

// List handles GET /api/deals
// @Summary List deals
// @Tags Deals
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param stage query string false "triage, diligence, ic_vote, committed or pass"
// @Param entityType query string false "Target type; requires entityId"
// @Param entityId query string false "Target ID; requires entityType"
// @Success 200 {array} models.Deal
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /deals [get]
func (h *DealHandler) List(c *fiber.Ctx) error {
	target, err := queryRef(c)
	if err != nil {
		return fail(c, err)
	}

	stage := models.DealStage(strings.TrimSpace(c.Query("stage")))
	if stage != "" && !stage.Valid() {
		return fail(c, types.NewValidationError("stage", "unknown deal stage %q", stage))
	}

	deals, err := services.ListDeals(c.UserContext(), h.DB, services.DealFilter{
		Search: c.Query("search"),
		Stage:  stage,
		Target: target,
	})
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, deals, fiber.StatusOK)
}

// Get handles GET /api/deals/:id
// @Summary Get a deal
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} models.Deal
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /deals/{id} [get]
func (h *DealHandler) Get(c *fiber.Ctx) error {
	deal, err := services.GetDeal(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, deal, fiber.StatusOK)
}

// Create handles POST /api/deals
// @Summary Create a deal
// @Description Stage defaults to triage and priority to medium. ownerId defaults to the caller.
// @Tags Deals
// @Accept json
// @Produce json
// @Param deal body services.DealInput true "Deal"
// @Success 201 {object} models.Deal
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /deals [post]
func (h *DealHandler) Create(c *fiber.Ctx) error {
	var input services.DealInput
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	deal, err := services.CreateDeal(c.UserContext(), h.DB, currentUser(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, deal, fiber.StatusCreated)
}

// Update handles PATCH /api/deals/:id
// @Summary Update a deal
// @Description Partial update. Any stage may move to any other stage.
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param deal body services.DealPatch true "Fields to change"
// @Success 200 {object} models.Deal
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /deals/{id} [patch]
func (h *DealHandler) Update(c *fiber.Ctx) error {
	var input services.DealPatch
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	deal, err := services.UpdateDeal(c.UserContext(), h.DB, c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, deal, fiber.StatusOK)
}

// Delete handles DELETE /api/deals/:id
// @Summary Delete a deal
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /deals/{id} [delete]
func (h *DealHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.DeleteDeal(c.UserContext(), h.DB, id); err != nil {
		return fail(c, err)
	}
	return deleted(c, id)
}
