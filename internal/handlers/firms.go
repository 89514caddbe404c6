// firms.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/utils"
	"gorm.io/gorm"
)

// FirmHandler handles firm routes
type FirmHandler struct {
	DB *gorm.DB
}

// List handles GET /api/firms
// @Summary List firms
// @Description List firms newest first, optionally filtered by name and market type
// @Tags Firms
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param market query string false "all, public_markets or private_markets"
// @Success 200 {array} models.Firm
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /firms [get]
func (h *FirmHandler) List(c *fiber.Ctx) error {
	market, err := parseMarket(c)
	if err != nil {
		return fail(c, err)
	}

	firms, err := services.ListFirms(c.UserContext(), h.DB, services.ListFilter{
		Search: c.Query("search"),
		Market: market,
	})
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, firms, fiber.StatusOK)
}

// Get handles GET /api/firms/:id
// @Summary Get a firm
// @Description Get a firm with its funds, notes, deals, counts and activity
// @Tags Firms
// @Produce json
// @Param id path string true "Firm ID"
// @Success 200 {object} services.FirmDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /firms/{id} [get]
func (h *FirmHandler) Get(c *fiber.Ctx) error {
	detail, err := services.GetFirmDetail(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, detail, fiber.StatusOK)
}

// Create handles POST /api/firms
// @Summary Create a firm
// @Tags Firms
// @Accept json
// @Produce json
// @Param firm body services.FirmInput true "Firm"
// @Success 201 {object} models.Firm
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /firms [post]
func (h *FirmHandler) Create(c *fiber.Ctx) error {
	var input services.FirmInput
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	firm, err := services.CreateFirm(c.UserContext(), h.DB, input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, firm, fiber.StatusCreated)
}

// Update handles PATCH /api/firms/:id
// @Summary Update a firm
// @Description Partial update. Blank optional fields are cleared.
// @Tags Firms
// @Accept json
// @Produce json
// @Param id path string true "Firm ID"
// @Param firm body services.FirmPatch true "Fields to change"
// @Success 200 {object} models.Firm
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /firms/{id} [patch]
func (h *FirmHandler) Update(c *fiber.Ctx) error {
	var input services.FirmPatch
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	firm, err := services.UpdateFirm(c.UserContext(), h.DB, c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, firm, fiber.StatusOK)
}

// Delete handles DELETE /api/firms/:id
// @Summary Delete a firm
// @Description Deletes the firm, its funds and every tag link to either
// @Tags Firms
// @Produce json
// @Param id path string true "Firm ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /firms/{id} [delete]
func (h *FirmHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.DeleteFirm(c.UserContext(), h.DB, id); err != nil {
		return fail(c, err)
	}
	return deleted(c, id)
}

// Activity handles GET /api/firms/:id/activity
// @Summary Firm activity
// @Description Notes and deals for the firm, newest first
// @Tags Firms
// @Produce json
// @Param id path string true "Firm ID"
// @Success 200 {array} services.ActivityItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /firms/{id}/activity [get]
func (h *FirmHandler) Activity(c *fiber.Ctx) error {
	return activity(c, h.DB, models.FirmRef(c.Params("id")))
}

func activity(c *fiber.Ctx, db *gorm.DB, ref models.EntityRef) error {
	items, err := services.GetEntityActivity(c.UserContext(), db, ref)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, items, fiber.StatusOK)
}
