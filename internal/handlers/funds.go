// funds.go
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

// FundHandler handles fund routes
type FundHandler struct {
	DB *gorm.DB
}

// List handles GET /api/funds
// @Summary List funds
// @Description List funds newest first with their firm
// @Tags Funds
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param market query string false "all, public_markets or private_markets"
// @Param firmId query string false "Only funds of this firm"
// @Success 200 {array} models.Fund
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /funds [get]
func (h *FundHandler) List(c *fiber.Ctx) error {
	market, err := parseMarket(c)
	if err != nil {
		return fail(c, err)
	}

	funds, err := services.ListFunds(c.UserContext(), h.DB, services.ListFilter{
		Search: c.Query("search"),
		Market: market,
		FirmID: c.Query("firmId"),
	})
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, funds, fiber.StatusOK)
}

// Get handles GET /api/funds/:id
// @Summary Get a fund
// @Description Get a fund with its firm, notes, deals, counts and activity
// @Tags Funds
// @Produce json
// @Param id path string true "Fund ID"
// @Success 200 {object} services.FundDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /funds/{id} [get]
func (h *FundHandler) Get(c *fiber.Ctx) error {
	detail, err := services.GetFundDetail(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, detail, fiber.StatusOK)
}

// Create handles POST /api/funds
// @Summary Create a fund
// @Description marketType may be omitted when firmId is given
// @Tags Funds
// @Accept json
// @Produce json
// @Param fund body services.FundInput true "Fund"
// @Success 201 {object} models.Fund
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /funds [post]
func (h *FundHandler) Create(c *fiber.Ctx) error {
	var input services.FundInput
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	fund, err := services.CreateFund(c.UserContext(), h.DB, input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fund, fiber.StatusCreated)
}

// Update handles PATCH /api/funds/:id
// @Summary Update a fund
// @Description Partial update. A blank firmId detaches the fund from its firm.
// @Tags Funds
// @Accept json
// @Produce json
// @Param id path string true "Fund ID"
// @Param fund body services.FundPatch true "Fields to change"
// @Success 200 {object} models.Fund
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /funds/{id} [patch]
func (h *FundHandler) Update(c *fiber.Ctx) error {
	var input services.FundPatch
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	fund, err := services.UpdateFund(c.UserContext(), h.DB, c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fund, fiber.StatusOK)
}

// Delete handles DELETE /api/funds/:id
// @Summary Delete a fund
// @Tags Funds
// @Produce json
// @Param id path string true "Fund ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /funds/{id} [delete]
func (h *FundHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.DeleteFund(c.UserContext(), h.DB, id); err != nil {
		return fail(c, err)
	}
	return deleted(c, id)
}

// Activity handles GET /api/funds/:id/activity
// @Summary Fund activity
// @Tags Funds
// @Produce json
// @Param id path string true "Fund ID"
// @Success 200 {array} services.ActivityItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /funds/{id}/activity [get]
func (h *FundHandler) Activity(c *fiber.Ctx) error {
	return activity(c, h.DB, models.FundRef(c.Params("id")))
}
