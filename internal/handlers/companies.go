// companies.go
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

// CompanyHandler handles company routes
type CompanyHandler struct {
	DB *gorm.DB
}

// List handles GET /api/companies
// @Summary List companies
// @Tags Companies
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Success 200 {array} models.Company
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	companies, err := services.ListCompanies(c.UserContext(), h.DB, services.ListFilter{Search: c.Query("search")})
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, companies, fiber.StatusOK)
}

// Get handles GET /api/companies/:id
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} services.CompanyDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	detail, err := services.GetCompanyDetail(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, detail, fiber.StatusOK)
}

// Create handles POST /api/companies
// @Summary Create a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param company body services.CompanyInput true "Company"
// @Success 201 {object} models.Company
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var input services.CompanyInput
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	company, err := services.CreateCompany(c.UserContext(), h.DB, input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, company, fiber.StatusCreated)
}

// Update handles PATCH /api/companies/:id
// @Summary Update a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param company body services.CompanyPatch true "Fields to change"
// @Success 200 {object} models.Company
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id} [patch]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var input services.CompanyPatch
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	company, err := services.UpdateCompany(c.UserContext(), h.DB, c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, company, fiber.StatusOK)
}

// Delete handles DELETE /api/companies/:id
// @Summary Delete a company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.DeleteCompany(c.UserContext(), h.DB, id); err != nil {
		return fail(c, err)
	}
	return deleted(c, id)
}

// Activity handles GET /api/companies/:id/activity
// @Summary Company activity
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {array} services.ActivityItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id}/activity [get]
func (h *CompanyHandler) Activity(c *fiber.Ctx) error {
	return activity(c, h.DB, models.CompanyRef(c.Params("id")))
}
