// profile.go
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
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/utils"
	"gorm.io/gorm"
)

// ProfileHandler handles the caller's profile
type ProfileHandler struct {
	DB *gorm.DB
}

// Get handles GET /api/profile
// @Summary Get the caller's profile
// @Description Creates the profile from the session identity on first use
// @Tags Profile
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile, err := services.EnsureProfile(c.UserContext(), h.DB, currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// Update handles PATCH /api/profile
// @Summary Update the caller's profile
// @Description A new full name is shown on every note the caller has written
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body services.ProfilePatch true "Fields to change"
// @Success 200 {object} models.Profile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profile [patch]
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var input services.ProfilePatch
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	profile, err := services.UpdateProfile(c.UserContext(), h.DB, currentUser(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}
