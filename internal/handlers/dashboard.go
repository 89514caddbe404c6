// dashboard.go
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
	"github.com/localnerve/endowment-crm/internal/config"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/utils"
	"gorm.io/gorm"
)

// DashboardHandler serves aggregate counts
type DashboardHandler struct {
	DB *gorm.DB
}

// Stats handles GET /api/dashboard/stats
// @Summary Dashboard statistics
// @Description Firm and fund totals by market type, company and note totals, deals by stage and priority
// @Tags Dashboard
// @Produce json
// @Success 200 {object} services.DashboardStats
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := services.GetDashboardStats(c.UserContext(), h.DB)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, stats, fiber.StatusOK)
}

// HealthHandler reports dependency health
type HealthHandler struct {
	Cfg *config.Config
	DB  *gorm.DB
}

// Health handles GET /health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return utils.SuccessResponse(c, result, status)
}
