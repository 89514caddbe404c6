// common.go
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
	"github.com/rs/zerolog/log"
)

// UserKey is the context key the auth middleware stores the caller's identity under
const UserKey = "user"

// currentUser returns the identity set by the auth middleware, or nil
func currentUser(c *fiber.Ctx) *services.Identity {
	id, _ := c.Locals(UserKey).(*services.Identity)
	return id
}

// bindBody decodes a JSON request body into out
func bindBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return types.NewValidationError("body", "request body is required")
	}
	if !strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		c.Request().Header.SetContentType(fiber.MIMEApplicationJSON)
	}
	if err := c.BodyParser(out); err != nil {
		return types.NewValidationError("body", "invalid JSON: %v", err)
	}
	return nil
}

// queryRef reads an optional entityType/entityId pair from the query string.
// Both or neither must be present.
func queryRef(c *fiber.Ctx) (*models.EntityRef, error) {
	entityType := strings.TrimSpace(c.Query("entityType"))
	entityID := strings.TrimSpace(c.Query("entityId"))
	if entityType == "" && entityID == "" {
		return nil, nil
	}
	ref, err := models.ParseEntityRef(entityType, entityID)
	if err != nil {
		return nil, types.NewValidationError("entityType", "%v", err)
	}
	return &ref, nil
}

// pathRef builds a reference from the :entityType and :entityId route params
func pathRef(c *fiber.Ctx) (models.EntityRef, error) {
	ref, err := models.ParseEntityRef(c.Params("entityType"), c.Params("entityId"))
	if err != nil {
		return models.EntityRef{}, types.NewValidationError("entityType", "%v", err)
	}
	return ref, nil
}

// parseMarket reads the market query parameter for entity lists
func parseMarket(c *fiber.Ctx) (models.MarketType, error) {
	market := models.MarketType(strings.TrimSpace(c.Query("market")))
	if market == "" || market == services.MarketAll {
		return "", nil
	}
	if !market.Valid() {
		return "", types.NewValidationError("market", "must be one of all, public_markets, private_markets")
	}
	return market, nil
}

// fail renders err in the error envelope, logging anything that is not a caller error
func fail(c *fiber.Ctx, err error) error {
	ce := utils.ToCustomError(err)
	if ce.Code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("url", c.OriginalURL()).Msg("Request failed")
	}
	return utils.FieldErrorResponse(c, ce.Message, ce.Code, ce.Type, ce.Field)
}

func deleted(c *fiber.Ctx, id string) error {
	return utils.SuccessResponse(c, utils.DeleteResponseStruct{Ok: true, ID: id}, fiber.StatusOK)
}
