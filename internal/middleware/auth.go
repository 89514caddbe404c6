// auth.go
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

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/endowment-crm/internal/handlers"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/utils"
	"github.com/rs/zerolog/log"
)

// SessionCookie is the Authorizer session cookie name
const SessionCookie = "cookie_session"

// AuthUser requires a valid Authorizer session with the user role and stores the
// caller's identity for handlers.
func AuthUser(validator services.SessionValidator) fiber.Handler {
	return authorize(validator, []string{"user"})
}

// authorize performs the authorization check
func authorize(validator services.SessionValidator, roles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := c.Cookies(SessionCookie)
		if session == "" {
			return utils.ErrorResponse(c, "Authorizer cookie \""+SessionCookie+"\" not found", fiber.StatusUnauthorized, "unauthorized")
		}

		identity, err := validator.ValidateSession(c.UserContext(), session, roles)
		if err != nil {
			log.Debug().Err(err).Str("url", c.OriginalURL()).Msg("Session rejected")
			return utils.ErrorResponse(c, "Invalid session", fiber.StatusUnauthorized, "unauthorized")
		}

		c.Locals(handlers.UserKey, identity)
		return c.Next()
	}
}
