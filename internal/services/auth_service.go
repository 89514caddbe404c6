// auth_service.go
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
	"fmt"
	"strings"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/endowment-crm/internal/config"
	"github.com/localnerve/endowment-crm/internal/utils"
	"github.com/rs/zerolog/log"
)

// SessionValidator turns a session cookie into the caller's identity.
type SessionValidator interface {
	ValidateSession(ctx context.Context, cookie string, roles []string) (*Identity, error)
}

// AuthorizerValidator validates sessions against an Authorizer instance. The client is
// created on first use so the service can start before Authorizer is reachable.
type AuthorizerValidator struct {
	cfg *config.Config

	mu     sync.Mutex
	client *authorizer.AuthorizerClient
}

// NewAuthorizerValidator returns a validator for the configured Authorizer
func NewAuthorizerValidator(cfg *config.Config) *AuthorizerValidator {
	return &AuthorizerValidator{cfg: cfg}
}

// Initialized reports whether the Authorizer client has been created
func (v *AuthorizerValidator) Initialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.client != nil
}

func (v *AuthorizerValidator) getClient() (*authorizer.AuthorizerClient, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.client != nil {
		return v.client, nil
	}

	// Ping the Authorizer service first
	if err := utils.PingAuthorizer(v.cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	log.Info().
		Str("authorizerURL", v.cfg.AuthzURL).
		Str("clientID", v.cfg.AuthzClientID).
		Str("redirectURL", v.cfg.AuthzRedirectURL).
		Msg("Initializing Authorizer")

	client, err := authorizer.NewAuthorizerClient(v.cfg.AuthzClientID, v.cfg.AuthzURL, v.cfg.AuthzRedirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	v.client = client
	return client, nil
}

// ValidateSession validates a session cookie for the given roles
func (v *AuthorizerValidator) ValidateSession(ctx context.Context, cookie string, roles []string) (*Identity, error) {
	client, err := v.getClient()
	if err != nil {
		return nil, err
	}

	// Convert roles to []*string
	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	return &Identity{
		UserID: res.User.ID,
		Email:  res.User.Email,
		Name:   userName(res.User.GivenName, res.User.FamilyName),
	}, nil
}

func userName(given, family *string) string {
	var parts []string
	for _, p := range []*string{given, family} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, " ")
}
