// errors.go
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
	"errors"

	"github.com/localnerve/endowment-crm/internal/types"
	"gorm.io/gorm"
)

// translateError maps a GORM error onto the error taxonomy. entity and id name the row
// for NotFound; relationship names the join for duplicates.
func translateError(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}

	var (
		validation   *types.ValidationError
		notFound     *types.NotFoundError
		duplicate    *types.DuplicateRelationshipError
		unauthorized *types.UnauthorizedError
		storage      *types.StorageError
	)
	if errors.As(err, &validation) || errors.As(err, &notFound) || errors.As(err, &duplicate) ||
		errors.As(err, &unauthorized) || errors.As(err, &storage) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &types.NotFoundError{Entity: entity, ID: id}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &types.DuplicateRelationshipError{Relationship: entity}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &types.NotFoundError{Entity: entity, ID: id}
	}

	return &types.StorageError{Op: op, Err: err}
}
