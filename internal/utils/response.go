// response.go
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

package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/endowment-crm/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return FieldErrorResponse(c, message, status, errorType, "")
}

// FieldErrorResponse is ErrorResponse naming the offending input field
func FieldErrorResponse(c *fiber.Ctx, message string, status int, errorType, field string) error {
	body := fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	}
	if field != "" {
		body["field"] = field
	}
	return c.Status(status).JSON(body)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "notFound")
}

// ToCustomError maps any error onto its caller-visible status, message and type
func ToCustomError(err error) *types.CustomError {
	var (
		custom     *types.CustomError
		fiberErr   *fiber.Error
		validation *types.ValidationError
		storage    *types.StorageError
	)

	switch {
	case errors.As(err, &custom):
		return custom
	case errors.As(err, &fiberErr):
		return &types.CustomError{Code: fiberErr.Code, Message: fiberErr.Message, Type: "http"}
	case errors.As(err, &validation):
		return &types.CustomError{Code: fiber.StatusBadRequest, Message: validation.Error(), Type: "validation", Field: validation.Field}
	case errors.Is(err, types.ErrNotFound):
		return &types.CustomError{Code: fiber.StatusNotFound, Message: err.Error(), Type: "notFound"}
	case errors.Is(err, types.ErrDuplicateRelationship):
		return &types.CustomError{Code: fiber.StatusConflict, Message: err.Error(), Type: "duplicateRelationship"}
	case errors.Is(err, types.ErrUnauthorized):
		return &types.CustomError{Code: fiber.StatusUnauthorized, Message: err.Error(), Type: "unauthorized"}
	case errors.As(err, &storage):
		return &types.CustomError{Code: fiber.StatusInternalServerError, Message: "storage operation '" + storage.Op + "' failed", Type: "storage"}
	}
	return &types.CustomError{Code: fiber.StatusInternalServerError, Message: err.Error(), Type: "unknown"}
}

// ServiceErrorResponse renders a service error in the standard envelope
func ServiceErrorResponse(c *fiber.Ctx, err error) error {
	ce := ToCustomError(err)
	return FieldErrorResponse(c, ce.Message, ce.Code, ce.Type, ce.Field)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
	Field     string `json:"field,omitempty"`
}

// DeleteResponseStruct defines the schema for delete responses
type DeleteResponseStruct struct {
	Ok bool   `json:"ok"`
	ID string `json:"id"`
}
