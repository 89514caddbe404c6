// notes.go
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
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/localnerve/endowment-crm/internal/utils"
	"gorm.io/gorm"
)

// NoteHandler handles note and note tag routes
type NoteHandler struct {
	DB    *gorm.DB
	Blobs storage.BlobStore

	DefaultLimit int
	MaxLimit     int
}

// parseLimit reads the limit query parameter, clamped to the handler's maximum
func (h *NoteHandler) parseLimit(c *fiber.Ctx) (int, error) {
	def := h.DefaultLimit
	if def <= 0 {
		def = services.DefaultNoteLimit
	}
	max := h.MaxLimit
	if max <= 0 {
		max = services.MaxNoteLimit
	}

	if c.Query("limit") == "" {
		return def, nil
	}
	limit := c.QueryInt("limit", -1)
	if limit <= 0 {
		return 0, types.NewValidationError("limit", "must be a positive integer")
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

// List handles GET /api/notes
// @Summary List notes
// @Description Newest notes first. Notes tagged to several matching entities appear once.
// @Tags Notes
// @Produce json
// @Param market query string false "all, public_markets or private_markets"
// @Param limit query int false "Maximum notes to return (default 20, max 100)"
// @Success 200 {array} services.NoteView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes [get]
func (h *NoteHandler) List(c *fiber.Ctx) error {
	limit, err := h.parseLimit(c)
	if err != nil {
		return fail(c, err)
	}

	notes, err := services.ListNotes(c.UserContext(), h.DB, services.NoteFilter{
		Market:   c.Query("market"),
		Limit:    limit,
		MaxLimit: h.MaxLimit,
	})
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, notes, fiber.StatusOK)
}

// Get handles GET /api/notes/:id
// @Summary Get a note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} services.NoteView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *fiber.Ctx) error {
	note, err := services.GetNote(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, note, fiber.StatusOK)
}

// Create handles POST /api/notes
// @Summary Create a note
// @Description Creates a note and its entity tags atomically. entityTags may be one object or an array.
// @Tags Notes
// @Accept json
// @Produce json
// @Param note body services.NoteInput true "Note"
// @Success 201 {object} services.NoteView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes [post]
func (h *NoteHandler) Create(c *fiber.Ctx) error {
	var input services.NoteInput
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	note, err := services.CreateNote(c.UserContext(), h.DB, currentUser(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, note, fiber.StatusCreated)
}

// Update handles PATCH /api/notes/:id
// @Summary Update a note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param note body services.NotePatch true "Fields to change"
// @Success 200 {object} services.NoteView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes/{id} [patch]
func (h *NoteHandler) Update(c *fiber.Ctx) error {
	var input services.NotePatch
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	note, err := services.UpdateNote(c.UserContext(), h.DB, c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, note, fiber.StatusOK)
}

// Delete handles DELETE /api/notes/:id
// @Summary Delete a note
// @Description Deletes the note with its tags and attachments
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.DeleteNote(c.UserContext(), h.DB, h.Blobs, id); err != nil {
		return fail(c, err)
	}
	return deleted(c, id)
}

// ListTags handles GET /api/notes/:id/tags
// @Summary List a note's tags
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {array} services.TagView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes/{id}/tags [get]
func (h *NoteHandler) ListTags(c *fiber.Ctx) error {
	tags, err := services.ListTagsForNote(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, tags, fiber.StatusOK)
}

// AddTag handles POST /api/notes/:id/tags
// @Summary Tag a note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param tag body services.TagInput true "Entity to tag"
// @Success 201 {object} models.TagLink
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes/{id}/tags [post]
func (h *NoteHandler) AddTag(c *fiber.Ctx) error {
	var input services.TagInput
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}
	ref, err := input.Ref()
	if err != nil {
		return fail(c, err)
	}

	link, err := services.AddTag(c.UserContext(), h.DB, c.Params("id"), ref)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, link, fiber.StatusCreated)
}

// RemoveTag handles DELETE /api/notes/:id/tags/:entityType/:entityId
// @Summary Untag a note
// @Description Removing a tag that does not exist succeeds
// @Tags Notes
// @Param id path string true "Note ID"
// @Param entityType path string true "firm, fund or company"
// @Param entityId path string true "Entity ID"
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes/{id}/tags/{entityType}/{entityId} [delete]
func (h *NoteHandler) RemoveTag(c *fiber.Ctx) error {
	ref, err := pathRef(c)
	if err != nil {
		return fail(c, err)
	}
	if err := services.RemoveTag(c.UserContext(), h.DB, c.Params("id"), ref); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Entities handles GET /api/notes/:id/entities
// @Summary Entities a note is tagged to
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} services.NoteEntities
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notes/{id}/entities [get]
func (h *NoteHandler) Entities(c *fiber.Ctx) error {
	entities, err := services.GetNoteEntities(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, entities, fiber.StatusOK)
}
