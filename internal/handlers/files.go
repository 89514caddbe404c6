// files.go
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
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/localnerve/endowment-crm/internal/utils"
	"gorm.io/gorm"
)

// FileHandler handles attachment routes
type FileHandler struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
}

// List handles GET /api/files
// @Summary List attachments
// @Tags Files
// @Produce json
// @Param entityType query string false "Owning entity type; requires entityId"
// @Param entityId query string false "Owning entity ID; requires entityType"
// @Param noteId query string false "Owning note ID"
// @Success 200 {array} models.FileAttachment
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /files [get]
func (h *FileHandler) List(c *fiber.Ctx) error {
	target, err := queryRef(c)
	if err != nil {
		return fail(c, err)
	}

	files, err := services.ListFiles(c.UserContext(), h.DB, services.FileFilter{
		Target: target,
		NoteID: strings.TrimSpace(c.Query("noteId")),
	})
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, files, fiber.StatusOK)
}

// Create handles POST /api/files
// @Summary Record attachment metadata
// @Description Records a blob that was stored out of band
// @Tags Files
// @Accept json
// @Produce json
// @Param file body services.FileInput true "Attachment metadata"
// @Success 201 {object} models.FileAttachment
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /files [post]
func (h *FileHandler) Create(c *fiber.Ctx) error {
	var input services.FileInput
	if err := bindBody(c, &input); err != nil {
		return fail(c, err)
	}

	file, err := services.CreateFile(c.UserContext(), h.DB, currentUser(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, file, fiber.StatusCreated)
}

// Upload handles POST /api/files/upload
// @Summary Upload an attachment
// @Tags Files
// @Accept mpfd
// @Produce json
// @Param file formData file true "File content"
// @Param entityType formData string false "Owning entity type"
// @Param entityId formData string false "Owning entity ID"
// @Param noteId formData string false "Owning note ID"
// @Success 201 {object} models.FileAttachment
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fail(c, types.NewValidationError("file", "a multipart file field is required"))
	}

	input := services.UploadInput{
		FileName: header.Filename,
		FileType: header.Header.Get(fiber.HeaderContentType),
		FileSize: header.Size,
		NoteID:   strings.TrimSpace(c.FormValue("noteId")),
	}

	entityType := strings.TrimSpace(c.FormValue("entityType"))
	entityID := strings.TrimSpace(c.FormValue("entityId"))
	if entityType != "" || entityID != "" {
		ref, err := models.ParseEntityRef(entityType, entityID)
		if err != nil {
			return fail(c, types.NewValidationError("entityType", "%v", err))
		}
		input.Target = &ref
	}

	body, err := header.Open()
	if err != nil {
		return fail(c, fmt.Errorf("failed to open upload: %w", err))
	}
	defer body.Close()
	input.Body = body

	file, err := services.UploadFile(c.UserContext(), h.DB, h.Blobs, currentUser(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, file, fiber.StatusCreated)
}

// Download handles GET /api/files/:id/download
// @Summary Download an attachment
// @Description Redirects to a presigned URL on object storage, otherwise streams the content
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} file
// @Success 302
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(c *fiber.Ctx) error {
	dl, err := services.DownloadFile(c.UserContext(), h.DB, h.Blobs, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if dl.URL != "" {
		return c.Redirect(dl.URL, fiber.StatusFound)
	}

	c.Set(fiber.HeaderContentType, dl.File.FileType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", storage.SanitizeFileName(dl.File.FileName)))
	return c.SendStream(dl.Body, int(dl.File.FileSize))
}

// Delete handles DELETE /api/files/:id
// @Summary Delete an attachment
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := services.DeleteFile(c.UserContext(), h.DB, h.Blobs, id); err != nil {
		return fail(c, err)
	}
	return deleted(c, id)
}
