// server.go
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

package server

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/endowment-crm/internal/config"
	"github.com/localnerve/endowment-crm/internal/handlers"
	"github.com/localnerve/endowment-crm/internal/middleware"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/localnerve/endowment-crm/internal/storage"
	"github.com/localnerve/endowment-crm/internal/utils"
	"gorm.io/gorm"
)

// Options carries the dependencies the HTTP application is built from
type Options struct {
	Config    *config.Config
	DB        *gorm.DB
	Blobs     storage.BlobStore
	Validator services.SessionValidator

	// Metrics registers fiberprometheus at /metrics. Tests leave it off since the
	// collectors register globally.
	Metrics bool
}

// New builds the Fiber application with all routes
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New())

	if opts.Metrics {
		prometheus := fiberprometheus.New("crm")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{Cfg: opts.Config, DB: opts.DB}
	app.Get("/health", health.Health)

	api := app.Group("/api", middleware.VersionMiddleware(), middleware.AuthUser(opts.Validator))
	Routes(api, opts)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	return app
}

// Routes registers the data routes on an authenticated router
func Routes(api fiber.Router, opts Options) {
	defaultLimit, maxLimit := services.DefaultNoteLimit, services.MaxNoteLimit
	if opts.Config != nil {
		defaultLimit, maxLimit = opts.Config.NotesDefaultLimit, opts.Config.NotesMaxLimit
	}

	firms := &handlers.FirmHandler{DB: opts.DB}
	api.Get("/firms", firms.List)
	api.Post("/firms", firms.Create)
	api.Get("/firms/:id", firms.Get)
	api.Patch("/firms/:id", firms.Update)
	api.Delete("/firms/:id", firms.Delete)
	api.Get("/firms/:id/activity", firms.Activity)

	funds := &handlers.FundHandler{DB: opts.DB}
	api.Get("/funds", funds.List)
	api.Post("/funds", funds.Create)
	api.Get("/funds/:id", funds.Get)
	api.Patch("/funds/:id", funds.Update)
	api.Delete("/funds/:id", funds.Delete)
	api.Get("/funds/:id/activity", funds.Activity)

	companies := &handlers.CompanyHandler{DB: opts.DB}
	api.Get("/companies", companies.List)
	api.Post("/companies", companies.Create)
	api.Get("/companies/:id", companies.Get)
	api.Patch("/companies/:id", companies.Update)
	api.Delete("/companies/:id", companies.Delete)
	api.Get("/companies/:id/activity", companies.Activity)

	notes := &handlers.NoteHandler{DB: opts.DB, Blobs: opts.Blobs, DefaultLimit: defaultLimit, MaxLimit: maxLimit}
	api.Get("/notes", notes.List)
	api.Post("/notes", notes.Create)
	api.Get("/notes/:id", notes.Get)
	api.Patch("/notes/:id", notes.Update)
	api.Delete("/notes/:id", notes.Delete)
	api.Get("/notes/:id/tags", notes.ListTags)
	api.Post("/notes/:id/tags", notes.AddTag)
	api.Delete("/notes/:id/tags/:entityType/:entityId", notes.RemoveTag)
	api.Get("/notes/:id/entities", notes.Entities)

	deals := &handlers.DealHandler{DB: opts.DB}
	api.Get("/deals", deals.List)
	api.Post("/deals", deals.Create)
	api.Get("/deals/:id", deals.Get)
	api.Patch("/deals/:id", deals.Update)
	api.Delete("/deals/:id", deals.Delete)

	files := &handlers.FileHandler{DB: opts.DB, Blobs: opts.Blobs}
	api.Get("/files", files.List)
	api.Post("/files", files.Create)
	api.Post("/files/upload", files.Upload)
	api.Get("/files/:id/download", files.Download)
	api.Delete("/files/:id", files.Delete)

	profile := &handlers.ProfileHandler{DB: opts.DB}
	api.Get("/profile", profile.Get)
	api.Patch("/profile", profile.Update)

	dashboard := &handlers.DashboardHandler{DB: opts.DB}
	api.Get("/dashboard/stats", dashboard.Stats)
}

// ErrorHandler renders errors that escape handlers, including recovered panics, in
// the standard envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	return utils.ServiceErrorResponse(c, err)
}
