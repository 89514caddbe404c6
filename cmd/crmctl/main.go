// main.go
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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/localnerve/endowment-crm/data"
	"github.com/localnerve/endowment-crm/internal/config"
	"github.com/localnerve/endowment-crm/internal/database"
	"github.com/localnerve/endowment-crm/internal/logging"
	"github.com/localnerve/endowment-crm/internal/middleware"
	"github.com/localnerve/endowment-crm/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const appName = "crmctl"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Endowment CRM administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(migrateCmd(), seedCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s api version %s\n", appName, middleware.APIVersion)
		},
	})
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
				log.Info().Msg("Schema is up to date")
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo firms, funds, companies, notes and deals",
		Long: `Loads demo data into an empty database. The built-in data set is used
unless --file names a YAML file with the same layout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := data.SeedYAML
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read seed file: %w", err)
				}
				raw = b
			}

			seed, err := services.ParseSeed(raw)
			if err != nil {
				return err
			}

			return withDB(func(db *gorm.DB) error {
				if err := database.AutoMigrate(db); err != nil {
					return err
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
				defer cancel()

				result, err := services.Seed(ctx, db, seed)
				if errors.Is(err, services.ErrAlreadySeeded) {
					log.Warn().Msg("Database already has data, nothing seeded")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Printf("seeded %d firms, %d funds, %d companies, %d notes, %d deals\n",
					result.Firms, result.Funds, result.Companies, result.Notes, result.Deals)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed YAML file (defaults to the built-in data set)")
	return cmd
}

func withDB(fn func(db *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close(db)

	return fn(db)
}
