// seed.go
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
	"errors"
	"fmt"

	"github.com/localnerve/endowment-crm/internal/models"
	"github.com/localnerve/endowment-crm/internal/types"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ErrAlreadySeeded is returned when the database already holds firms
var ErrAlreadySeeded = errors.New("database already contains data")

// SeedData is the YAML layout of demo data. Records refer to each other by key.
type SeedData struct {
	Profiles []struct {
		ID       string `yaml:"id"`
		Email    string `yaml:"email"`
		FullName string `yaml:"fullName"`
	} `yaml:"profiles"`
	Firms []struct {
		Key   string    `yaml:"key"`
		Input FirmInput `yaml:",inline"`
	} `yaml:"firms"`
	Funds []struct {
		Key   string    `yaml:"key"`
		Firm  string    `yaml:"firm"`
		Input FundInput `yaml:",inline"`
	} `yaml:"funds"`
	Companies []struct {
		Key   string       `yaml:"key"`
		Input CompanyInput `yaml:",inline"`
	} `yaml:"companies"`
	Notes []struct {
		Author  string    `yaml:"author"`
		Title   string    `yaml:"title"`
		Content string    `yaml:"content"`
		Tags    []seedRef `yaml:"tags"`
	} `yaml:"notes"`
	Deals []struct {
		Target   seedRef             `yaml:"target"`
		Owner    string              `yaml:"owner"`
		Name     string              `yaml:"name"`
		Stage    models.DealStage    `yaml:"stage"`
		Priority models.DealPriority `yaml:"priority"`
		Amount   string              `yaml:"proposedAmount"`
	} `yaml:"deals"`
}

type seedRef struct {
	Type string `yaml:"type"`
	Key  string `yaml:"key"`
}

// SeedResult counts what a seed run created
type SeedResult struct {
	Firms     int `json:"firms"`
	Funds     int `json:"funds"`
	Companies int `json:"companies"`
	Notes     int `json:"notes"`
	Deals     int `json:"deals"`
}

// ParseSeed decodes seed YAML
func ParseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid seed data: %w", err)
	}
	return &data, nil
}

// Seed loads demo data in one transaction. It refuses to run on a database that
// already has firms.
func Seed(ctx context.Context, db *gorm.DB, data *SeedData) (*SeedResult, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&models.Firm{}).Count(&existing).Error; err != nil {
		return nil, translateError("seed", "firm", "", err)
	}
	if existing > 0 {
		return nil, ErrAlreadySeeded
	}

	result := &SeedResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		people := make(map[string]*Identity)
		for _, p := range data.Profiles {
			id := &Identity{UserID: p.ID, Email: p.Email, Name: p.FullName}
			if _, err := EnsureProfile(ctx, tx, id); err != nil {
				return err
			}
			people[p.ID] = id
		}

		refs := make(map[seedRef]models.EntityRef)
		for _, f := range data.Firms {
			firm, err := CreateFirm(ctx, tx, f.Input)
			if err != nil {
				return fmt.Errorf("firm %s: %w", f.Key, err)
			}
			refs[seedRef{Type: string(models.EntityFirm), Key: f.Key}] = firm.Ref()
			result.Firms++
		}
		for _, f := range data.Funds {
			input := f.Input
			if f.Firm != "" {
				firmRef, ok := refs[seedRef{Type: string(models.EntityFirm), Key: f.Firm}]
				if !ok {
					return fmt.Errorf("fund %s: unknown firm %s", f.Key, f.Firm)
				}
				input.FirmID = &firmRef.ID
			}
			fund, err := CreateFund(ctx, tx, input)
			if err != nil {
				return fmt.Errorf("fund %s: %w", f.Key, err)
			}
			refs[seedRef{Type: string(models.EntityFund), Key: f.Key}] = fund.Ref()
			result.Funds++
		}
		for _, c := range data.Companies {
			company, err := CreateCompany(ctx, tx, c.Input)
			if err != nil {
				return fmt.Errorf("company %s: %w", c.Key, err)
			}
			refs[seedRef{Type: string(models.EntityCompany), Key: c.Key}] = company.Ref()
			result.Companies++
		}

		lookup := func(r seedRef) (models.EntityRef, error) {
			ref, ok := refs[r]
			if !ok {
				return models.EntityRef{}, &types.NotFoundError{Entity: r.Type, ID: r.Key}
			}
			return ref, nil
		}

		for _, n := range data.Notes {
			author, ok := people[n.Author]
			if !ok {
				return fmt.Errorf("note %q: unknown author %s", n.Title, n.Author)
			}
			input := NoteInput{Title: n.Title, Content: n.Content}
			for _, t := range n.Tags {
				ref, err := lookup(t)
				if err != nil {
					return fmt.Errorf("note %q: %w", n.Title, err)
				}
				input.EntityTags = append(input.EntityTags, TagInput{EntityType: string(ref.Type), EntityID: ref.ID})
			}
			if _, err := CreateNote(ctx, tx, author, input); err != nil {
				return fmt.Errorf("note %q: %w", n.Title, err)
			}
			result.Notes++
		}

		for _, d := range data.Deals {
			owner, ok := people[d.Owner]
			if !ok {
				return fmt.Errorf("deal %q: unknown owner %s", d.Name, d.Owner)
			}
			ref, err := lookup(d.Target)
			if err != nil {
				return fmt.Errorf("deal %q: %w", d.Name, err)
			}
			input := DealInput{
				Name:       d.Name,
				EntityType: string(ref.Type),
				EntityID:   ref.ID,
				Stage:      d.Stage,
				Priority:   d.Priority,
				OwnerName:  owner.DisplayName(),
			}
			if d.Amount != "" {
				input.ProposedAmount = &d.Amount
			}
			if _, err := CreateDeal(ctx, tx, owner, input); err != nil {
				return fmt.Errorf("deal %q: %w", d.Name, err)
			}
			result.Deals++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Interface("created", result).Msg("Seed data loaded")
	return result, nil
}
