// detail.go
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
	"sort"
	"time"

	"github.com/localnerve/endowment-crm/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// FirmStats are the derived counts on a firm detail view
type FirmStats struct {
	FundCount int `json:"fundCount"`
	NoteCount int `json:"noteCount"`
	DealCount int `json:"dealCount"`
}

// EntityStats are the derived counts on fund and company detail views
type EntityStats struct {
	NoteCount int `json:"noteCount"`
	DealCount int `json:"dealCount"`
}

// FirmDetail is a firm with its funds, tagged notes and deals
type FirmDetail struct {
	Firm     models.Firm    `json:"firm"`
	Funds    []models.Fund  `json:"funds"`
	Notes    []NoteView     `json:"notes"`
	Deals    []models.Deal  `json:"deals"`
	Stats    FirmStats      `json:"stats"`
	Activity []ActivityItem `json:"activity"`
}

// FundDetail is a fund with its parent firm, tagged notes and deals
type FundDetail struct {
	Fund     models.Fund    `json:"fund"`
	Firm     *models.Firm   `json:"firm"`
	Notes    []NoteView     `json:"notes"`
	Deals    []models.Deal  `json:"deals"`
	Stats    EntityStats    `json:"stats"`
	Activity []ActivityItem `json:"activity"`
}

// CompanyDetail is a company with its tagged notes and deals
type CompanyDetail struct {
	Company  models.Company `json:"company"`
	Notes    []NoteView     `json:"notes"`
	Deals    []models.Deal  `json:"deals"`
	Stats    EntityStats    `json:"stats"`
	Activity []ActivityItem `json:"activity"`
}

// ActivityItem is one row of an entity's timeline
type ActivityItem struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Date   time.Time `json:"date"`
	Author string    `json:"author"`
}

// MarketCounts splits a total by market type
type MarketCounts struct {
	Total          int64 `json:"total"`
	PublicMarkets  int64 `json:"publicMarkets"`
	PrivateMarkets int64 `json:"privateMarkets"`
}

// DealCounts breaks the pipeline down by stage and priority
type DealCounts struct {
	Total      int64                         `json:"total"`
	ByStage    map[models.DealStage]int64    `json:"byStage"`
	ByPriority map[models.DealPriority]int64 `json:"byPriority"`
}

// DashboardStats are the totals shown on the dashboard
type DashboardStats struct {
	Firms     MarketCounts `json:"firms"`
	Funds     MarketCounts `json:"funds"`
	Companies int64        `json:"companies"`
	Notes     int64        `json:"notes"`
	Deals     DealCounts   `json:"deals"`
}

// view tags façade queries with an SQL comment naming the read view.
func view(db *gorm.DB, name string) *gorm.DB {
	return db.Clauses(hints.Comment("select", name))
}

// GetFirmDetail assembles the firm detail view
func GetFirmDetail(ctx context.Context, db *gorm.DB, id string) (*FirmDetail, error) {
	firm, err := GetFirm(ctx, db, id)
	if err != nil {
		return nil, err
	}

	funds := []models.Fund{}
	if err := view(db.WithContext(ctx), "firm_detail").Where("firm_id = ?", id).
		Order("created_at DESC").Find(&funds).Error; err != nil {
		return nil, translateError("firmDetail", "fund", "", err)
	}

	notes, deals, err := entityRecords(ctx, db, firm.Ref())
	if err != nil {
		return nil, err
	}

	return &FirmDetail{
		Firm:  *firm,
		Funds: funds,
		Notes: notes,
		Deals: deals,
		Stats: FirmStats{
			FundCount: len(funds),
			NoteCount: len(notes),
			DealCount: len(deals),
		},
		Activity: BuildActivity(notes, deals),
	}, nil
}

// GetFundDetail assembles the fund detail view
func GetFundDetail(ctx context.Context, db *gorm.DB, id string) (*FundDetail, error) {
	fund, err := GetFund(ctx, db, id)
	if err != nil {
		return nil, err
	}

	notes, deals, err := entityRecords(ctx, db, fund.Ref())
	if err != nil {
		return nil, err
	}

	return &FundDetail{
		Fund:     *fund,
		Firm:     fund.Firm,
		Notes:    notes,
		Deals:    deals,
		Stats:    EntityStats{NoteCount: len(notes), DealCount: len(deals)},
		Activity: BuildActivity(notes, deals),
	}, nil
}

// GetCompanyDetail assembles the company detail view
func GetCompanyDetail(ctx context.Context, db *gorm.DB, id string) (*CompanyDetail, error) {
	company, err := GetCompany(ctx, db, id)
	if err != nil {
		return nil, err
	}

	notes, deals, err := entityRecords(ctx, db, company.Ref())
	if err != nil {
		return nil, err
	}

	return &CompanyDetail{
		Company:  *company,
		Notes:    notes,
		Deals:    deals,
		Stats:    EntityStats{NoteCount: len(notes), DealCount: len(deals)},
		Activity: BuildActivity(notes, deals),
	}, nil
}

// GetEntityActivity returns the timeline of an existing entity
func GetEntityActivity(ctx context.Context, db *gorm.DB, ref models.EntityRef) ([]ActivityItem, error) {
	if err := RequireEntity(ctx, db, ref); err != nil {
		return nil, err
	}
	notes, deals, err := entityRecords(ctx, db, ref)
	if err != nil {
		return nil, err
	}
	return BuildActivity(notes, deals), nil
}

func entityRecords(ctx context.Context, db *gorm.DB, ref models.EntityRef) ([]NoteView, []models.Deal, error) {
	notes, err := ListNotesForEntity(ctx, db, ref)
	if err != nil {
		return nil, nil, err
	}
	deals, err := ListDeals(ctx, db, DealFilter{Target: &ref})
	if err != nil {
		return nil, nil, err
	}
	return notes, deals, nil
}

// BuildActivity merges notes and deals newest first
func BuildActivity(notes []NoteView, deals []models.Deal) []ActivityItem {
	items := make([]ActivityItem, 0, len(notes)+len(deals))
	for _, n := range notes {
		items = append(items, ActivityItem{ID: n.ID, Type: "note", Title: n.Title, Date: n.CreatedAt, Author: n.Author})
	}
	for _, d := range deals {
		items = append(items, ActivityItem{ID: d.ID, Type: "deal", Title: d.Name, Date: d.CreatedAt, Author: d.OwnerName})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items
}

type groupCount struct {
	Grp   string
	Total int64
}

func countBy(ctx context.Context, db *gorm.DB, model interface{}, column string) ([]groupCount, error) {
	var rows []groupCount
	err := view(db.WithContext(ctx), "dashboard").Model(model).
		Select(column + " AS grp, COUNT(*) AS total").
		Group(column).Scan(&rows).Error
	return rows, err
}

func marketCounts(rows []groupCount) MarketCounts {
	var mc MarketCounts
	for _, r := range rows {
		mc.Total += r.Total
		switch models.MarketType(r.Grp) {
		case models.MarketPublic:
			mc.PublicMarkets = r.Total
		case models.MarketPrivate:
			mc.PrivateMarkets = r.Total
		}
	}
	return mc
}

// GetDashboardStats counts records across the CRM
func GetDashboardStats(ctx context.Context, db *gorm.DB) (*DashboardStats, error) {
	stats := &DashboardStats{
		Deals: DealCounts{
			ByStage:    make(map[models.DealStage]int64, len(models.DealStages)),
			ByPriority: make(map[models.DealPriority]int64, len(models.DealPriorities)),
		},
	}
	for _, s := range models.DealStages {
		stats.Deals.ByStage[s] = 0
	}
	for _, p := range models.DealPriorities {
		stats.Deals.ByPriority[p] = 0
	}

	firms, err := countBy(ctx, db, &models.Firm{}, "market_type")
	if err != nil {
		return nil, translateError("dashboard", "firm", "", err)
	}
	stats.Firms = marketCounts(firms)

	funds, err := countBy(ctx, db, &models.Fund{}, "market_type")
	if err != nil {
		return nil, translateError("dashboard", "fund", "", err)
	}
	stats.Funds = marketCounts(funds)

	if err := db.WithContext(ctx).Model(&models.Company{}).Count(&stats.Companies).Error; err != nil {
		return nil, translateError("dashboard", "company", "", err)
	}
	if err := db.WithContext(ctx).Model(&models.Note{}).Count(&stats.Notes).Error; err != nil {
		return nil, translateError("dashboard", "note", "", err)
	}

	stages, err := countBy(ctx, db, &models.Deal{}, "stage")
	if err != nil {
		return nil, translateError("dashboard", "deal", "", err)
	}
	for _, r := range stages {
		stats.Deals.ByStage[models.DealStage(r.Grp)] = r.Total
		stats.Deals.Total += r.Total
	}

	priorities, err := countBy(ctx, db, &models.Deal{}, "priority")
	if err != nil {
		return nil, translateError("dashboard", "deal", "", err)
	}
	for _, r := range priorities {
		stats.Deals.ByPriority[models.DealPriority(r.Grp)] = r.Total
	}

	return stats, nil
}
