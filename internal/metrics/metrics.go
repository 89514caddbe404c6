// metrics.go
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, served next to the HTTP metrics at /metrics.
var (
	RecordsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "records_created_total",
		Help:      "Records created, by kind.",
	}, []string{"kind"})

	RecordsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "records_deleted_total",
		Help:      "Records deleted, by kind.",
	}, []string{"kind"})

	NoteTags = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "note_tags_total",
		Help:      "Tag join operations, by operation and entity type.",
	}, []string{"op", "entity_type"})

	DealStageChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "deal_stage_changes_total",
		Help:      "Deal stage transitions.",
	}, []string{"from", "to"})

	BlobBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "attachment_bytes_uploaded_total",
		Help:      "Bytes written to the blob store.",
	})
)
