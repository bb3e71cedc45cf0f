package jobs

import (
	"context"
	"log"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// SnapshotRefreshInterval is how often cached financials are recomputed.
// ROI reads always recompute on demand; this job just keeps the dashboard's
// cached snapshots from going stale on projects nobody is looking at.
const SnapshotRefreshInterval = 6 * time.Hour

// RegisterSnapshotRefresh schedules the periodic ROI recompute for active
// projects
func RegisterSnapshotRefresh(sc *Scheduler, projectSvc *services.ProjectService, financialSvc *services.FinancialService) error {
	return sc.Every("snapshot-refresh", SnapshotRefreshInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		projects, err := projectSvc.List(ctx, &models.ProjectFilter{Status: models.ProjectStatusActive})
		if err != nil {
			log.Printf("⚠️ Snapshot refresh could not list projects: %v", err)
			return
		}

		refreshed := 0
		for _, p := range projects {
			if _, err := financialSvc.ComputeProjectROI(ctx, p.ID); err != nil {
				log.Printf("⚠️ Snapshot refresh failed for project %d: %v", p.ID, err)
				continue
			}
			refreshed++
		}
		if refreshed > 0 {
			log.Printf("📊 Refreshed financial snapshots for %d active projects", refreshed)
		}
	})
}
