package jobs

import (
	"context"
	"log"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// SessionCleanupInterval is how often expired sessions are purged
const SessionCleanupInterval = 1 * time.Hour

// RegisterSessionCleanup schedules the periodic purge of expired sessions
func RegisterSessionCleanup(sc *Scheduler, authSvc *services.AuthService) error {
	return sc.Every("session-cleanup", SessionCleanupInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := authSvc.DeleteExpiredSessions(ctx)
		if err != nil {
			log.Printf("⚠️ Session cleanup failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("🧹 Session cleanup removed %d expired sessions", n)
		}
	})
}
