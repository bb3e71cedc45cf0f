package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

func TestTicketNumbersAreSequential(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "support@test.com", models.RoleITSupport)
	svc := NewSupportService(db)

	first, err := svc.Create(context.Background(), &models.CreateTicketRequest{Title: "Bot down"}, user.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(context.Background(), &models.CreateTicketRequest{Title: "Queue stuck"}, user.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	prefix := "TKT-" + time.Now().Format("200601") + "-"
	if !strings.HasPrefix(first.TicketNumber, prefix) {
		t.Errorf("ticket number %s lacks prefix %s", first.TicketNumber, prefix)
	}
	if first.TicketNumber == second.TicketNumber {
		t.Error("two tickets share a number")
	}
	if !strings.HasSuffix(first.TicketNumber, "0001") || !strings.HasSuffix(second.TicketNumber, "0002") {
		t.Errorf("numbers not sequential: %s, %s", first.TicketNumber, second.TicketNumber)
	}
}

func TestResolveRequiresResolution(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "support@test.com", models.RoleITSupport)
	svc := NewSupportService(db)

	ticket, _ := svc.Create(context.Background(), &models.CreateTicketRequest{Title: "Bot down"}, user.ID)

	resolved := models.TicketStatusResolved
	if _, err := svc.Update(context.Background(), ticket.ID, &models.UpdateTicketRequest{
		Status: &resolved,
	}); err == nil {
		t.Error("ticket resolved without a resolution text")
	}

	resolution := "Restarted the unattended runner"
	got, err := svc.Update(context.Background(), ticket.ID, &models.UpdateTicketRequest{
		Status:     &resolved,
		Resolution: &resolution,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.ResolvedAt == nil {
		t.Error("resolved_at not stamped")
	}
	if got.Resolution != resolution {
		t.Errorf("resolution = %q", got.Resolution)
	}

	// Reopening clears the resolution timestamp
	open := models.TicketStatusOpen
	got, err = svc.Update(context.Background(), ticket.ID, &models.UpdateTicketRequest{Status: &open})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got.ResolvedAt != nil {
		t.Error("resolved_at survived a reopen")
	}
}

func TestTicketResponses(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "support@test.com", models.RoleITSupport)
	svc := NewSupportService(db)

	ticket, _ := svc.Create(context.Background(), &models.CreateTicketRequest{Title: "Bot down"}, user.ID)

	if _, err := svc.AddResponse(context.Background(), ticket.ID, user.ID,
		&models.AddResponseRequest{Message: "   "}); err == nil {
		t.Error("blank response accepted")
	}

	for _, msg := range []string{"Looking into it", "Root cause found"} {
		if _, err := svc.AddResponse(context.Background(), ticket.ID, user.ID,
			&models.AddResponseRequest{Message: msg}); err != nil {
			t.Fatalf("AddResponse failed: %v", err)
		}
	}

	responses, err := svc.ListResponses(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("ListResponses failed: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("responses = %d, want 2", len(responses))
	}
	if responses[0].Message != "Looking into it" {
		t.Error("responses not in chronological order")
	}
}

func TestTicketListFilters(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "support@test.com", models.RoleITSupport)
	svc := NewSupportService(db)

	svc.Create(context.Background(), &models.CreateTicketRequest{Title: "A", Priority: models.PriorityHigh}, user.ID)
	svc.Create(context.Background(), &models.CreateTicketRequest{Title: "B", Priority: models.PriorityLow}, user.ID)

	high, err := svc.List(context.Background(), "", models.PriorityHigh, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(high) != 1 || high[0].Title != "A" {
		t.Errorf("filtered list = %+v", high)
	}

	all, _ := svc.List(context.Background(), "", "", 0)
	if len(all) != 2 {
		t.Errorf("unfiltered list = %d rows, want 2", len(all))
	}
}
