package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

func TestIdeaVoteOncePerUser(t *testing.T) {
	db := testDB(t)
	alice := createTestUser(t, db, "alice@test.com", models.RoleRPADeveloper)
	bob := createTestUser(t, db, "bob@test.com", models.RoleRPADeveloper)
	svc := NewIdeaService(db)

	idea, err := svc.Create(context.Background(), &models.CreateIdeaRequest{
		Title: "Automate invoice matching",
	}, alice.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	idea, err = svc.Vote(context.Background(), idea.ID, alice.ID)
	if err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if idea.Votes != 1 {
		t.Errorf("votes = %d, want 1", idea.Votes)
	}

	_, err = svc.Vote(context.Background(), idea.ID, alice.ID)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeConflict {
		t.Errorf("double vote error = %v, want conflict", err)
	}

	idea, err = svc.Vote(context.Background(), idea.ID, bob.ID)
	if err != nil {
		t.Fatalf("second user vote failed: %v", err)
	}
	if idea.Votes != 2 {
		t.Errorf("votes = %d, want 2", idea.Votes)
	}

	idea, err = svc.Unvote(context.Background(), idea.ID, alice.ID)
	if err != nil {
		t.Fatalf("Unvote failed: %v", err)
	}
	if idea.Votes != 1 {
		t.Errorf("votes after unvote = %d, want 1", idea.Votes)
	}

	if _, err := svc.Unvote(context.Background(), idea.ID, alice.ID); err == nil {
		t.Error("removing a nonexistent vote succeeded")
	}
}

func TestIdeaListOrdersByVotes(t *testing.T) {
	db := testDB(t)
	alice := createTestUser(t, db, "alice@test.com", models.RoleRPADeveloper)
	bob := createTestUser(t, db, "bob@test.com", models.RoleRPADeveloper)
	svc := NewIdeaService(db)

	quiet, _ := svc.Create(context.Background(), &models.CreateIdeaRequest{Title: "Quiet idea"}, alice.ID)
	popular, _ := svc.Create(context.Background(), &models.CreateIdeaRequest{Title: "Popular idea"}, alice.ID)
	_ = quiet

	svc.Vote(context.Background(), popular.ID, alice.ID)
	svc.Vote(context.Background(), popular.ID, bob.ID)

	ideas, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("ideas = %d, want 2", len(ideas))
	}
	if ideas[0].Title != "Popular idea" {
		t.Errorf("most voted idea not first: %s", ideas[0].Title)
	}
}

func TestIdeaStatusTransitions(t *testing.T) {
	db := testDB(t)
	alice := createTestUser(t, db, "alice@test.com", models.RoleRPADeveloper)
	svc := NewIdeaService(db)

	idea, _ := svc.Create(context.Background(), &models.CreateIdeaRequest{Title: "Idea"}, alice.ID)
	if idea.Status != models.IdeaStatusDraft {
		t.Errorf("initial status = %s, want draft", idea.Status)
	}

	approved := models.IdeaStatusApproved
	idea, err := svc.Update(context.Background(), idea.ID, &models.UpdateIdeaRequest{Status: &approved})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if idea.Status != models.IdeaStatusApproved {
		t.Errorf("status = %s, want approved", idea.Status)
	}

	bogus := "bogus"
	if _, err := svc.Update(context.Background(), idea.ID, &models.UpdateIdeaRequest{Status: &bogus}); err == nil {
		t.Error("bogus status accepted")
	}
}
