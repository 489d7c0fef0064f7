package memory

import (
	"context"
	"testing"
	"time"

	"telecare/internal/core/domain"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user := &domain.User{ID: "u1", FullName: "Alice", Email: "alice@example.com"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Duplicate email, case-insensitive
	err := repo.Create(ctx, &domain.User{ID: "u2", Email: "Alice@Example.com"})
	if err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("expected u1, got %s", got.ID)
	}

	// Returned value is a copy, not an alias into the store
	got.FullName = "Mutated"
	again, _ := repo.GetByID(ctx, "u1")
	if again.FullName != "Alice" {
		t.Fatalf("store was mutated through a returned copy")
	}

	if _, err := repo.GetByID(ctx, "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryUpdateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	a := &domain.User{ID: "u1", Email: "a@example.com"}
	b := &domain.User{ID: "u2", Email: "b@example.com"}
	repo.Create(ctx, a)
	repo.Create(ctx, b)

	// Moving to a taken email fails
	a.Email = "b@example.com"
	if err := repo.Update(ctx, a); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Moving to a free email releases the old one
	a.Email = "c@example.com"
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "a@example.com"); err != domain.ErrUserNotFound {
		t.Fatalf("old email should be released, got %v", err)
	}
	if got, _ := repo.GetByEmail(ctx, "c@example.com"); got == nil || got.ID != "u1" {
		t.Fatalf("new email not indexed")
	}
}

func TestDoctorRepositoryList(t *testing.T) {
	repo := NewDoctorRepository()
	ctx := context.Background()

	repo.Create(ctx, &domain.Doctor{ID: "d1", FullName: "Zed", Email: "z@example.com"})
	repo.Create(ctx, &domain.Doctor{ID: "d2", FullName: "Amy", Email: "a@example.com"})

	doctors, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(doctors) != 2 {
		t.Fatalf("expected 2 doctors, got %d", len(doctors))
	}
	if doctors[0].FullName != "Amy" || doctors[1].FullName != "Zed" {
		t.Fatalf("expected name order, got %s, %s", doctors[0].FullName, doctors[1].FullName)
	}
}

func TestAppointmentRepository(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()

	base := time.Now().Add(24 * time.Hour)
	first := &domain.Appointment{ID: "a1", UserID: "u1", DoctorID: "d1", RoomID: "room_aaaa", Date: base.Add(time.Hour)}
	second := &domain.Appointment{ID: "a2", UserID: "u1", DoctorID: "d2", RoomID: "room_bbbb", Date: base}

	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	byRoom, err := repo.GetByRoomID(ctx, "room_bbbb")
	if err != nil {
		t.Fatalf("get by room: %v", err)
	}
	if byRoom.ID != "a2" {
		t.Fatalf("expected a2, got %s", byRoom.ID)
	}

	byUser, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 2 || byUser[0].ID != "a2" {
		t.Fatalf("expected date order [a2 a1], got %+v", byUser)
	}

	byDoctor, _ := repo.ListByDoctor(ctx, "d2")
	if len(byDoctor) != 1 || byDoctor[0].ID != "a2" {
		t.Fatalf("expected [a2] for d2")
	}

	first.Status = domain.StatusApproved
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.GetByID(ctx, "a1")
	if got.Status != domain.StatusApproved {
		t.Fatalf("update not persisted")
	}

	if err := repo.Update(ctx, &domain.Appointment{ID: "missing"}); err != domain.ErrAppointmentNotFound {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}
