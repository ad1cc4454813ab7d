package repositories

import (
	"context"
	"testing"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

func TestMemoryBookingRepoListOrderAndPaging(t *testing.T) {
	repo := NewMemoryBookingRepo()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codes := []string{"ZGR000001", "ZGR000002", "ZGR000003"}
	for i, code := range codes {
		b := models.Booking{BookingID: code, Status: models.StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(ctx, &b); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	dup := models.Booking{BookingID: "ZGR000001"}
	if err := repo.Create(ctx, &dup); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	items, total, err := repo.List(ctx, models.BookingFilter{}, domain.NewPagination(1, 2))
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].BookingID != "ZGR000003" {
		t.Fatalf("unexpected page total=%d items=%+v", total, items)
	}
	items, _, _ = repo.List(ctx, models.BookingFilter{}, domain.NewPagination(5, 2))
	if len(items) != 0 {
		t.Fatalf("page past the end should be empty")
	}
}

func TestMemoryBookingRepoUpdateCheckAndStats(t *testing.T) {
	repo := NewMemoryBookingRepo()
	ctx := context.Background()
	b := models.Booking{BookingID: "ZGR000010", Status: models.StatusConfirmed}
	_ = repo.Create(ctx, &b)

	completed := models.StatusCompleted
	price := 80.0
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Update(ctx, "ZGR000010", models.BookingUpdate{Status: &completed, FinalPrice: &price}, now, nil); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if _, err := repo.Update(ctx, "ZGR000010", models.BookingUpdate{}, now, func(models.Booking) error {
		return domain.ValidationError{Field: "status"}
	}); !domain.IsValidation(err) {
		t.Fatalf("expected check error, got %v", err)
	}

	s, _ := repo.Stats(ctx)
	if s.Completed != 1 || s.Revenue != 80 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if err := repo.Delete(ctx, "ZGR000010"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(ctx, "ZGR000010"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
