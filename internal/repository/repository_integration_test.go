package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucas-cardozo/turnos-service/internal/model"
)

// testPool connects to the database named by TEST_DATABASE_URL and
// prepares a clean turnos table. Tests are skipped when the variable is
// unset so the suite stays runnable without infrastructure.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping repository integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	schema := `
		DROP TABLE IF EXISTS turnos;
		CREATE TABLE turnos (
			id             UUID PRIMARY KEY,
			slot_date      DATE NOT NULL,
			slot_time      TIME NOT NULL,
			customer_name  TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			status         VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE UNIQUE INDEX turnos_active_slot_uidx
			ON turnos (slot_date, slot_time)
			WHERE status = 'active';`
	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("prepare schema: %v", err)
	}
	return pool
}

func draft(date, tod string) model.ReservationDraft {
	return model.ReservationDraft{
		Date:          date,
		Time:          tod,
		CustomerName:  "Ana Gomez",
		CustomerEmail: "ana@example.com",
	}
}

func TestInsertEnforcesActiveSlotUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewReservationRepository(testPool(t))

	first, err := repo.Insert(ctx, draft("2099-06-01", "14:00"))
	if err != nil {
		t.Fatalf("first Insert() error = %v", err)
	}

	if _, err := repo.Insert(ctx, draft("2099-06-01", "14:00")); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("second Insert() error = %v, want ErrSlotTaken", err)
	}

	// Cancelling frees the slot for a fresh insert.
	if _, err := repo.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err := repo.Insert(ctx, draft("2099-06-01", "14:00")); err != nil {
		t.Fatalf("Insert() after cancel error = %v", err)
	}
}

func TestInsertConcurrentRace(t *testing.T) {
	ctx := context.Background()
	repo := NewReservationRepository(testPool(t))

	const attempts = 10
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := draft("2099-07-01", "10:00")
			d.CustomerEmail = fmt.Sprintf("c%d@example.com", i)
			_, errs[i] = repo.Insert(ctx, d)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrSlotTaken):
		default:
			t.Fatalf("Insert() %d error = %v, want nil or ErrSlotTaken", i, err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	exists, err := repo.ExistsActive(ctx, "2099-07-01", "10:00")
	if err != nil {
		t.Fatalf("ExistsActive() error = %v", err)
	}
	if !exists {
		t.Error("slot should be held by the single winner")
	}
}

func TestListOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewReservationRepository(testPool(t))

	seed := []struct{ date, tod string }{
		{"2099-06-02", "09:00"},
		{"2099-06-01", "16:00"},
		{"2099-06-01", "08:30"},
	}
	var ids []string
	for _, s := range seed {
		r, err := repo.Insert(ctx, draft(s.date, s.tod))
		if err != nil {
			t.Fatalf("seed Insert(%s %s): %v", s.date, s.tod, err)
		}
		ids = append(ids, r.ID)
	}
	if _, err := repo.Cancel(ctx, ids[0]); err != nil {
		t.Fatalf("Cancel(): %v", err)
	}

	active, err := repo.List(ctx, "2099-06-01", "2099-06-02", true)
	if err != nil {
		t.Fatalf("List(activeOnly) error = %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active rows = %d, want 2", len(active))
	}
	if active[0].Time != "08:30" || active[1].Time != "16:00" {
		t.Errorf("rows not ordered by (date, time): %v", active)
	}

	all, err := repo.List(ctx, "2099-06-01", "2099-06-02", false)
	if err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all rows = %d, want 3 (cancelled rows are retained)", len(all))
	}
}

func TestCancelIdempotentAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewReservationRepository(testPool(t))

	r, err := repo.Insert(ctx, draft("2099-06-03", "11:00"))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	first, err := repo.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("first Cancel() error = %v", err)
	}
	if first.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", first.Status)
	}

	second, err := repo.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("second Cancel() error = %v, want idempotent success", err)
	}
	if second.Status != model.StatusCancelled {
		t.Errorf("status after second cancel = %s, want cancelled", second.Status)
	}

	if _, err := repo.Cancel(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel(unknown) error = %v, want ErrNotFound", err)
	}
}
