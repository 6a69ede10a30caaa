package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/lib/pq"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/internal/storage"
)

func TestActivateLayoutRunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT type, scope FROM layout_skeletons").
		WithArgs("skel-2").
		WillReturnRows(sqlmock.NewRows([]string{"type", "scope"}).AddRow("topnav", "site"))
	mock.ExpectExec("UPDATE layout_skeletons").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE layout_skeletons").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT (.+) FROM layout_skeletons").
		WithArgs("skel-2").
		WillReturnRows(skeletonRows("skel-2", "topnav", "site", true))

	store := New(db)
	skel, err := store.ActivateLayout(context.Background(), "skel-2")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !skel.IsActive {
		t.Error("expected activated skeleton")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestActivateLayoutUnknownID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT type, scope FROM layout_skeletons").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	store := New(db)
	if _, err := store.ActivateLayout(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureLayoutConflictReturnsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO layout_skeletons").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM layout_skeletons").
		WithArgs("topnav", "site").
		WillReturnRows(skeletonRows("existing", "topnav", "site", true))

	store := New(db)
	skel, created, err := store.EnsureLayout(context.Background(), layout.Skeleton{
		Name:  "Main TopNav",
		Type:  layout.KindTopNav,
		Scope: layout.ScopeSite,
	})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if created {
		t.Error("expected no insert on conflict")
	}
	if skel.ID != "existing" {
		t.Errorf("expected existing row, got %s", skel.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetLayoutMalformedPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(columns()).
		AddRow("skel-1", "Broken", "page", "site", "", []byte(`{"components":`), true, false, 1,
			timeValue(), timeValue())
	mock.ExpectQuery("SELECT (.+) FROM layout_skeletons").
		WithArgs("skel-1").
		WillReturnRows(rows)

	store := New(db)
	if _, err := store.GetLayout(context.Background(), "skel-1"); !errors.Is(err, layout.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := New(db)
	ctx := context.Background()

	skel, err := store.CreateLayout(ctx, layout.Skeleton{
		Name:  "Integration TopNav",
		Type:  layout.KindTopNav,
		Scope: layout.ScopeSite,
		LayoutJSON: layout.TreePayload{
			Components: []layout.ComponentNode{{ID: "root", Type: "nav"}},
			Version:    1,
		},
		Version: 1,
	})
	if err != nil {
		t.Fatalf("create layout: %v", err)
	}
	defer func() { _ = store.DeleteLayout(ctx, skel.ID) }()

	if _, err := store.ActivateLayout(ctx, skel.ID); err != nil {
		t.Fatalf("activate layout: %v", err)
	}

	active, err := store.GetActiveLayout(ctx, layout.KindTopNav, layout.ScopeSite)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != skel.ID {
		t.Errorf("expected %s active, got %s", skel.ID, active.ID)
	}
}

func columns() []string {
	return []string{"id", "name", "type", "scope", "description", "layout_json",
		"is_active", "is_locked", "version", "created_at", "updated_at"}
}

func skeletonRows(id, kind, scope string, active bool) *sqlmock.Rows {
	payload := []byte(`{"components":[{"id":"root","type":"nav"}],"version":1}`)
	return sqlmock.NewRows(columns()).
		AddRow(id, "Main TopNav", kind, scope, "", payload, active, false, 1,
			timeValue(), timeValue())
}

func timeValue() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}
