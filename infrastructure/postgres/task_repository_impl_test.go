package postgres

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"task-api/domain/models"
	"task-api/domain/repositories"
)

// sqlRecorder keeps every statement gorm builds.
type sqlRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})    {}

func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.mu.Lock()
	r.statements = append(r.statements, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statements) == 0 {
		t.Fatal("no statement recorded")
	}
	return r.statements[len(r.statements)-1]
}

// newDryRunDB builds statements without a server; nothing is executed, so
// every write reports zero affected rows.
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, rec
}

func TestTaskRepositoryWritesAreOwnerConditioned(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	taskID, ownerID := uuid.New(), uuid.New()
	ownerClause := "owner_id = '" + ownerID.String() + "'"
	idClause := "id = '" + taskID.String() + "'"

	tests := []struct {
		name   string
		run    func() error
		prefix string
	}{
		{
			name: "update",
			run: func() error {
				return repo.Update(ctx, &models.Task{ID: taskID, OwnerID: ownerID, Title: "t", Date: models.Today()})
			},
			prefix: `UPDATE "tasks"`,
		},
		{
			name:   "delete",
			run:    func() error { return repo.Delete(ctx, taskID, ownerID) },
			prefix: `DELETE FROM "tasks"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, repositories.ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound when no row matches", err)
			}

			sql := rec.last(t)
			if !strings.HasPrefix(sql, tt.prefix) {
				t.Fatalf("statement = %s", sql)
			}
			if !strings.Contains(sql, idClause) || !strings.Contains(sql, ownerClause) {
				t.Fatalf("statement not conditioned on id and owner: %s", sql)
			}
		})
	}
}

func TestTaskRepositoryDeleteByOwner(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewTaskRepository(db)
	ownerID := uuid.New()

	if _, err := repo.DeleteByOwner(context.Background(), ownerID); err != nil {
		t.Fatalf("DeleteByOwner: %v", err)
	}
	if sql := rec.last(t); !strings.Contains(sql, "owner_id = '"+ownerID.String()+"'") {
		t.Fatalf("statement = %s", sql)
	}
}
