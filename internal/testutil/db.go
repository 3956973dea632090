// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB opens a private in-memory sqlite database with every table migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// a single connection keeps the shared-cache database free of table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// Fixture holds a minimal populated schema: one user per role, a tagged question and a template.
type Fixture struct {
	Admin       *models.User
	Interviewer *models.User
	Candidate   *models.User
	Other       *models.User
	Question    *models.Question
	Template    *models.InterviewTemplate
	Empty       *models.InterviewTemplate
}

func Seed(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()
	f := &Fixture{
		Admin:       &models.User{ID: "admin-1", FullName: "Ada Admin", Email: "ada@example.com", Role: models.RoleAdmin},
		Interviewer: &models.User{ID: "int-1", FullName: "Ivan Interviewer", Email: "ivan@example.com", Role: models.RoleInterviewer},
		Candidate:   &models.User{ID: "cand-1", FullName: "Cara Candidate", Email: "cara@example.com", Role: models.RoleCandidate},
		Other:       &models.User{ID: "cand-2", FullName: "Otto Other", Email: "otto@example.com", Role: models.RoleCandidate},
	}
	for _, u := range []*models.User{f.Admin, f.Interviewer, f.Candidate, f.Other} {
		mustCreate(t, db, u)
	}

	f.Question = &models.Question{Title: "Reverse a list", CreatedBy: f.Admin.ID, Tags: []models.Tag{{Name: "go"}}}
	mustCreate(t, db, f.Question)

	f.Template = &models.InterviewTemplate{Name: "Backend", CreatedBy: f.Admin.ID, Questions: []models.Question{*f.Question}}
	mustCreate(t, db, f.Template)

	f.Empty = &models.InterviewTemplate{Name: "Empty", CreatedBy: f.Admin.ID}
	mustCreate(t, db, f.Empty)
	return f
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("failed to seed %T: %v", v, err)
	}
}
