package repository

import (
	"path/filepath"
	"testing"

	"tsound-server/config"
	"tsound-server/internal/model"
	dbPkg "tsound-server/pkg/db"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := dbPkg.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "repo.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbPkg.AutoMigrate(gdb, model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func strPtr(s string) *string { return &s }

// createAuthUsersTable 建一张独立的认证用户表，模拟带 schema 前缀的旧部署
func createAuthUsersTable(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	err := gdb.Exec(`CREATE TABLE auth_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id VARCHAR(64) NOT NULL UNIQUE,
		username VARCHAR(64) UNIQUE,
		password_hash VARCHAR(255),
		avatar_url VARCHAR(512),
		status VARCHAR(32) NOT NULL DEFAULT 'offline',
		last_seen DATETIME,
		created_at DATETIME
	)`).Error
	if err != nil {
		t.Fatalf("create auth_users: %v", err)
	}
}
