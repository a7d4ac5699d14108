package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tsound-server/config"
	"tsound-server/internal/model"
	dbPkg "tsound-server/pkg/db"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := dbPkg.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "service.db"),
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

// fakeClock 手动推进的时间源
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingMirror struct {
	mu       sync.Mutex
	sessions []string
}

func (m *recordingMirror) Touch(_ context.Context, sessionID string, _ time.Time) {
	m.mu.Lock()
	m.sessions = append(m.sessions, sessionID)
	m.mu.Unlock()
}

type pushed struct {
	userID  string
	payload []byte
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []pushed
}

func (n *recordingNotifier) SendToUser(userID string, payload []byte) {
	n.mu.Lock()
	n.sent = append(n.sent, pushed{userID: userID, payload: payload})
	n.mu.Unlock()
}

func strPtr(s string) *string { return &s }
