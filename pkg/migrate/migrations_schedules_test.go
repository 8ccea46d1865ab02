package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dispatchday/dispatchday-backend/pkg/migrate"
)

func TestSchedulesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_delivery_schedules.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no schedules migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS delivery_schedules",
		"CREATE TABLE IF NOT EXISTS schedule_blocked_dates",
		"CREATE TABLE IF NOT EXISTS schedule_time_windows",
		"idx_schedules_store_method",
		"FOREIGN KEY (schedule_id) REFERENCES delivery_schedules(id) ON DELETE CASCADE",
		"CHECK (min_lead_days >= 0)",
		"CHECK (end_minute > start_minute)",
		"DROP TABLE IF EXISTS delivery_schedules",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir invalid: %v", err)
	}
}
