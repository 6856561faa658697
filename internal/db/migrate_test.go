package db

import (
	"strings"
	"testing"
)

func TestMigrationFiles(t *testing.T) {
	names, err := MigrationFiles()
	if err != nil {
		t.Fatalf("MigrationFiles error: %v", err)
	}
	if len(names) == 0 || names[0] != "migrations/001_init.sql" {
		t.Fatalf("names = %v", names)
	}

	sql, err := migrations.ReadFile(names[0])
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	for _, table := range []string{"schedules", "schedule_days", "schedule_slots", "appointments", "event_logs"} {
		if !strings.Contains(string(sql), "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Fatalf("migration does not create %s", table)
		}
	}
}
