package db

import (
	"path/filepath"
	"testing"
)

func TestRebind(t *testing.T) {
	q := "UPDATE x SET a = ? WHERE b = ? AND c = ?"

	if got := Rebind(DriverSQLite, q); got != q {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}

	want := "UPDATE x SET a = $1 WHERE b = $2 AND c = $3"
	if got := Rebind(DriverPostgres, q); got != want {
		t.Fatalf("postgres rebind = %q, want %q", got, want)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if got := conn.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}
