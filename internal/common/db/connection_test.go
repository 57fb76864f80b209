package db

import "testing"

func TestRebind(t *testing.T) {
	query := "INSERT INTO stop_coordinates (name, lat, lng) VALUES (?, ?, ?)"

	pg := &DB{dialect: Postgres}
	if got := pg.Rebind(query); got != "INSERT INTO stop_coordinates (name, lat, lng) VALUES ($1, $2, $3)" {
		t.Errorf("Rebind() for postgres = %q", got)
	}

	lite := &DB{dialect: SQLite}
	if got := lite.Rebind(query); got != query {
		t.Errorf("Rebind() for sqlite should be a no-op, got %q", got)
	}
}
