package domain

import "testing"

func TestPort_UnmarshalStringAndNumber(t *testing.T) {
	list, err := ParseDescriptorList([]byte(`[
		{"type": "mysql", "name": "a", "port": "3306"},
		{"type": "postgres", "name": "b", "port": 5432}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := list[0].Port.Int(0); got != 3306 {
		t.Fatalf("expected string port 3306, got %d", got)
	}
	if got := list[1].Port.Int(0); got != 5432 {
		t.Fatalf("expected numeric port 5432, got %d", got)
	}
}

func TestPort_IntDefault(t *testing.T) {
	var p Port
	if got := p.Int(3306); got != 3306 {
		t.Fatalf("expected default 3306 for empty port, got %d", got)
	}
	p = Port("not-a-number")
	if got := p.Int(5432); got != 5432 {
		t.Fatalf("expected default 5432 for bad port, got %d", got)
	}
}

func TestIdentity(t *testing.T) {
	file := ConnectionDescriptor{Type: DriverSQLite, Path: "/tmp/app.sqlite"}
	if file.Identity() != "/tmp/app.sqlite" {
		t.Fatalf("sqlite identity should be the path, got %q", file.Identity())
	}
	server := ConnectionDescriptor{Type: DriverMariaDB, Name: "staging", Host: "db.local"}
	if server.Identity() != "staging" {
		t.Fatalf("server identity should be the name, got %q", server.Identity())
	}
}

func TestParseDescriptorList_MixedVariants(t *testing.T) {
	list, err := ParseDescriptorList([]byte(`[
		{"type": "sqlite", "path": "database/database.sqlite"},
		{"type": "mysql", "name": "local", "host": "127.0.0.1", "port": 3306,
		 "username": "root", "password": "secret", "database": "app"}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(list))
	}
	if list[0].Type != DriverSQLite || list[0].Path != "database/database.sqlite" {
		t.Fatalf("unexpected sqlite descriptor: %+v", list[0])
	}
	if list[1].Type != DriverMySQL || list[1].Name != "local" || list[1].Database != "app" {
		t.Fatalf("unexpected mysql descriptor: %+v", list[1])
	}
}

func TestParseDescriptorList_NotAList(t *testing.T) {
	if _, err := ParseDescriptorList([]byte(`{"type": "sqlite"}`)); err == nil {
		t.Fatal("expected error for non-list payload")
	}
	if _, err := ParseDescriptorList([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDriverClassification(t *testing.T) {
	for _, d := range []Driver{DriverMySQL, DriverMariaDB, DriverPostgres} {
		if !d.IsServer() {
			t.Fatalf("%s should be a server driver", d)
		}
		if !d.Known() {
			t.Fatalf("%s should be known", d)
		}
	}
	if DriverSQLite.IsServer() {
		t.Fatal("sqlite is not a server driver")
	}
	if !DriverSQLite.Known() {
		t.Fatal("sqlite should be known")
	}
	if Driver("mongodb").Known() {
		t.Fatal("mongodb is not a supported driver")
	}
}
