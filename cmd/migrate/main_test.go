package main

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

type fakeMigrator struct {
	calls   []string
	err     error
	version uint
	dirty   bool
}

func (f *fakeMigrator) Up() error         { f.calls = append(f.calls, "up"); return f.err }
func (f *fakeMigrator) Down() error       { f.calls = append(f.calls, "down"); return f.err }
func (f *fakeMigrator) Steps(n int) error { f.calls = append(f.calls, "steps"); return f.err }
func (f *fakeMigrator) Force(v int) error { f.calls = append(f.calls, "force"); return f.err }
func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, f.dirty, f.err
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		err     error
		want    string
		call    string
		wantErr bool
	}{
		{"up", options{up: true}, nil, "migrations applied", "up", false},
		{"up without change", options{up: true}, migrate.ErrNoChange, "no change", "up", false},
		{"down failure", options{down: true}, errors.New("locked"), "", "down", true},
		{"steps", options{steps: -1}, nil, "applied -1 migration steps", "steps", false},
		{"force zero", options{force: 0, forceSet: true}, nil, "forced to version 0", "force", false},
		{"version", options{version: true}, nil, "version: 1, dirty: false", "version", false},
		{"version before first migration", options{version: true}, migrate.ErrNilVersion, "version: none", "version", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMigrator{err: tt.err, version: 1}

			got, err := run(m, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("msg = %q, want %q", got, tt.want)
			}
			if len(m.calls) != 1 || m.calls[0] != tt.call {
				t.Errorf("calls = %v, want [%s]", m.calls, tt.call)
			}
		})
	}
}

func TestSelected(t *testing.T) {
	if (options{force: -1}).selected() {
		t.Error("no command flags should select nothing")
	}
	if !(options{steps: 2}).selected() {
		t.Error("steps should select a command")
	}
}

func TestResolveDSN(t *testing.T) {
	t.Setenv(envDSN, "")
	if got := resolveDSN(""); got != defaultDSN {
		t.Errorf("default = %q", got)
	}

	t.Setenv(envDSN, "postgres://env")
	if got := resolveDSN(""); got != "postgres://env" {
		t.Errorf("env = %q", got)
	}
	if got := resolveDSN("postgres://flag"); got != "postgres://flag" {
		t.Errorf("flag = %q", got)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := newSource(migrations)
	if err != nil {
		t.Fatalf("newSource: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil || first != 1 {
		t.Fatalf("first = %d, %v", first, err)
	}

	up, err := fs.ReadFile(migrations, "migrations/000001_initial_schema.up.sql")
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"clinical_summaries", "medical_timeline", "medical_letters", "prompts"} {
		if !strings.Contains(string(up), "CREATE TABLE "+table) {
			t.Errorf("missing table %s", table)
		}
	}
	if !strings.Contains(string(up), "ON prompts(stage) WHERE active") {
		t.Error("missing one-active-prompt-per-stage index")
	}
}
