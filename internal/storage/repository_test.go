package storage

import (
	"context"
	"testing"

	"ddlgen/internal/render"
	"ddlgen/internal/tablemodel"
	"ddlgen/pkg/records"
)

type fakeRepo struct {
	ensured  bool
	inserted []string
	rows     map[string]int
	failOn   string
}

func (f *fakeRepo) Close() {}

func (f *fakeRepo) EnsureTables(ctx context.Context, root *tablemodel.Table, opt render.Options) error {
	f.ensured = true
	return nil
}

func (f *fakeRepo) InsertRows(ctx context.Context, t *tablemodel.Table) (int64, error) {
	if t.Name == f.failOn {
		return 0, context.Canceled
	}
	f.inserted = append(f.inserted, t.Name)
	if f.rows == nil {
		f.rows = map[string]int{}
	}
	f.rows[t.Name] = len(t.Rows)
	return int64(len(t.Rows)), nil
}

func TestRegisterAndNew(t *testing.T) {
	Register("fake", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake", DSN: "x"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if repo == nil {
		t.Fatal("New returned nil repository")
	}

	if _, err := New(context.Background(), Config{Kind: "nope"}); err == nil {
		t.Error("New accepted an unregistered kind")
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("New accepted an empty kind")
	}
}

func TestRegisterPanics(t *testing.T) {
	cases := []struct {
		name string
		fn   func()
	}{
		{"empty kind", func() { Register("", func(context.Context, Config) (Repository, error) { return nil, nil }) }},
		{"nil factory", func() { Register("k", nil) }},
	}
	for _, tc := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: Register did not panic", tc.name)
				}
			}()
			tc.fn()
		}()
	}
}

func TestLoadParentsFirst(t *testing.T) {
	t.Parallel()

	batch := records.Batch{
		{"name": "Earth", "moons": []any{map[string]any{"name": "Luna"}}},
		{"name": "Mars", "moons": []any{
			map[string]any{"name": "Phobos"},
			map[string]any{"name": "Deimos"},
		}},
	}
	root, err := tablemodel.Build(batch, tablemodel.Config{Table: "planets"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	repo := &fakeRepo{}
	n, err := Load(context.Background(), repo, root, render.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !repo.ensured {
		t.Error("Load skipped EnsureTables")
	}
	if n != 5 {
		t.Errorf("rows = %d, want 2 parents + 3 children", n)
	}
	if len(repo.inserted) != 2 || repo.inserted[0] != "planets" || repo.inserted[1] != "planets_moons" {
		t.Errorf("insert order = %v, want parent before child", repo.inserted)
	}
}

type fakeLogger struct {
	lines []string
}

func (l *fakeLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, format)
}

func TestLoaderLogsProgress(t *testing.T) {
	t.Parallel()

	batch := records.Batch{{"a": 1}}
	root, err := tablemodel.Build(batch, tablemodel.Config{Table: "t"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	logger := &fakeLogger{}
	l := Loader{Repo: &fakeRepo{}, Logger: logger}
	if _, err := l.Run(context.Background(), root, render.Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(logger.lines) == 0 {
		t.Error("Loader with a logger logged nothing")
	}
}

func TestLoadStopsOnError(t *testing.T) {
	t.Parallel()

	batch := records.Batch{{"a": 1}}
	root, err := tablemodel.Build(batch, tablemodel.Config{Table: "t"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	repo := &fakeRepo{failOn: "t"}
	if _, err := Load(context.Background(), repo, root, render.Options{}); err == nil {
		t.Fatal("Load swallowed an insert error")
	}
}

func TestTableRows(t *testing.T) {
	t.Parallel()

	batch := records.Batch{
		{"name": "Alfred", "ratio": "0.0691"},
		{"name": "Gertrude"},
	}
	root, err := tablemodel.Build(batch, tablemodel.Config{Table: "animals"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cols, rows := TableRows(root)
	if len(cols) != 2 || len(rows) != 2 {
		t.Fatalf("cols %v rows %d", cols, len(rows))
	}
	for i, c := range cols {
		if c == "ratio" {
			if _, ok := rows[0][i].(string); !ok {
				t.Errorf("decimal value = %T, want driver-safe string", rows[0][i])
			}
			if rows[1][i] != nil {
				t.Errorf("missing value = %v, want nil", rows[1][i])
			}
		}
	}
}
