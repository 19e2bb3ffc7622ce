package render

import (
	"strings"
	"testing"

	"ddlgen/internal/tablemodel"
	"ddlgen/pkg/records"
)

func mustBuild(t *testing.T, batch records.Batch, cfg tablemodel.Config) *tablemodel.Table {
	t.Helper()
	tbl, err := tablemodel.Build(batch, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tbl
}

func mustDialect(t *testing.T, name string) Dialect {
	t.Helper()
	d, err := Get(name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	return d
}

func TestGet(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"postgres", "sqlite", "mssql"} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
	if _, err := Get("oracle"); err == nil {
		t.Error("Get accepted an unregistered dialect")
	}
}

func TestCreateTableTypes(t *testing.T) {
	t.Parallel()

	batch := records.Batch{
		{"name": "Alfred", "kg": 22, "ratio": "0.0691", "alive": "true", "seen": "2024-01-02"},
	}
	tbl := mustBuild(t, batch, tablemodel.Config{Table: "animals"})

	cases := []struct {
		dialect string
		want    []string
	}{
		{"postgres", []string{
			`"kg" BIGINT NOT NULL`,
			`"ratio" DECIMAL(4, 4) NOT NULL`,
			`"alive" BOOLEAN NOT NULL`,
			`"seen" DATE NOT NULL`,
			`"name" VARCHAR(6) NOT NULL`,
		}},
		{"sqlite", []string{
			`"kg" INTEGER NOT NULL`,
			`"ratio" DECIMAL(4, 4) NOT NULL`,
			`"alive" INTEGER NOT NULL`,
			`"seen" DATE NOT NULL`,
			`"name" VARCHAR(6) NOT NULL`,
		}},
		{"mssql", []string{
			`[kg] BIGINT NOT NULL`,
			`[ratio] DECIMAL(4, 4) NOT NULL`,
			`[alive] BIT NOT NULL`,
			`[seen] DATE NOT NULL`,
			`[name] NVARCHAR(6) NOT NULL`,
		}},
	}
	for _, tc := range cases {
		sql := CreateTable(mustDialect(t, tc.dialect), tbl, Options{Creates: true})
		for _, want := range tc.want {
			if !strings.Contains(sql, want) {
				t.Errorf("%s: missing %q in:\n%s", tc.dialect, want, sql)
			}
		}
	}
}

func TestCreateTableSerialKey(t *testing.T) {
	t.Parallel()

	batch := records.Batch{
		{"name": "Earth", "moons": []any{map[string]any{"name": "Luna"}}},
	}
	tbl := mustBuild(t, batch, tablemodel.Config{Table: "planets"})

	cases := []struct {
		dialect string
		want    string
	}{
		{"postgres", `"planets_id" SERIAL PRIMARY KEY`},
		{"sqlite", `"planets_id" INTEGER PRIMARY KEY`},
		{"mssql", `[planets_id] INT IDENTITY(1,1) PRIMARY KEY`},
	}
	for _, tc := range cases {
		sql := CreateTable(mustDialect(t, tc.dialect), tbl, Options{})
		if !strings.Contains(sql, tc.want) {
			t.Errorf("%s: missing %q in:\n%s", tc.dialect, tc.want, sql)
		}
	}

	child := tbl.Children[0]
	sql := CreateTable(mustDialect(t, "postgres"), child, Options{})
	if !strings.Contains(sql, `REFERENCES "planets" ("planets_id")`) {
		t.Errorf("child fk missing reference:\n%s", sql)
	}
}

func TestCreateTableTextModeAndUniques(t *testing.T) {
	t.Parallel()

	batch := records.Batch{{"name": "Alfred"}, {"name": "Gertrude"}}
	tbl := mustBuild(t, batch, tablemodel.Config{Table: "animals"})

	d := mustDialect(t, "postgres")
	sql := CreateTable(d, tbl, Options{TextMode: true, Uniques: true})
	if !strings.Contains(sql, `"name" TEXT NOT NULL UNIQUE`) {
		t.Errorf("want TEXT UNIQUE column, got:\n%s", sql)
	}
	sql = CreateTable(d, tbl, Options{})
	if strings.Contains(sql, "UNIQUE") {
		t.Errorf("UNIQUE asserted without the option:\n%s", sql)
	}
}

func TestInsertLiterals(t *testing.T) {
	t.Parallel()

	batch := records.Batch{
		{"name": "O'Hara", "kg": 22, "alive": "yes", "note": nil},
	}
	tbl := mustBuild(t, batch, tablemodel.Config{Table: "animals"})

	pg := Inserts(mustDialect(t, "postgres"), tbl)
	if len(pg) != 1 {
		t.Fatalf("inserts = %d, want 1", len(pg))
	}
	for _, want := range []string{"'O''Hara'", "22", "TRUE", "NULL"} {
		if !strings.Contains(pg[0], want) {
			t.Errorf("postgres insert missing %q: %s", want, pg[0])
		}
	}

	ms := Inserts(mustDialect(t, "mssql"), tbl)
	if !strings.Contains(ms[0], "N'O''Hara'") {
		t.Errorf("mssql insert not a national literal: %s", ms[0])
	}
	if !strings.Contains(ms[0], ", 1,") && !strings.HasSuffix(ms[0], " 1)") && !strings.Contains(ms[0], "(1,") {
		t.Errorf("mssql bool should render as 1: %s", ms[0])
	}
}

func TestScriptOrdering(t *testing.T) {
	t.Parallel()

	batch := records.Batch{
		{"name": "Earth", "moons": []any{map[string]any{"name": "Luna"}}},
	}
	tbl := mustBuild(t, batch, tablemodel.Config{Table: "planets"})

	script := Script(mustDialect(t, "postgres"), tbl, Options{Creates: true, Drops: true, Inserts: true})

	dropChild := strings.Index(script, `DROP TABLE IF EXISTS "planets_moons"`)
	dropParent := strings.Index(script, `DROP TABLE IF EXISTS "planets"`)
	createParent := strings.Index(script, `CREATE TABLE "planets"`)
	createChild := strings.Index(script, `CREATE TABLE "planets_moons"`)
	insertParent := strings.Index(script, `INSERT INTO "planets"`)
	insertChild := strings.Index(script, `INSERT INTO "planets_moons"`)

	for name, ix := range map[string]int{
		"drop child": dropChild, "drop parent": dropParent,
		"create parent": createParent, "create child": createChild,
		"insert parent": insertParent, "insert child": insertChild,
	} {
		if ix < 0 {
			t.Fatalf("script missing %s:\n%s", name, script)
		}
	}
	if !(dropChild < dropParent && dropParent < createParent) {
		t.Error("drops must run children-first, before creates")
	}
	if !(createParent < createChild && createChild < insertParent) {
		t.Error("creates must run parents-first, before inserts")
	}
	if !(insertParent < insertChild) {
		t.Error("inserts must run parents-first")
	}
}

func TestScriptIdentityInsertMSSQL(t *testing.T) {
	t.Parallel()

	batch := records.Batch{
		{"name": "Earth", "moons": []any{map[string]any{"name": "Luna"}}},
	}
	tbl := mustBuild(t, batch, tablemodel.Config{Table: "planets"})

	script := Script(mustDialect(t, "mssql"), tbl, Options{Inserts: true})
	on := strings.Index(script, "SET IDENTITY_INSERT [planets] ON")
	ins := strings.Index(script, "INSERT INTO [planets]")
	off := strings.Index(script, "SET IDENTITY_INSERT [planets] OFF")
	if on < 0 || off < 0 || ins < 0 || !(on < ins && ins < off) {
		t.Errorf("identity insert not toggled around inserts:\n%s", script)
	}
}
