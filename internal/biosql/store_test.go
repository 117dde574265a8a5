package biosql

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/seqannot/internal/annotation"
	"github.com/JonMunkholm/seqannot/internal/config"
)

// schema is the subset of BioSQL the queries read, plus the lineage table.
var schema = []string{
	`CREATE TABLE term (term_id INTEGER PRIMARY KEY, name TEXT NOT NULL, ontology_id INTEGER)`,
	`CREATE TABLE bioentry (bioentry_id INTEGER PRIMARY KEY, taxon_id INTEGER)`,
	`CREATE TABLE seqfeature (seqfeature_id INTEGER PRIMARY KEY, bioentry_id INTEGER NOT NULL)`,
	`CREATE TABLE seqfeature_qualifier_value (seqfeature_id INTEGER NOT NULL, term_id INTEGER NOT NULL, rank INTEGER NOT NULL DEFAULT 0, value TEXT NOT NULL)`,
	`CREATE TABLE dbxref (dbxref_id INTEGER PRIMARY KEY, dbname TEXT NOT NULL, accession TEXT NOT NULL, version INTEGER NOT NULL DEFAULT 0)`,
	`CREATE TABLE seqfeature_dbxref (seqfeature_id INTEGER NOT NULL, dbxref_id INTEGER NOT NULL, rank INTEGER)`,
	`CREATE TABLE dbxref_qualifier_value (dbxref_id INTEGER NOT NULL, term_id INTEGER NOT NULL, rank INTEGER NOT NULL DEFAULT 0, value TEXT)`,
	`CREATE TABLE lineage (id INTEGER PRIMARY KEY, lineage TEXT)`,
}

var fixtures = []string{
	`INSERT INTO term (term_id, name) VALUES (1, 'product'), (2, 'definition'), (3, 'note')`,
	`INSERT INTO bioentry (bioentry_id, taxon_id) VALUES (1, 100), (2, 200)`,
	`INSERT INTO seqfeature (seqfeature_id, bioentry_id) VALUES (10, 1), (20, 2), (30, 2)`,
	`INSERT INTO seqfeature_qualifier_value (seqfeature_id, term_id, rank, value) VALUES (10, 1, 1, 'X'), (10, 3, 3, 'second'), (10, 3, 2, 'first')`,
	`INSERT INTO dbxref (dbxref_id, dbname, accession) VALUES (5, 'ko', 'K1'), (6, 'ko', 'K2')`,
	`INSERT INTO seqfeature_dbxref (seqfeature_id, dbxref_id, rank) VALUES (10, 5, 1), (20, 6, 1)`,
	`INSERT INTO dbxref_qualifier_value (dbxref_id, term_id, rank, value) VALUES (6, 2, 1, 'thr operon leader')`,
	`INSERT INTO lineage (id, lineage) VALUES (100, 'A;B;C')`,
}

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, stmt := range append(append([]string{}, schema...), fixtures...) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	seed(t, db)

	store := NewStore(DBQuerier{DB: db}, SQLite)
	t.Cleanup(store.Close)
	return store
}

var ids = []annotation.FeatureID{10, 20, 30, 40}

func TestStore_FeatureQualifiers(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FeatureQualifiers(context.Background(), ids)
	if err != nil {
		t.Fatalf("FeatureQualifiers() error = %v", err)
	}

	want := []annotation.Qualifier{
		{Feature: 10, Name: "product", Value: "X"},
		{Feature: 10, Name: "note", Value: "first"},
		{Feature: 10, Name: "note", Value: "second"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("qualifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Dbxrefs(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Dbxrefs(context.Background(), ids)
	if err != nil {
		t.Fatalf("Dbxrefs() error = %v", err)
	}

	want := []annotation.Dbxref{
		{Feature: 10, Xref: "ko:K1"},
		{Feature: 20, Xref: "ko:K2", Name: "definition", Value: "thr operon leader"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dbxrefs mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Lineages(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Lineages(context.Background(), ids)
	if err != nil {
		t.Fatalf("Lineages() error = %v", err)
	}

	want := []annotation.Lineage{{Feature: 10, Lineage: "A;B;C"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lineages mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_EmptyBatchSkipsQuery(t *testing.T) {
	store := NewStore(nil, SQLite)

	got, err := store.FeatureQualifiers(context.Background(), nil)
	if err != nil {
		t.Fatalf("FeatureQualifiers(nil) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no rows", got)
	}
}

func TestStore_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	store := NewStore(DBQuerier{DB: db}, SQLite)
	defer store.Close()

	_, err = store.Lineages(context.Background(), ids)
	if err == nil {
		t.Fatal("Lineages() should fail without a lineage table")
	}
	if h := Explain(err); h.Code != "DB004" {
		t.Errorf("Explain(%v).Code = %s, want DB004", err, h.Code)
	}
}

func TestStore_ReportEndToEnd(t *testing.T) {
	store := newTestStore(t)
	agg := &annotation.Aggregator{Store: store, BatchSize: 2}

	report, err := agg.Collect(context.Background(), ids)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "seqfeature,definition,kegg_id,note,organism,product,taxonomy\n" +
		"10,,ko:K1,second,C,X,A;B;C\n" +
		"20,thr operon leader,ko:K2,,,,\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biosql.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("create sqlite file: %v", err)
	}
	seed(t, db)
	if err := db.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	store, err := Open(context.Background(), config.DatabaseConfig{
		Driver:         "sqlite",
		Name:           path,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	got, err := store.Lineages(context.Background(), []annotation.FeatureID{10})
	if err != nil {
		t.Fatalf("Lineages() error = %v", err)
	}
	if len(got) != 1 || got[0].Lineage != "A;B;C" {
		t.Errorf("Lineages() = %v, want one A;B;C row", got)
	}
}

func TestOpen_SQLiteMissingFile(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{
		Driver:         "sqlite",
		Name:           filepath.Join(t.TempDir(), "absent.db"),
		ConnectTimeout: time.Second,
	})
	if err == nil {
		t.Fatal("Open() should fail for a missing sqlite file")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", ConnectTimeout: time.Second})
	if err == nil {
		t.Fatal("Open() should reject an unknown driver")
	}
}
