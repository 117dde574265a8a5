// Package biosql reads feature annotations from a BioSQL database.
//
// The three queries only touch these tables: seqfeature_qualifier_value,
// term, seqfeature_dbxref, dbxref, dbxref_qualifier_value, seqfeature,
// bioentry and lineage. lineage is not part of the stock BioSQL schema; it
// maps taxon.taxon_id (column id) to a precomputed ';'-joined lineage.
package biosql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JonMunkholm/seqannot/internal/annotation"
)

// Store implements annotation.Store over a Querier.
type Store struct {
	q       Querier
	dialect Dialect

	// Timeout bounds each statement; zero means no limit.
	Timeout time.Duration
}

var _ annotation.Store = (*Store)(nil)

// NewStore wraps q, rendering statements in the given dialect.
func NewStore(q Querier, d Dialect) *Store {
	return &Store{q: q, dialect: d}
}

// Close releases the underlying connection.
func (s *Store) Close() {
	s.q.Close()
}

func (s *Store) qualifierSQL(n int) string {
	return "SELECT qv.seqfeature_id, t.name, qv.value " +
		"FROM seqfeature_qualifier_value qv " +
		"JOIN term t ON t.term_id = qv.term_id " +
		"WHERE qv.seqfeature_id IN (" + s.dialect.Placeholders(n) + ") " +
		"ORDER BY qv.seqfeature_id, qv.rank"
}

func (s *Store) dbxrefSQL(n int) string {
	return "SELECT s.seqfeature_id, " + s.dialect.Concat("d.dbname", "':'", "d.accession") + ", t.name, dqv.value " +
		"FROM seqfeature_dbxref s " +
		"JOIN dbxref d ON d.dbxref_id = s.dbxref_id " +
		"LEFT JOIN dbxref_qualifier_value dqv ON dqv.dbxref_id = d.dbxref_id " +
		"LEFT JOIN term t ON t.term_id = dqv.term_id " +
		"WHERE s.seqfeature_id IN (" + s.dialect.Placeholders(n) + ") " +
		"ORDER BY s.seqfeature_id, s.rank, dqv.rank"
}

func (s *Store) lineageSQL(n int) string {
	return "SELECT f.seqfeature_id, l.lineage " +
		"FROM seqfeature f " +
		"JOIN bioentry b ON b.bioentry_id = f.bioentry_id " +
		"JOIN lineage l ON l.id = b.taxon_id " +
		"WHERE f.seqfeature_id IN (" + s.dialect.Placeholders(n) + ") " +
		"ORDER BY f.seqfeature_id"
}

// FeatureQualifiers returns the term name/value pairs attached to ids.
func (s *Store) FeatureQualifiers(ctx context.Context, ids []annotation.FeatureID) ([]annotation.Qualifier, error) {
	var out []annotation.Qualifier
	err := s.query(ctx, s.qualifierSQL(len(ids)), ids, func(r Rows) error {
		var (
			id          int64
			name, value sql.NullString
		)
		if err := r.Scan(&id, &name, &value); err != nil {
			return err
		}
		out = append(out, annotation.Qualifier{
			Feature: annotation.FeatureID(id),
			Name:    name.String,
			Value:   value.String,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query qualifiers: %w", err)
	}
	return out, nil
}

// Dbxrefs returns the cross-references of ids with their qualifiers.
// A dbxref with several qualifiers yields one row per qualifier.
func (s *Store) Dbxrefs(ctx context.Context, ids []annotation.FeatureID) ([]annotation.Dbxref, error) {
	var out []annotation.Dbxref
	err := s.query(ctx, s.dbxrefSQL(len(ids)), ids, func(r Rows) error {
		var (
			id                int64
			xref, name, value sql.NullString
		)
		if err := r.Scan(&id, &xref, &name, &value); err != nil {
			return err
		}
		out = append(out, annotation.Dbxref{
			Feature: annotation.FeatureID(id),
			Xref:    xref.String,
			Name:    name.String,
			Value:   value.String,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query dbxrefs: %w", err)
	}
	return out, nil
}

// Lineages returns the lineage of the bioentry owning each of ids.
func (s *Store) Lineages(ctx context.Context, ids []annotation.FeatureID) ([]annotation.Lineage, error) {
	var out []annotation.Lineage
	err := s.query(ctx, s.lineageSQL(len(ids)), ids, func(r Rows) error {
		var (
			id      int64
			lineage sql.NullString
		)
		if err := r.Scan(&id, &lineage); err != nil {
			return err
		}
		out = append(out, annotation.Lineage{
			Feature: annotation.FeatureID(id),
			Lineage: lineage.String,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query lineage: %w", err)
	}
	return out, nil
}

// query runs stmt with ids bound in order and calls scan for every row.
func (s *Store) query(ctx context.Context, stmt string, ids []annotation.FeatureID, scan func(Rows) error) error {
	if len(ids) == 0 {
		return nil
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = int64(id)
	}

	rows, err := s.q.Query(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
