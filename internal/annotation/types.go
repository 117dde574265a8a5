package annotation

import (
	"context"
	"strconv"
)

// Reserved column names produced by the aggregator itself.
const (
	FeatureColumn  = "seqfeature"
	KeggIDColumn   = "kegg_id"
	TaxonomyColumn = "taxonomy"
	OrganismColumn = "organism"
)

// DefaultBatchSize keeps statements under the 999 bound-parameter limit of
// older SQLite builds.
const DefaultBatchSize = 900

// FeatureID is the seqfeature_id of a BioSQL seqfeature row.
type FeatureID int64

func (id FeatureID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// QualifierSet maps qualifier name to value for one feature.
type QualifierSet map[string]string

// Qualifier is a term name/value pair attached directly to a feature.
type Qualifier struct {
	Feature FeatureID
	Name    string
	Value   string
}

// Dbxref is a cross-reference linked to a feature. Name and Value come
// from an optional qualifier on the dbxref and are empty when it has none.
type Dbxref struct {
	Feature FeatureID
	Xref    string // dbname:accession
	Name    string
	Value   string
}

// Lineage is the taxonomy of the entry that owns a feature.
type Lineage struct {
	Feature FeatureID
	Lineage string
}

// Store reads the three annotation sources for a batch of features.
// Implementations must not modify the database.
type Store interface {
	FeatureQualifiers(ctx context.Context, ids []FeatureID) ([]Qualifier, error)
	Dbxrefs(ctx context.Context, ids []FeatureID) ([]Dbxref, error)
	Lineages(ctx context.Context, ids []FeatureID) ([]Lineage, error)
}
