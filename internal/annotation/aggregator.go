package annotation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/seqannot/internal/logging"
)

// Aggregator collects annotations for a list of features from a Store.
type Aggregator struct {
	Store Store

	// BatchSize is the maximum number of identifiers per statement.
	// Zero means DefaultBatchSize.
	BatchSize int

	// IncludeMissing keeps features that no source returned any data for.
	IncludeMissing bool
}

// NewAggregator returns an Aggregator with the default batch size.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{Store: store, BatchSize: DefaultBatchSize}
}

// stage is one step of the merge pipeline. Stages run in slice order so
// a later stage overwrites an earlier one on a name collision.
type stage struct {
	name  string
	apply func(ctx context.Context, s Store, ids []FeatureID, dst map[FeatureID]QualifierSet) (int, error)
}

var stages = []stage{
	{name: "qualifiers", apply: mergeQualifiers},
	{name: "dbxrefs", apply: mergeDbxrefs},
	{name: "lineage", apply: mergeLineages},
}

// Collect queries every source for ids and returns the merged report.
// Duplicate ids are collapsed; rows keep the order of first appearance.
// Any query error aborts the whole collection.
func (a *Aggregator) Collect(ctx context.Context, ids []FeatureID) (*Report, error) {
	ids = dedupe(ids)
	merged := make(map[FeatureID]QualifierSet, len(ids))
	logger := logging.FromContext(ctx)

	size := a.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	for i, batch := range chunk(ids, size) {
		start := time.Now()
		for _, st := range stages {
			n, err := st.apply(ctx, a.Store, batch, merged)
			if err != nil {
				return nil, fmt.Errorf("batch %d (%d ids) %s: %w", i, len(batch), st.name, err)
			}
			logger.Debug("stage complete", "batch", i, "stage", st.name, "rows", n)
		}
		logger.Info("batch complete", "batch", i, "ids", len(batch), "elapsed", time.Since(start))
	}

	order := make([]FeatureID, 0, len(ids))
	for _, id := range ids {
		if _, ok := merged[id]; ok {
			order = append(order, id)
		} else if a.IncludeMissing {
			merged[id] = QualifierSet{}
			order = append(order, id)
		} else {
			logger.Debug("no annotations for feature", "seqfeature", id)
		}
	}

	return newReport(order, merged), nil
}

func mergeQualifiers(ctx context.Context, s Store, ids []FeatureID, dst map[FeatureID]QualifierSet) (int, error) {
	rows, err := s.FeatureQualifiers(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, q := range rows {
		if q.Name == "" {
			continue
		}
		set(dst, q.Feature, q.Name, q.Value)
	}
	return len(rows), nil
}

func mergeDbxrefs(ctx context.Context, s Store, ids []FeatureID, dst map[FeatureID]QualifierSet) (int, error) {
	rows, err := s.Dbxrefs(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, x := range rows {
		set(dst, x.Feature, KeggIDColumn, x.Xref)
		if x.Name != "" {
			set(dst, x.Feature, x.Name, x.Value)
		}
	}
	return len(rows), nil
}

func mergeLineages(ctx context.Context, s Store, ids []FeatureID, dst map[FeatureID]QualifierSet) (int, error) {
	rows, err := s.Lineages(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, l := range rows {
		set(dst, l.Feature, TaxonomyColumn, l.Lineage)
		set(dst, l.Feature, OrganismColumn, Organism(l.Lineage))
	}
	return len(rows), nil
}

func set(dst map[FeatureID]QualifierSet, id FeatureID, name, value string) {
	qs, ok := dst[id]
	if !ok {
		qs = QualifierSet{}
		dst[id] = qs
	}
	qs[name] = value
}

// Organism returns the last ';'-separated segment of a lineage string.
func Organism(lineage string) string {
	if i := strings.LastIndexByte(lineage, ';'); i >= 0 {
		lineage = lineage[i+1:]
	}
	return strings.TrimSpace(lineage)
}

// chunk splits ids into consecutive slices of at most n elements.
func chunk(ids []FeatureID, n int) [][]FeatureID {
	if len(ids) == 0 {
		return nil
	}
	out := make([][]FeatureID, 0, (len(ids)+n-1)/n)
	for n < len(ids) {
		ids, out = ids[n:], append(out, ids[:n:n])
	}
	return append(out, ids)
}

func dedupe(ids []FeatureID) []FeatureID {
	seen := make(map[FeatureID]struct{}, len(ids))
	out := make([]FeatureID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
