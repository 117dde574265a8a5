// Package annotation aggregates BioSQL annotations for a list of sequence
// features into a single denormalized report.
//
// # Sources
//
// Three sources are read for every batch of identifiers, through a [Store]:
//
//   - Direct qualifiers: term name/value pairs attached to the feature.
//   - Cross-references: the composite "dbname:accession" identifier, stored
//     under the [KeggIDColumn] name, plus any qualifiers on the dbxref.
//   - Lineage: the full taxonomy string ([TaxonomyColumn]) and its last
//     segment ([OrganismColumn]).
//
// # Merge order
//
// Sources are merged in a fixed order, each stage overwriting the previous
// one on a name collision:
//
//  1. direct qualifiers
//  2. cross-reference qualifiers
//  3. lineage fields
//
// Identifiers are split into batches of [Aggregator.BatchSize] so no
// statement binds more parameters than the database allows. Batches are
// disjoint, so the result is independent of the batch size.
//
// # Report
//
// [Report.WriteCSV] emits a "seqfeature" column followed by the sorted
// union of all qualifier names. Features with no data in any source are
// left out unless [Aggregator.IncludeMissing] is set.
package annotation
