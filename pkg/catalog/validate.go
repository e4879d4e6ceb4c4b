package catalog

import (
	"fmt"
	"strings"

	"github.com/vjranagit/curvecatalog/pkg/types"
)

// knownColumnTypes lists the type tags a glimpse descriptor may carry.
var knownColumnTypes = map[types.ColumnType]bool{
	types.TypeFloat64:  true,
	types.TypeInt64:    true,
	types.TypeString:   true,
	types.TypeDatetime: true,
	types.TypeBool:     true,
}

// ValidateIndex checks the invariants of the catalog reference graph:
// glimpse column counts, referential symmetry between pipelines and
// dataframes, ID namespacing and dangling chart references. An empty
// result means the catalog is consistent.
func ValidateIndex(idx *Index) []types.Issue {
	var issues []types.Issue

	for _, df := range idx.Dataframes() {
		issues = append(issues, validateDataframe(idx, df)...)
	}

	for _, pl := range idx.Pipelines() {
		issues = append(issues, validatePipeline(idx, pl)...)
	}

	return issues
}

func validateDataframe(idx *Index, df *types.Dataframe) []types.Issue {
	var issues []types.Issue

	if df.Glimpse != nil {
		issues = append(issues, validateGlimpse(df.ID, df.Glimpse)...)
	}

	// Every linked pipeline must exist and must link back.
	for _, plID := range df.PipelineIDs {
		pl, ok := idx.GetPipeline(plID)
		if !ok {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Subject:  df.ID,
				Message:  fmt.Sprintf("linked pipeline %q does not exist", plID),
			})
			continue
		}
		if !contains(pl.DataframeIDs, df.ID) {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Subject:  df.ID,
				Message:  fmt.Sprintf("pipeline %q does not link this dataframe back", plID),
			})
		}
	}

	// IDs are namespaced as <PipelineID>:<name>; the namespace must be one
	// of the linked pipelines.
	namespace, _, found := strings.Cut(df.ID, ":")
	switch {
	case !found:
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Subject:  df.ID,
			Message:  "dataframe ID is not namespaced as <pipeline>:<name>",
		})
	case !contains(df.PipelineIDs, namespace):
		issues = append(issues, types.Issue{
			Severity: types.SeverityWarning,
			Subject:  df.ID,
			Message:  fmt.Sprintf("ID namespace %q is not a linked pipeline", namespace),
		})
	}

	for _, chart := range df.Charts {
		if chart.Path == "" {
			issues = append(issues, types.Issue{
				Severity: types.SeverityWarning,
				Subject:  df.ID,
				Message:  fmt.Sprintf("chart %q has no path", chart.Title),
			})
		}
	}

	if df.MinDate != nil && df.MaxDate != nil && df.MaxDate.Before(*df.MinDate) {
		issues = append(issues, types.Issue{
			Severity: types.SeverityError,
			Subject:  df.ID,
			Message:  "max available date precedes min available date",
		})
	}

	return issues
}

func validateGlimpse(subject string, g *types.Glimpse) []types.Issue {
	var issues []types.Issue

	if g.Columns != len(g.Fields) {
		issues = append(issues, types.Issue{
			Severity: types.SeverityError,
			Subject:  subject,
			Message: fmt.Sprintf("glimpse declares %d columns but lists %d descriptors",
				g.Columns, len(g.Fields)),
		})
	}
	if g.Rows < 0 {
		issues = append(issues, types.Issue{
			Severity: types.SeverityError,
			Subject:  subject,
			Message:  fmt.Sprintf("glimpse declares negative row count %d", g.Rows),
		})
	}

	seen := make(map[string]bool, len(g.Fields))
	for _, field := range g.Fields {
		if field.Name == "" {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Subject:  subject,
				Message:  "glimpse has a column with no name",
			})
			continue
		}
		if seen[field.Name] {
			issues = append(issues, types.Issue{
				Severity: types.SeverityWarning,
				Subject:  subject,
				Message:  fmt.Sprintf("glimpse lists column %q more than once", field.Name),
			})
		}
		seen[field.Name] = true

		if !knownColumnTypes[field.Type] {
			issues = append(issues, types.Issue{
				Severity: types.SeverityWarning,
				Subject:  subject,
				Message:  fmt.Sprintf("column %q has unknown type tag %q", field.Name, field.Type),
			})
		}
	}

	return issues
}

func validatePipeline(idx *Index, pl *types.Pipeline) []types.Issue {
	var issues []types.Issue

	for _, dfID := range pl.DataframeIDs {
		df, ok := idx.GetDataframe(dfID)
		if !ok {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Subject:  pl.ID,
				Message:  fmt.Sprintf("linked dataframe %q does not exist", dfID),
			})
			continue
		}
		if !contains(df.PipelineIDs, pl.ID) {
			issues = append(issues, types.Issue{
				Severity: types.SeverityError,
				Subject:  pl.ID,
				Message:  fmt.Sprintf("dataframe %q does not link this pipeline back", dfID),
			})
		}
	}

	return issues
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
