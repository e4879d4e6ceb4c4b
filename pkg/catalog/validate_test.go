package catalog

import (
	"testing"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/types"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func symmetricIndex() *Index {
	idx := NewIndex()
	idx.AddPipeline(&types.Pipeline{
		ID:           "yield_curve",
		Name:         "US Treasury Yield Curve",
		DataframeIDs: []string{"yield_curve:fed_yield_curve"},
	})
	idx.AddDataframe(&types.Dataframe{
		ID:          "yield_curve:fed_yield_curve",
		Name:        "Fed Yield Curve",
		PipelineIDs: []string{"yield_curve"},
	})
	return idx
}

func TestValidateSymmetricGraph(t *testing.T) {
	issues := ValidateIndex(symmetricIndex())
	if len(issues) != 0 {
		t.Errorf("Expected no issues for a symmetric graph, got %v", issues)
	}
}

func TestValidateDanglingDataframeLink(t *testing.T) {
	idx := symmetricIndex()
	idx.AddPipeline(&types.Pipeline{
		ID:           "crsp",
		DataframeIDs: []string{"crsp:missing_frame"},
	})

	issues := ValidateIndex(idx)
	if !hasError(issues, "crsp") {
		t.Errorf("Expected an error for pipeline 'crsp', got %v", issues)
	}
}

func TestValidateAsymmetricBacklink(t *testing.T) {
	idx := NewIndex()
	idx.AddPipeline(&types.Pipeline{
		ID:           "yield_curve",
		DataframeIDs: []string{"yield_curve:fed_yield_curve"},
	})
	// Dataframe exists but does not link the pipeline back.
	idx.AddDataframe(&types.Dataframe{
		ID:   "yield_curve:fed_yield_curve",
		Name: "Fed Yield Curve",
	})

	issues := ValidateIndex(idx)
	if !hasError(issues, "yield_curve") {
		t.Errorf("Expected a backlink error for pipeline 'yield_curve', got %v", issues)
	}
}

func TestValidateGlimpseColumnCount(t *testing.T) {
	idx := symmetricIndex()
	df, _ := idx.GetDataframe("yield_curve:fed_yield_curve")
	df.Glimpse = &types.Glimpse{
		Rows:    2264,
		Columns: 8,
		Fields: []types.ColumnDescriptor{
			{Name: "kytreasno", Type: types.TypeFloat64, Sample: "204082.0"},
		},
	}

	issues := ValidateIndex(idx)
	if !hasError(issues, "yield_curve:fed_yield_curve") {
		t.Errorf("Expected a glimpse error, got %v", issues)
	}
}

func TestValidateNamespaceWarning(t *testing.T) {
	idx := NewIndex()
	idx.AddPipeline(&types.Pipeline{
		ID:           "crsp",
		DataframeIDs: []string{"yield_curve:frame"},
	})
	idx.AddDataframe(&types.Dataframe{
		ID:          "yield_curve:frame",
		PipelineIDs: []string{"crsp"},
	})

	issues := ValidateIndex(idx)
	found := false
	for _, issue := range issues {
		if issue.Severity == types.SeverityWarning && issue.Subject == "yield_curve:frame" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a namespace warning, got %v", issues)
	}
}

func TestValidateDateOrder(t *testing.T) {
	idx := symmetricIndex()
	df, _ := idx.GetDataframe("yield_curve:fed_yield_curve")
	min := mustDate("2024-06-28")
	max := mustDate("1961-06-14")
	df.MinDate = &min
	df.MaxDate = &max

	issues := ValidateIndex(idx)
	if !hasError(issues, "yield_curve:fed_yield_curve") {
		t.Errorf("Expected a date-order error, got %v", issues)
	}
}

func hasError(issues []types.Issue, subject string) bool {
	for _, issue := range issues {
		if issue.Severity == types.SeverityError && issue.Subject == subject {
			return true
		}
	}
	return false
}
