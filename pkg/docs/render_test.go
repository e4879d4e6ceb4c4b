package docs

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/types"
)

func sampleDataframe() *types.Dataframe {
	minDate := time.Date(1961, 6, 14, 0, 0, 0, 0, time.UTC)
	maxDate := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	return &types.Dataframe{
		ID:            "yield_curve:fed_yield_curve",
		Name:          "Fed Yield Curve",
		Sources:       []string{"Federal Reserve"},
		Providers:     []string{"federalreserve.gov"},
		ProviderLinks: []string{"https://www.federalreserve.gov/data/yield-curve-tables/feds200628.csv"},
		TopicTags:     []string{"treasury", "yields"},
		AccessType:    "public",
		PullMethod:    "bulk CSV download",
		MinDate:       &minDate,
		MaxDate:       &maxDate,
		Path:          "_data/fed_yield_curve.parquet",
		Charts: []types.ChartRef{
			{Title: "Observed vs Fitted Zero-Coupon Curve", Path: "charts/fed_yield_curve_sample_plot.html"},
		},
		PipelineIDs: []string{"yield_curve"},
		Glimpse: &types.Glimpse{
			Rows:    16483,
			Columns: 3,
			Fields: []types.ColumnDescriptor{
				{Name: "Date", Type: types.TypeDatetime, Sample: "1961-06-14"},
				{Name: "SVENY01", Type: types.TypeFloat64, Sample: "2.9825"},
				{Name: "SVENY02", Type: types.TypeFloat64, Sample: "3.1265"},
			},
		},
	}
}

func samplePipeline() *types.Pipeline {
	return &types.Pipeline{
		ID:              "yield_curve",
		Name:            "US Treasury Yield Curve",
		LeadDeveloper:   "J. Doe",
		Contributors:    []string{"A. Smith", "B. Lee"},
		RepoURL:         "https://example.com/yield-curve.git",
		WebPage:         "https://example.com/yield-curve",
		LastCodeUpdate:  time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		OSCompatibility: "Linux, macOS",
		DataframeIDs:    []string{"yield_curve:fed_yield_curve"},
	}
}

func TestRenderDataframePageLabels(t *testing.T) {
	page := string(RenderDataframePage(sampleDataframe(), samplePipeline()))

	if !strings.HasPrefix(page, "# Dataframe: yield_curve:fed_yield_curve - Fed Yield Curve\n") {
		t.Errorf("Unexpected page header:\n%s", page)
	}

	// All eleven dataframe manifest labels, in order.
	pos := -1
	for _, label := range DataframeManifestLabels {
		next := strings.Index(page, "| "+label+" |")
		if next < 0 {
			t.Fatalf("Missing manifest label %q", label)
		}
		if next < pos {
			t.Errorf("Label %q out of order", label)
		}
		pos = next
	}

	// All nine pipeline manifest labels, in order.
	pos = -1
	for _, label := range PipelineManifestLabels {
		next := strings.Index(page, "| "+label+" |")
		if next < 0 {
			t.Fatalf("Missing pipeline label %q", label)
		}
		if next < pos {
			t.Errorf("Label %q out of order", label)
		}
		pos = next
	}

	if !strings.Contains(page, "- [Observed vs Fitted Zero-Coupon Curve](charts/fed_yield_curve_sample_plot.html)") {
		t.Error("Missing linked chart entry")
	}
}

func TestRenderGlimpseCounts(t *testing.T) {
	page := string(RenderDataframePage(sampleDataframe(), nil))

	if !strings.Contains(page, "Rows: 16483\n") {
		t.Error("Missing row count")
	}
	if !strings.Contains(page, "Columns: 3\n") {
		t.Error("Missing column count")
	}
	if got := strings.Count(page, "\n$ "); got != 3 {
		t.Errorf("Expected 3 column lines, got %d", got)
	}
	if !strings.Contains(page, "$ SVENY01 float64 2.9825\n") {
		t.Error("Missing column descriptor line")
	}
}

// The full Fed parameter file has exactly 100 columns: the four BETA and
// two TAU parameters, three one-year-forward columns, three blocks of 30
// maturities and the date column. The rendered glimpse must list one line
// per column.
func TestRenderFedYieldCurveAllGlimpse(t *testing.T) {
	var fields []types.ColumnDescriptor
	add := func(name string, typ types.ColumnType) {
		fields = append(fields, types.ColumnDescriptor{Name: name, Type: typ, Sample: "0.0"})
	}

	for i := 0; i < 4; i++ {
		add(fmt.Sprintf("BETA%d", i), types.TypeFloat64)
	}
	for _, n := range []int{1, 4, 9} {
		add(fmt.Sprintf("SVEN1F%02d", n), types.TypeFloat64)
	}
	for i := 1; i <= 30; i++ {
		add(fmt.Sprintf("SVENF%02d", i), types.TypeFloat64)
	}
	for i := 1; i <= 30; i++ {
		add(fmt.Sprintf("SVENPY%02d", i), types.TypeFloat64)
	}
	for i := 1; i <= 30; i++ {
		add(fmt.Sprintf("SVENY%02d", i), types.TypeFloat64)
	}
	add("TAU1", types.TypeFloat64)
	add("TAU2", types.TypeFloat64)
	add("Date", types.TypeDatetime)

	df := sampleDataframe()
	df.ID = "yield_curve:fed_yield_curve_all"
	df.Name = "Fed Yield Curve (All Columns)"
	df.Glimpse = &types.Glimpse{Rows: 16483, Columns: len(fields), Fields: fields}

	page := string(RenderDataframePage(df, nil))

	if !strings.Contains(page, "Columns: 100\n") {
		t.Fatalf("Expected 100 columns, glimpse had %d", len(fields))
	}
	if got := strings.Count(page, "\n$ "); got != 100 {
		t.Errorf("Expected 100 column lines, got %d", got)
	}
}

func TestRenderIssueInfoGlimpse(t *testing.T) {
	df := sampleDataframe()
	df.ID = "yield_curve:crsp_treasury_issue_info"
	df.Name = "CRSP Treasury Issue Info"
	df.Glimpse = &types.Glimpse{
		Rows:    2264,
		Columns: 8,
		Fields: []types.ColumnDescriptor{
			{Name: "cusip", Type: types.TypeString, Sample: "912810AA1"},
			{Name: "issue_date", Type: types.TypeDatetime, Sample: "1961-06-14"},
			{Name: "maturity_date", Type: types.TypeDatetime, Sample: "1991-06-14"},
			{Name: "coupon", Type: types.TypeFloat64, Sample: "3.875"},
			{Name: "itype", Type: types.TypeInt64, Sample: "1"},
			{Name: "original_maturity", Type: types.TypeInt64, Sample: "30"},
			{Name: "callable", Type: types.TypeBool, Sample: "false"},
			{Name: "name", Type: types.TypeString, Sample: "US TREAS BDS"},
		},
	}

	page := string(RenderDataframePage(df, nil))

	if !strings.Contains(page, "Rows: 2264\n") {
		t.Error("Missing row count")
	}
	if !strings.Contains(page, "Columns: 8\n") {
		t.Error("Missing column count")
	}
	if got := strings.Count(page, "\n$ "); got != 8 {
		t.Errorf("Expected 8 column lines, got %d", got)
	}
}

func TestRenderEmptyChartsAndDates(t *testing.T) {
	df := sampleDataframe()
	df.Charts = nil
	df.MinDate = nil
	df.MaxDate = nil

	page := string(RenderDataframePage(df, nil))

	if !strings.Contains(page, "## Linked Charts\n\n- None\n") {
		t.Error("Expected 'None' under Linked Charts")
	}
	if !strings.Contains(page, "| Data available up to (min) | None |") {
		t.Error("Expected 'None' for missing min date")
	}
}

func TestRenderPipelinePage(t *testing.T) {
	page := string(RenderPipelinePage(samplePipeline()))

	if !strings.HasPrefix(page, "# Pipeline: yield_curve - US Treasury Yield Curve\n") {
		t.Errorf("Unexpected page header:\n%s", page)
	}
	if !strings.Contains(page, "- [yield_curve:fed_yield_curve](dataframe_yield_curve_fed_yield_curve.md)") {
		t.Error("Missing linked dataframe entry")
	}
	if !strings.Contains(page, "| Date of Last Code Update | 2024-06-30 |") {
		t.Error("Missing last code update row")
	}
}

func TestPageFilenames(t *testing.T) {
	if got := DataframePageFilename("yield_curve:fed_yield_curve"); got != "dataframe_yield_curve_fed_yield_curve.md" {
		t.Errorf("Unexpected dataframe filename %q", got)
	}
	if got := PipelinePageFilename("yield_curve"); got != "pipeline_yield_curve.md" {
		t.Errorf("Unexpected pipeline filename %q", got)
	}
}
