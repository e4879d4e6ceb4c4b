package types

import "time"

// ColumnType is the declared type tag of a dataframe column.
type ColumnType string

const (
	TypeFloat64  ColumnType = "float64"
	TypeInt64    ColumnType = "int64"
	TypeString   ColumnType = "string"
	TypeDatetime ColumnType = "datetime"
	TypeBool     ColumnType = "bool"
)

// ColumnDescriptor describes a single column of a dataframe: its name,
// declared type tag and one sample value.
type ColumnDescriptor struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Sample string     `json:"sample"`
}

// Glimpse is a schema snapshot of a dataframe: row/column counts and the
// ordered column descriptors. Columns must equal len(Fields).
type Glimpse struct {
	Rows    int                `json:"rows"`
	Columns int                `json:"columns"`
	Fields  []ColumnDescriptor `json:"fields"`
}

// ChartRef is a reference to a chart rendered from a dataframe.
type ChartRef struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Dataframe is the manifest record for one tabular dataset. IDs are
// namespaced as "<PipelineID>:<name>".
type Dataframe struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Sources       []string   `json:"sources"`
	Providers     []string   `json:"providers"`
	ProviderLinks []string   `json:"provider_links"`
	TopicTags     []string   `json:"topic_tags"`
	AccessType    string     `json:"access_type"`
	PullMethod    string     `json:"pull_method"`
	MinDate       *time.Time `json:"min_date,omitempty"`
	MaxDate       *time.Time `json:"max_date,omitempty"`
	Path          string     `json:"path"`
	Charts        []ChartRef `json:"charts"`
	PipelineIDs   []string   `json:"pipeline_ids"`
	Glimpse       *Glimpse   `json:"glimpse,omitempty"`
}

// Pipeline is the manifest record for one data pipeline.
type Pipeline struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	LeadDeveloper   string    `json:"lead_developer"`
	Contributors    []string  `json:"contributors"`
	RepoURL         string    `json:"repo_url"`
	WebPage         string    `json:"web_page"`
	LastCodeUpdate  time.Time `json:"last_code_update"`
	OSCompatibility string    `json:"os_compatibility"`
	DataframeIDs    []string  `json:"dataframe_ids"`
}

// Series is one named numeric column of a dataframe together with its
// observation dates. Dates and Values are parallel slices.
type Series struct {
	Column string      `json:"column"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// SeriesWriteRequest writes one or more columns of numeric data for a
// dataframe into the catalog.
type SeriesWriteRequest struct {
	DataframeID string   `json:"dataframe_id"`
	Series      []Series `json:"series"`
}

// SeriesReadRequest reads a stored column over a date range.
type SeriesReadRequest struct {
	DataframeID string    `json:"dataframe_id"`
	Column      string    `json:"column"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// SeriesReadResult is the result of a series read.
type SeriesReadResult struct {
	Series Series `json:"series"`
}

// IssueSeverity classifies a validation finding.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding from catalog validation.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Subject  string        `json:"subject"`
	Message  string        `json:"message"`
}
