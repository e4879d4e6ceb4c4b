// Package docs renders and parses the Markdown catalog pages. The row
// labels and their order are fixed: downstream tooling greps the rendered
// pages, so they must not change.
package docs

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/types"
)

// DateLayout is the date format used across all rendered pages.
const DateLayout = "2006-01-02"

// DataframeManifestLabels are the row labels of a Dataframe Manifest table,
// in the documented order.
var DataframeManifestLabels = []string{
	"Dataframe Name",
	"Dataframe ID",
	"Data Sources",
	"Data Providers",
	"Links to Providers",
	"Topic Tags",
	"Type of Data Access",
	"How is data pulled?",
	"Data available up to (min)",
	"Data available up to (max)",
	"Dataframe Path",
}

// PipelineManifestLabels are the row labels of a Pipeline Manifest table,
// in the documented order.
var PipelineManifestLabels = []string{
	"Pipeline Name",
	"Pipeline ID",
	"Lead Pipeline Developer",
	"Contributors",
	"Git Repo URL",
	"Pipeline Web Page",
	"Date of Last Code Update",
	"OS Compatibility",
	"Linked Dataframes",
}

// DataframePageFilename returns the relative filename of a dataframe page.
// The ':' namespace separator is not filesystem-safe, so it becomes '_'.
func DataframePageFilename(id string) string {
	return "dataframe_" + strings.ReplaceAll(id, ":", "_") + ".md"
}

// PipelinePageFilename returns the relative filename of a pipeline page.
func PipelinePageFilename(id string) string {
	return "pipeline_" + id + ".md"
}

// RenderDataframePage renders the full Markdown page for a dataframe:
// header, glimpse block, manifest table, the manifest of its pipeline and
// the linked-charts list. pl may be nil when the dataframe has no resolved
// pipeline.
func RenderDataframePage(df *types.Dataframe, pl *types.Pipeline) []byte {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "# Dataframe: %s - %s\n\n", df.ID, df.Name)

	if df.Glimpse != nil {
		buf.WriteString("## DataFrame Glimpse\n\n")
		renderGlimpse(buf, df.Glimpse)
		buf.WriteString("\n")
	}

	buf.WriteString("## Dataframe Manifest\n\n")
	renderDataframeManifest(buf, df)
	buf.WriteString("\n")

	if pl != nil {
		buf.WriteString("## Pipeline Manifest\n\n")
		renderPipelineManifest(buf, pl)
		buf.WriteString("\n")
	}

	buf.WriteString("## Linked Charts\n\n")
	if len(df.Charts) == 0 {
		buf.WriteString("- None\n")
	} else {
		for _, chart := range df.Charts {
			fmt.Fprintf(buf, "- [%s](%s)\n", chart.Title, chart.Path)
		}
	}

	return buf.Bytes()
}

// RenderPipelinePage renders the full Markdown page for a pipeline.
func RenderPipelinePage(pl *types.Pipeline) []byte {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "# Pipeline: %s - %s\n\n", pl.ID, pl.Name)

	buf.WriteString("## Pipeline Manifest\n\n")
	renderPipelineManifest(buf, pl)
	buf.WriteString("\n")

	buf.WriteString("## Linked Dataframes\n\n")
	if len(pl.DataframeIDs) == 0 {
		buf.WriteString("- None\n")
	} else {
		for _, id := range pl.DataframeIDs {
			fmt.Fprintf(buf, "- [%s](%s)\n", id, DataframePageFilename(id))
		}
	}

	return buf.Bytes()
}

// renderGlimpse writes the fenced glimpse block: row/column counts followed
// by one "$ <name> <type> <sample>" line per column.
func renderGlimpse(buf *bytes.Buffer, g *types.Glimpse) {
	buf.WriteString("```\n")
	fmt.Fprintf(buf, "Rows: %d\n", g.Rows)
	fmt.Fprintf(buf, "Columns: %d\n", g.Columns)
	for _, field := range g.Fields {
		fmt.Fprintf(buf, "$ %s %s %s\n", field.Name, field.Type, field.Sample)
	}
	buf.WriteString("```\n")
}

func renderDataframeManifest(buf *bytes.Buffer, df *types.Dataframe) {
	values := []string{
		df.Name,
		df.ID,
		joinOrNone(df.Sources),
		joinOrNone(df.Providers),
		joinOrNone(df.ProviderLinks),
		joinOrNone(df.TopicTags),
		orNone(df.AccessType),
		orNone(df.PullMethod),
		formatDate(df.MinDate),
		formatDate(df.MaxDate),
		orNone(df.Path),
	}
	renderTable(buf, DataframeManifestLabels, values)
}

func renderPipelineManifest(buf *bytes.Buffer, pl *types.Pipeline) {
	links := make([]string, len(pl.DataframeIDs))
	for i, id := range pl.DataframeIDs {
		links[i] = fmt.Sprintf("[%s](%s)", id, DataframePageFilename(id))
	}

	values := []string{
		pl.Name,
		pl.ID,
		orNone(pl.LeadDeveloper),
		joinOrNone(pl.Contributors),
		orNone(pl.RepoURL),
		orNone(pl.WebPage),
		pl.LastCodeUpdate.Format(DateLayout),
		orNone(pl.OSCompatibility),
		joinOrNone(links),
	}
	renderTable(buf, PipelineManifestLabels, values)
}

func renderTable(buf *bytes.Buffer, labels, values []string) {
	buf.WriteString("| Field | Value |\n")
	buf.WriteString("| --- | --- |\n")
	for i, label := range labels {
		fmt.Fprintf(buf, "| %s | %s |\n", label, values[i])
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format(DateLayout)
}
