package docs

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/types"
)

var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

// DataframePage is the parsed form of one rendered dataframe page.
type DataframePage struct {
	Dataframe *types.Dataframe
	Pipeline  *types.Pipeline
}

// ParseDataframePage reads a rendered dataframe page back into records.
// Surrounding prose is ignored; the manifest tables are strict: every
// fixed row label must be present in the documented order.
func ParseDataframePage(r io.Reader) (*DataframePage, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	df := &types.Dataframe{}
	page := &DataframePage{Dataframe: df}

	headerFound := false
	manifestFound := false
	section := ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(line, "# Dataframe: ") {
			id, name, err := parseHeader(strings.TrimPrefix(line, "# Dataframe: "))
			if err != nil {
				return nil, err
			}
			df.ID, df.Name = id, name
			headerFound = true
			continue
		}

		if strings.HasPrefix(line, "## ") {
			section = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			continue
		}

		switch section {
		case "DataFrame Glimpse":
			if strings.HasPrefix(line, "```") {
				glimpse, next, err := parseGlimpseBlock(lines, i+1)
				if err != nil {
					return nil, err
				}
				df.Glimpse = glimpse
				i = next
				section = ""
			}

		case "Dataframe Manifest":
			if strings.HasPrefix(line, "|") {
				rows, next, err := parseTable(lines, i)
				if err != nil {
					return nil, err
				}
				if err := applyDataframeManifest(df, rows); err != nil {
					return nil, err
				}
				manifestFound = true
				i = next
				section = ""
			}

		case "Pipeline Manifest":
			if strings.HasPrefix(line, "|") {
				rows, next, err := parseTable(lines, i)
				if err != nil {
					return nil, err
				}
				pl, err := pipelineFromManifest(rows)
				if err != nil {
					return nil, err
				}
				page.Pipeline = pl
				i = next
				section = ""
			}

		case "Linked Charts":
			if strings.HasPrefix(line, "- ") {
				item := strings.TrimPrefix(line, "- ")
				if item == "None" {
					continue
				}
				m := linkPattern.FindStringSubmatch(item)
				if m == nil {
					return nil, fmt.Errorf("malformed chart reference %q", item)
				}
				df.Charts = append(df.Charts, types.ChartRef{Title: m[1], Path: m[2]})
			}
		}
	}

	if !headerFound {
		return nil, fmt.Errorf("missing dataframe page header")
	}
	if !manifestFound {
		return nil, fmt.Errorf("missing dataframe manifest table")
	}
	if page.Pipeline != nil {
		df.PipelineIDs = appendMissing(df.PipelineIDs, page.Pipeline.ID)
	}

	return page, nil
}

// ParsePipelinePage reads a rendered pipeline page back into a record.
func ParsePipelinePage(r io.Reader) (*types.Pipeline, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var pl *types.Pipeline
	headerID, headerName := "", ""
	headerFound := false
	section := ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(line, "# Pipeline: ") {
			id, name, err := parseHeader(strings.TrimPrefix(line, "# Pipeline: "))
			if err != nil {
				return nil, err
			}
			headerID, headerName = id, name
			headerFound = true
			continue
		}

		if strings.HasPrefix(line, "## ") {
			section = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			continue
		}

		if section == "Pipeline Manifest" && strings.HasPrefix(line, "|") {
			rows, next, err := parseTable(lines, i)
			if err != nil {
				return nil, err
			}
			pl, err = pipelineFromManifest(rows)
			if err != nil {
				return nil, err
			}
			i = next
			section = ""
		}
	}

	if !headerFound {
		return nil, fmt.Errorf("missing pipeline page header")
	}
	if pl == nil {
		return nil, fmt.Errorf("missing pipeline manifest table")
	}
	if pl.ID != headerID {
		return nil, fmt.Errorf("header ID %q does not match manifest ID %q", headerID, pl.ID)
	}
	if pl.Name == "" {
		pl.Name = headerName
	}

	return pl, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return lines, nil
}

// parseHeader splits "<ID> - <Title>" at the first " - ".
func parseHeader(s string) (id, name string, err error) {
	id, name, found := strings.Cut(s, " - ")
	if !found || id == "" {
		return "", "", fmt.Errorf("malformed page header %q", s)
	}
	return id, name, nil
}

// parseGlimpseBlock parses the fenced block starting after the opening
// fence at lines[start-1]. Returns the index of the closing fence.
func parseGlimpseBlock(lines []string, start int) (*types.Glimpse, int, error) {
	g := &types.Glimpse{}
	rowsSeen, colsSeen := false, false

	for i := start; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(line, "```") {
			if !rowsSeen || !colsSeen {
				return nil, 0, fmt.Errorf("glimpse block missing Rows or Columns")
			}
			return g, i, nil
		}

		switch {
		case strings.HasPrefix(line, "Rows: "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "Rows: "))
			if err != nil {
				return nil, 0, fmt.Errorf("malformed row count %q", line)
			}
			g.Rows = n
			rowsSeen = true

		case strings.HasPrefix(line, "Columns: "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "Columns: "))
			if err != nil {
				return nil, 0, fmt.Errorf("malformed column count %q", line)
			}
			g.Columns = n
			colsSeen = true

		case strings.HasPrefix(line, "$ "):
			parts := strings.SplitN(strings.TrimPrefix(line, "$ "), " ", 3)
			if len(parts) < 2 {
				return nil, 0, fmt.Errorf("malformed column line %q", line)
			}
			field := types.ColumnDescriptor{
				Name: parts[0],
				Type: types.ColumnType(parts[1]),
			}
			if len(parts) == 3 {
				field.Sample = parts[2]
			}
			g.Fields = append(g.Fields, field)
		}
	}

	return nil, 0, fmt.Errorf("unterminated glimpse block")
}

// tableRow is one "| label | value |" row.
type tableRow struct {
	Label string
	Value string
}

// parseTable parses consecutive table lines starting at lines[start],
// skipping the header and separator rows. Returns the index of the last
// table line.
func parseTable(lines []string, start int) ([]tableRow, int, error) {
	var rows []tableRow
	last := start

	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "|") {
			break
		}
		last = i

		cells := splitTableRow(line)
		if len(cells) != 2 {
			return nil, 0, fmt.Errorf("expected two table cells, got %d in %q", len(cells), line)
		}
		// Skip header and separator rows.
		if cells[0] == "Field" || strings.HasPrefix(cells[0], "---") {
			continue
		}
		rows = append(rows, tableRow{Label: cells[0], Value: cells[1]})
	}

	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("empty manifest table")
	}
	return rows, last, nil
}

func splitTableRow(line string) []string {
	trimmed := strings.Trim(line, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// checkLabels verifies the fixed row labels appear in the documented order.
func checkLabels(kind string, rows []tableRow, want []string) error {
	if len(rows) != len(want) {
		return fmt.Errorf("%s: expected %d rows, got %d", kind, len(want), len(rows))
	}
	for i, row := range rows {
		if row.Label != want[i] {
			return fmt.Errorf("%s: expected label %q at row %d, got %q", kind, want[i], i+1, row.Label)
		}
	}
	return nil
}

func applyDataframeManifest(df *types.Dataframe, rows []tableRow) error {
	if err := checkLabels("dataframe manifest", rows, DataframeManifestLabels); err != nil {
		return err
	}

	df.Name = rows[0].Value
	if df.ID == "" {
		df.ID = rows[1].Value
	} else if df.ID != rows[1].Value {
		return fmt.Errorf("header ID %q does not match manifest ID %q", df.ID, rows[1].Value)
	}
	df.Sources = splitListValue(rows[2].Value)
	df.Providers = splitListValue(rows[3].Value)
	df.ProviderLinks = splitListValue(rows[4].Value)
	df.TopicTags = splitListValue(rows[5].Value)
	df.AccessType = noneToEmpty(rows[6].Value)
	df.PullMethod = noneToEmpty(rows[7].Value)

	minDate, err := parseDateValue(rows[8].Value)
	if err != nil {
		return fmt.Errorf("min available date: %w", err)
	}
	df.MinDate = minDate

	maxDate, err := parseDateValue(rows[9].Value)
	if err != nil {
		return fmt.Errorf("max available date: %w", err)
	}
	df.MaxDate = maxDate

	df.Path = noneToEmpty(rows[10].Value)
	return nil
}

func pipelineFromManifest(rows []tableRow) (*types.Pipeline, error) {
	if err := checkLabels("pipeline manifest", rows, PipelineManifestLabels); err != nil {
		return nil, err
	}

	pl := &types.Pipeline{
		Name:            rows[0].Value,
		ID:              rows[1].Value,
		LeadDeveloper:   noneToEmpty(rows[2].Value),
		Contributors:    splitListValue(rows[3].Value),
		RepoURL:         noneToEmpty(rows[4].Value),
		WebPage:         noneToEmpty(rows[5].Value),
		OSCompatibility: noneToEmpty(rows[7].Value),
	}

	if v := noneToEmpty(rows[6].Value); v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("last code update: %w", err)
		}
		pl.LastCodeUpdate = t
	}

	// Linked dataframes are relative markdown links; keep the link text,
	// which is the dataframe ID.
	for _, m := range linkPattern.FindAllStringSubmatch(rows[8].Value, -1) {
		pl.DataframeIDs = append(pl.DataframeIDs, m[1])
	}

	return pl, nil
}

func splitListValue(v string) []string {
	v = noneToEmpty(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ", ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func noneToEmpty(v string) string {
	if v == "None" {
		return ""
	}
	return v
}

func parseDateValue(v string) (*time.Time, error) {
	v = noneToEmpty(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("malformed date %q", v)
	}
	return &t, nil
}

func appendMissing(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
