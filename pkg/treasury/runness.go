package treasury

import (
	"sort"
	"time"
)

// IssueInfo describes one auctioned security, the input to run-number
// assignment.
type IssueInfo struct {
	CUSIP            string
	IssueDate        time.Time
	MaturityDate     time.Time
	Type             string
	OriginalMaturity int
}

// RunRecord assigns a run ordinal to a security on one date: run 0 is the
// most recently issued live security of its term (on-the-run), run 1 the
// first off-the-run, and so on.
type RunRecord struct {
	Date             time.Time
	Run              int
	OriginalMaturity int
	Type             string
	CUSIP            string
}

// ComputeRuns assigns run ordinals for every business day between
// startDate and the latest maturity (capped at today). Securities are
// grouped by type and original maturity; within a group, live issues are
// ranked by descending issue date.
func ComputeRuns(issues []IssueInfo, startDate time.Time) []RunRecord {
	if len(issues) == 0 {
		return nil
	}

	// Deduplicate by CUSIP, keeping the earliest record.
	first := make(map[string]IssueInfo)
	for _, iss := range issues {
		existing, ok := first[iss.CUSIP]
		if !ok || iss.IssueDate.Before(existing.IssueDate) {
			first[iss.CUSIP] = iss
		}
	}

	groups := make(map[groupKey][]IssueInfo)
	minIssue, maxMaturity := time.Time{}, time.Time{}
	for _, iss := range first {
		key := groupKey{Type: iss.Type, OriginalMaturity: iss.OriginalMaturity}
		groups[key] = append(groups[key], iss)

		if minIssue.IsZero() || iss.IssueDate.Before(minIssue) {
			minIssue = iss.IssueDate
		}
		if iss.MaturityDate.After(maxMaturity) {
			maxMaturity = iss.MaturityDate
		}
	}

	// Newest issue first within each group.
	for key := range groups {
		group := groups[key]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].IssueDate.Equal(group[j].IssueDate) {
				return group[i].IssueDate.After(group[j].IssueDate)
			}
			return group[i].CUSIP < group[j].CUSIP
		})
	}

	if startDate.Before(minIssue) {
		startDate = minIssue
	}
	lastDay := maxMaturity
	if today := time.Now().UTC().Truncate(24 * time.Hour); today.Before(lastDay) {
		lastDay = today
	}

	var out []RunRecord
	for d := startDate; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}

		for _, key := range sortedKeys(groups) {
			run := 0
			for _, iss := range groups[key] {
				if iss.IssueDate.After(d) || d.After(iss.MaturityDate) {
					continue
				}
				out = append(out, RunRecord{
					Date:             d,
					Run:              run,
					OriginalMaturity: key.OriginalMaturity,
					Type:             key.Type,
					CUSIP:            iss.CUSIP,
				})
				run++
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Run != out[j].Run {
			return out[i].Run < out[j].Run
		}
		if out[i].OriginalMaturity != out[j].OriginalMaturity {
			return out[i].OriginalMaturity < out[j].OriginalMaturity
		}
		return out[i].Type < out[j].Type
	})

	return out
}

type groupKey struct {
	Type             string
	OriginalMaturity int
}

func sortedKeys(groups map[groupKey][]IssueInfo) []groupKey {
	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].OriginalMaturity < keys[j].OriginalMaturity
	})
	return keys
}
