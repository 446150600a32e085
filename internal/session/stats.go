// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"io"
	"sort"

	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// CategoryCount is one observed free-text criterion value and how often it
// was recorded.
type CategoryCount struct {
	Value string
	Count int
}

// Stats are the descriptive statistics a session reports on completion or
// pause.
type Stats struct {
	Total      int
	Classified int
	Pending    int
	Included   int
	Excluded   int
	Uncertain  int

	// BoolCounts is the number of records marked true per boolean
	// criterion.
	BoolCounts map[string]int

	// TextTop holds the most frequent values per free-text criterion,
	// most frequent first.
	TextTop map[string][]CategoryCount
}

// Compute derives the statistics from a table. topN bounds the per-criterion
// frequency tables.
func Compute(t *table.Table, topN int) Stats {
	st := Stats{
		BoolCounts: make(map[string]int),
		TextTop:    make(map[string][]CategoryCount),
	}
	if t == nil {
		return st
	}
	sch := t.Schema()

	textCounts := make(map[string]map[string]int)
	for _, tc := range sch.TextCriteria {
		textCounts[tc.Name] = make(map[string]int)
	}

	for _, r := range t.Rows() {
		st.Total++
		switch r.Classification.Decision {
		case types.DecisionInclude:
			st.Classified++
			st.Included++
		case types.DecisionExclude:
			st.Classified++
			st.Excluded++
		case types.DecisionUncertain:
			st.Classified++
			st.Uncertain++
		default:
			st.Pending++
		}
		for _, name := range sch.BoolCriteria {
			if r.Classification.Bool[name] {
				st.BoolCounts[name]++
			}
		}
		for _, tc := range sch.TextCriteria {
			if v := r.Classification.Text[tc.Name]; v != "" {
				textCounts[tc.Name][v]++
			}
		}
	}

	for name, counts := range textCounts {
		top := make([]CategoryCount, 0, len(counts))
		for v, c := range counts {
			top = append(top, CategoryCount{Value: v, Count: c})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].Count != top[j].Count {
				return top[i].Count > top[j].Count
			}
			return top[i].Value < top[j].Value
		})
		if topN > 0 && len(top) > topN {
			top = top[:topN]
		}
		st.TextTop[name] = top
	}

	return st
}

// Print writes the statistics in the session's report format, criteria in
// schema order.
func (st Stats) Print(w io.Writer, sch schema.Schema) {
	fmt.Fprintln(w, "\n=== SCREENING STATISTICS ===")
	fmt.Fprintf(w, "Total records: %d\n", st.Total)
	if st.Total > 0 {
		fmt.Fprintf(w, "Classified: %d (%.1f%%)\n", st.Classified,
			float64(st.Classified)/float64(st.Total)*100)
	} else {
		fmt.Fprintf(w, "Classified: %d\n", st.Classified)
	}
	fmt.Fprintf(w, "Included: %d\n", st.Included)
	fmt.Fprintf(w, "Excluded: %d\n", st.Excluded)
	fmt.Fprintf(w, "Uncertain: %d\n", st.Uncertain)
	fmt.Fprintf(w, "Pending: %d\n", st.Pending)

	if len(sch.BoolCriteria) > 0 {
		fmt.Fprintln(w, "\n=== BOOLEAN CRITERIA ===")
		for _, name := range sch.BoolCriteria {
			fmt.Fprintf(w, "%s: %d records\n", name, st.BoolCounts[name])
		}
	}

	if len(sch.TextCriteria) > 0 {
		fmt.Fprintln(w, "\n=== MOST FREQUENT TEXT CATEGORIES ===")
		for _, tc := range sch.TextCriteria {
			fmt.Fprintf(w, "\n%s:\n", tc.Name)
			top := st.TextTop[tc.Name]
			if len(top) == 0 {
				fmt.Fprintln(w, "  (no data)")
				continue
			}
			for _, cc := range top {
				fmt.Fprintf(w, "  - %s: %d\n", cc.Value, cc.Count)
			}
		}
	}
}
