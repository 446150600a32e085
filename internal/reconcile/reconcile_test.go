package reconcile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// --- test helpers ---

func decidedTable(t *testing.T, decisions map[string]types.Decision, order []string) *table.Table {
	t.Helper()
	sch, err := schema.ForPhase(schema.PhaseFullText)
	require.NoError(t, err)

	records := make([]types.Record, 0, len(order))
	for _, id := range order {
		records = append(records, types.Record{ID: id, Title: "Title " + id})
	}
	tbl, err := table.New(sch, records)
	require.NoError(t, err)
	for id, d := range decisions {
		require.NoError(t, tbl.SetClassification(id, table.Classification{Decision: d}))
	}
	return tbl
}

func writeFile(t *testing.T, path, content string) error {
	t.Helper()
	return os.WriteFile(path, []byte(content), 0o644)
}

// --- kappa tests ---

func TestKappa(t *testing.T) {
	inc := types.DecisionInclude
	exc := types.DecisionExclude
	unc := types.DecisionUncertain

	tests := []struct {
		name string
		a, b []types.Decision
		want float64
	}{
		{"empty input", nil, nil, 0},
		{"perfect agreement", []types.Decision{inc, exc, unc}, []types.Decision{inc, exc, unc}, 1},
		{"both constant same", []types.Decision{inc, inc}, []types.Decision{inc, inc}, 1},
		{"total disagreement two categories",
			[]types.Decision{inc, exc}, []types.Decision{exc, inc}, -1},
		{"chance-level agreement",
			[]types.Decision{inc, inc, exc, exc}, []types.Decision{inc, exc, inc, exc}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kappa(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestKappaRange(t *testing.T) {
	// A mixed vector pair stays within [-1, 1].
	a := []types.Decision{types.DecisionInclude, types.DecisionInclude, types.DecisionExclude, types.DecisionUncertain}
	b := []types.Decision{types.DecisionInclude, types.DecisionExclude, types.DecisionExclude, types.DecisionExclude}
	k := kappa(a, b)
	assert.False(t, math.IsNaN(k))
	assert.GreaterOrEqual(t, k, -1.0)
	assert.LessOrEqual(t, k, 1.0)
}

func TestInterpret(t *testing.T) {
	assert.Equal(t, "worse than chance", Interpret(-0.2))
	assert.Equal(t, "slight agreement", Interpret(0.1))
	assert.Equal(t, "fair agreement", Interpret(0.3))
	assert.Equal(t, "moderate agreement", Interpret(0.5))
	assert.Equal(t, "substantial agreement", Interpret(0.7))
	assert.Equal(t, "almost perfect agreement", Interpret(0.95))
}

// --- pairing tests ---

func TestAgreementDisjointTablesIsZero(t *testing.T) {
	a := decidedTable(t, map[string]types.Decision{"a-1": types.DecisionInclude}, []string{"a-1"})
	b := decidedTable(t, map[string]types.Decision{"b-1": types.DecisionInclude}, []string{"b-1"})
	assert.Equal(t, 0.0, Agreement(a, b))
}

func TestPairsSkipUndecided(t *testing.T) {
	order := []string{"rec-1", "rec-2", "rec-3"}
	a := decidedTable(t, map[string]types.Decision{
		"rec-1": types.DecisionInclude,
		"rec-2": types.DecisionExclude,
	}, order)
	b := decidedTable(t, map[string]types.Decision{
		"rec-1": types.DecisionInclude,
		"rec-3": types.DecisionExclude,
	}, order)

	ps := pairs(a, b)
	require.Len(t, ps, 1)
	assert.Equal(t, "rec-1", ps[0].ID)
}

func TestDiscrepancies(t *testing.T) {
	order := []string{"rec-1", "rec-2", "rec-3"}
	a := decidedTable(t, map[string]types.Decision{
		"rec-1": types.DecisionInclude,
		"rec-2": types.DecisionExclude,
		"rec-3": types.DecisionInclude,
	}, order)
	b := decidedTable(t, map[string]types.Decision{
		"rec-1": types.DecisionInclude,
		"rec-2": types.DecisionInclude,
		"rec-3": types.DecisionUncertain,
	}, order)

	ds := Discrepancies(a, b)
	require.Len(t, ds, 2)
	assert.Equal(t, "rec-2", ds[0].ID)
	assert.Equal(t, "rec-3", ds[1].ID)
	assert.Equal(t, types.DecisionExclude, ds[0].A)
	assert.Equal(t, types.DecisionInclude, ds[0].B)
}

// --- merge tests ---

func TestMergeAgreementsOnly(t *testing.T) {
	order := []string{"rec-1", "rec-2"}
	decisions := map[string]types.Decision{
		"rec-1": types.DecisionInclude,
		"rec-2": types.DecisionExclude,
	}
	a := decidedTable(t, decisions, order)
	b := decidedTable(t, decisions, order)

	finals, err := Merge(a, b, nil)
	require.NoError(t, err)
	require.Len(t, finals, 2)
	for _, f := range finals {
		assert.Equal(t, SourceAgreement, f.Source)
		assert.Equal(t, decisions[f.ID], f.Decision)
	}
}

func TestMergeUnresolvedDiscrepancyFails(t *testing.T) {
	order := []string{"rec-1"}
	a := decidedTable(t, map[string]types.Decision{"rec-1": types.DecisionInclude}, order)
	b := decidedTable(t, map[string]types.Decision{"rec-1": types.DecisionExclude}, order)

	_, err := Merge(a, b, Resolve(Discrepancies(a, b)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no adjudicated decision")
}

func TestAdjudicateUnknownID(t *testing.T) {
	resolutions := []Resolution{{Pair: Pair{ID: "rec-1"}}}
	_, err := Adjudicate(resolutions, map[string]Adjudication{
		"rec-9": {Decision: types.DecisionInclude},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rec-9")
}

func TestAdjudicateInvalidDecision(t *testing.T) {
	resolutions := []Resolution{{Pair: Pair{ID: "rec-1"}}}
	_, err := Adjudicate(resolutions, map[string]Adjudication{
		"rec-1": {Decision: types.DecisionUnset},
	})
	require.Error(t, err)
}

// End-to-end over three records: one agreement, one adjudicated discrepancy,
// and one record only one reviewer decided.
func TestReconcileEndToEnd(t *testing.T) {
	order := []string{"rec-1", "rec-2", "rec-3"}
	a := decidedTable(t, map[string]types.Decision{
		"rec-1": types.DecisionInclude,
		"rec-2": types.DecisionExclude,
	}, order)
	b := decidedTable(t, map[string]types.Decision{
		"rec-1": types.DecisionInclude,
		"rec-2": types.DecisionInclude,
		"rec-3": types.DecisionExclude,
	}, order)

	resolutions := Resolve(Discrepancies(a, b))
	require.Len(t, resolutions, 1)

	resolutions, err := Adjudicate(resolutions, map[string]Adjudication{
		"rec-2": {Decision: types.DecisionExclude, Reason: "wrong study design"},
	})
	require.NoError(t, err)

	finals, err := Merge(a, b, resolutions)
	require.NoError(t, err)
	require.Len(t, finals, 2)

	assert.Equal(t, Final{ID: "rec-1", Decision: types.DecisionInclude, Source: SourceAgreement}, finals[0])
	assert.Equal(t, Final{
		ID: "rec-2", Decision: types.DecisionExclude,
		Source: SourceAdjudication, Reason: "wrong study design",
	}, finals[1])

	// Each identifier appears exactly once.
	seen := map[string]int{}
	for _, f := range finals {
		seen[f.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "record %s appears %d times", id, n)
	}
}

// --- file round-trip tests ---

func TestFinalsRoundTrip(t *testing.T) {
	finals := []Final{
		{ID: "rec-1", Decision: types.DecisionInclude, Source: SourceAgreement},
		{ID: "rec-2", Decision: types.DecisionExclude, Source: SourceAdjudication, Reason: "out of scope"},
	}
	path := filepath.Join(t.TempDir(), "merged", "fulltext_final.csv")
	require.NoError(t, WriteFinals(finals, path))

	loaded, err := ReadFinals(path)
	require.NoError(t, err)
	assert.Equal(t, finals, loaded)
}

func TestReadAdjudications(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adjudications.csv")
	content := "id;decision;reason\nrec-2;exclude;wrong design\nrec-5;include;\n"
	require.NoError(t, writeFile(t, path, content))

	adj, err := ReadAdjudications(path)
	require.NoError(t, err)
	require.Len(t, adj, 2)
	assert.Equal(t, Adjudication{Decision: types.DecisionExclude, Reason: "wrong design"}, adj["rec-2"])
	assert.Equal(t, Adjudication{Decision: types.DecisionInclude}, adj["rec-5"])
}

func TestReadAdjudicationsMissingDecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adjudications.csv")
	content := "ID;DECISION\nrec-1;\n"
	require.NoError(t, writeFile(t, path, content))

	_, err := ReadAdjudications(path)
	require.Error(t, err)
}
