package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/finance"
	"github.com/MrJamesThe3rd/tally/internal/project"
)

func TestRecomputeTargets(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name    string
		args    []string
		all     bool
		want    []uuid.UUID
		wantErr string
	}

	tests := []testCase{
		{name: "SingleProject", args: []string{id.String()}, want: []uuid.UUID{id}},
		{name: "All", all: true},
		{name: "Nothing", wantErr: "project id or --all required"},
		{name: "Both", args: []string{id.String()}, all: true, wantErr: "pass either a project id or --all, not both"},
		{name: "InvalidID", args: []string{"x"}, wantErr: `invalid project id "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recomputeTargets(tt.args, tt.all)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1234.56", formatCents(123456))
	assert.Equal(t, "-0.05", formatCents(-5))
	assert.Equal(t, "0.00", formatCents(0))

	assert.Equal(t, "n/a", formatPercent(nil))
	assert.Equal(t, "12.35%", formatPercent(new(12.345)))
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer

	c := &cobra.Command{}
	c.SetOut(&out)

	s := &project.Summary{
		InvoiceCount: 2,
		InvoiceTotal: 50000,
		Summary: finance.Compute(finance.Financials{
			PlannedBudget: 100000,
			ActualBudget:  120000,
		}, []int64{30000, 20000}),
	}

	require.NoError(t, printSummary(c, s))

	text := out.String()
	assert.Contains(t, text, "Total spent")
	assert.Contains(t, text, "500.00")
	assert.Contains(t, text, "20.00%")
	assert.Contains(t, text, "n/a")
}

func TestPrintSummaryJSON(t *testing.T) {
	var out bytes.Buffer

	c := &cobra.Command{}
	c.SetOut(&out)

	id := uuid.New()
	s := &project.Summary{
		ProjectID:    id,
		InvoiceCount: 2,
		InvoiceTotal: 50000,
		Summary: finance.Compute(finance.Financials{
			PlannedBudget: 100000,
			ActualBudget:  120000,
		}, []int64{30000, 20000}),
	}

	require.NoError(t, printSummaryJSON(c, s))

	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))

	assert.Equal(t, id.String(), body["project_id"])
	assert.InDelta(t, 2, body["invoice_count"], 0)
	assert.InDelta(t, 50000, body["total_spent"], 0)
	assert.InDelta(t, 20, body["budget_variance_percent"], 0.001)
	assert.Contains(t, body, "revenue_variance_percent")
	assert.Nil(t, body["revenue_variance_percent"])
	assert.NotContains(t, body, "TotalSpent")
}
