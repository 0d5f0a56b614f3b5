package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/payfirst/internal/health"
	"github.com/Dan9191/payfirst/internal/models"
)

func TestParseHistory(t *testing.T) {
	got, err := parseHistory(" 40000, 42000 ,0")
	require.NoError(t, err)
	assert.Equal(t, []float64{40000, 42000, 0}, got)

	got, err = parseHistory("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseHistory("40000,lots")
	assert.Error(t, err)
}

func TestScoreCmd_Flags(t *testing.T) {
	var out bytes.Buffer
	cmd := newScoreCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--income", "100000", "--expense", "40000", "--history", "40000,42000,45000",
		"--liquid", "300000", "--emi", "10000", "--outstanding", "20000", "--limit", "200000",
		"--breakdown",
	})
	require.NoError(t, cmd.Execute())

	var report models.HealthReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 90.0, report.FinalScore)
	assert.Equal(t, health.StatusExcellent, report.Status)
	assert.False(t, report.NarrativeAvailable)
	assert.Equal(t, models.FallbackSummary, report.Narrative.Summary)
	require.NotNil(t, report.Breakdown)
	require.NotNil(t, report.Input)
	assert.Len(t, report.Input.Last3MonthsExpenses, 3)
}

func TestScoreCmd_FileFromStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := newScoreCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`{"monthly_income":50000,"monthly_expense":10000,"last_3_months_expenses":[],
		"liquid_assets":100000,"total_monthly_emi":0,"total_credit_outstanding":0,"total_credit_limit":0}`))
	cmd.SetArgs([]string{"--file", "-"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `"runway_unbounded": false`)
	assert.NotContains(t, out.String(), `"breakdown"`)
}

func TestScoreCmd_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		wantMsg string
	}{
		{
			name:    "negative income",
			args:    []string{"--income=-1", "--expense=0", "--liquid=0", "--emi=0", "--outstanding=0", "--limit=0"},
			wantMsg: "monthly_income",
		},
		{
			name:    "flag left out",
			args:    []string{"--income=1000", "--expense=0", "--liquid=0", "--emi=0", "--outstanding=0"},
			wantMsg: "--limit is required",
		},
		{
			name:    "file field missing",
			args:    []string{"--file", "-"},
			stdin:   `{"monthly_income":1000,"monthly_expense":0,"liquid_assets":0,"total_monthly_emi":0,"total_credit_outstanding":0}`,
			wantMsg: "total_credit_limit is required",
		},
		{
			name:    "file null history entry",
			args:    []string{"--file", "-"},
			stdin:   `{"monthly_income":1000,"monthly_expense":0,"last_3_months_expenses":[null,500],"liquid_assets":0,"total_monthly_emi":0,"total_credit_outstanding":0,"total_credit_limit":0}`,
			wantMsg: "last_3_months_expenses[0] is null",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newScoreCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetIn(strings.NewReader(tc.stdin))
			cmd.SetArgs(tc.args)

			err := cmd.Execute()
			assert.ErrorIs(t, err, health.ErrInvalidInput)
			assert.ErrorContains(t, err, tc.wantMsg)
			assert.NotContains(t, out.String(), "final_score")
		})
	}
}

func TestRunScore_NoSpendingHistory(t *testing.T) {
	var out bytes.Buffer
	in := health.Input{MonthlyIncome: 1000, LiquidAssets: 500, Last3MonthsExpenses: []float64{}}
	require.NoError(t, runScore(&out, in, false, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))

	var report models.HealthReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.NotNil(t, report.Metrics.CashRunwayMonths)
	assert.Equal(t, 500.0, *report.Metrics.CashRunwayMonths)
	assert.False(t, report.Metrics.RunwayUnbounded)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), report.GeneratedAt.UTC())
}
