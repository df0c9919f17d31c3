package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// orDash renders optional values in tables.
func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func matchRows(matches []domain.MatchResult) [][]string {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{m.Name, string(m.Category), orDash(m.Faction), formatConfidence(m.Confidence), string(m.Source)})
	}
	return rows
}

var matchHeaders = []string{"Name", "Category", "Faction", "Confidence", "Source"}
var matchAligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}

func printLine(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
