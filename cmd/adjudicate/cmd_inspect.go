package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/adjudicate/internal/adjudication"
	"github.com/kingrea/adjudicate/internal/labels"
)

type validateReport struct {
	File    string   `json:"file"`
	Valid   bool     `json:"valid"`
	Records int      `json:"records"`
	Missing []string `json:"missing,omitempty"`
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a file has every required annotator column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			records, err := readRecords(path)
			report := validateReport{File: filepath.Base(path), Records: len(records)}
			var validation *adjudication.ValidationError
			switch {
			case err == nil:
				report.Valid = true
			case errors.As(err, &validation):
				report.Missing = validation.Missing
			default:
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else if report.Valid {
				fmt.Fprintf(out, "✅ %s: %d records ready for adjudication\n", report.File, report.Records)
			} else {
				fmt.Fprintf(out, "❌ %s: Missing required columns: %s\n", report.File, strings.Join(report.Missing, ", "))
			}
			if !report.Valid {
				return fmt.Errorf("%s is missing %d required column(s)", report.File, len(report.Missing))
			}
			return nil
		},
	}
}

type dimensionAgreement struct {
	Dimension labels.Dimension `json:"dimension"`
	Agree     int              `json:"agree"`
	Rate      float64          `json:"rate"`
}

type summaryReport struct {
	File          string               `json:"file"`
	Total         int                  `json:"total"`
	FullAgreement int                  `json:"full_agreement"`
	Agreement     []dimensionAgreement `json:"agreement"`
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary FILE",
		Short: "Report how often the two annotators agree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			records, err := readRecords(path)
			if err != nil {
				return err
			}
			sum := adjudication.Summarize(records, nil)
			report := summaryReport{
				File:          filepath.Base(path),
				Total:         sum.Total,
				FullAgreement: sum.FullAgreement,
			}
			for _, d := range labels.Dimensions {
				report.Agreement = append(report.Agreement, dimensionAgreement{
					Dimension: d,
					Agree:     sum.Agreement[d],
					Rate:      sum.AgreementRate(d),
				})
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return writeJSON(out, report)
			}
			fmt.Fprintf(out, "%s: %d records\n\n", report.File, report.Total)
			for _, a := range report.Agreement {
				fmt.Fprintf(out, "  %-13s %4d/%-4d %5.1f%%\n", a.Dimension.FriendlyName(), a.Agree, report.Total, 100*a.Rate)
			}
			fmt.Fprintf(out, "\n  %-13s %4d/%-4d\n", "All four", report.FullAgreement, report.Total)
			return nil
		},
	}
}

func readRecords(path string) ([]adjudication.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	table, err := adjudication.Parse(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	return adjudication.Validate(table)
}
