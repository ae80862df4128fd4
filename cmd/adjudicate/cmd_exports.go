package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/adjudicate/internal/artifact"
)

type exportEntry struct {
	File        string `json:"file"`
	State       string `json:"state,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	Adjudicated int    `json:"adjudicated,omitempty"`
	Error       string `json:"error,omitempty"`
}

func newExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: "List past exports and verify their summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store := artifact.NewStore(cfg.ExportDir())
			names, err := store.List()
			if err != nil {
				return fmt.Errorf("list exports: %w", err)
			}

			entries := make([]exportEntry, 0, len(names))
			invalid := 0
			for _, name := range names {
				entry := exportEntry{File: name}
				if strings.HasSuffix(name, ".md") {
					res, _ := store.CheckSummary(filepath.Join(store.Dir(), name))
					entry.State = string(res.State)
					if res.Metadata != nil {
						entry.SessionID = res.Metadata.SessionID
						entry.Adjudicated = res.Metadata.Adjudicated
					}
					if res.Err != nil {
						entry.Error = res.Err.Error()
						invalid++
					}
				}
				entries = append(entries, entry)
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				if err := writeJSON(out, entries); err != nil {
					return err
				}
			} else if len(entries) == 0 {
				fmt.Fprintf(out, "No exports in %s\n", store.Dir())
			} else {
				fmt.Fprintf(out, "Exports in %s\n", store.Dir())
				for _, e := range entries {
					switch {
					case e.State == "":
						fmt.Fprintf(out, "  %s\n", e.File)
					case e.Error != "":
						fmt.Fprintf(out, "  %s  [%s] %s\n", e.File, e.State, e.Error)
					default:
						fmt.Fprintf(out, "  %s  [%s] %d decisions · session %s\n", e.File, e.State, e.Adjudicated, e.SessionID)
					}
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d summary file(s) failed verification", invalid)
			}
			return nil
		},
	}
}
