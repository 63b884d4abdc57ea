// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command navctl runs Navigator analysis from the command line, without
// the API server.
//
// Usage:
//
//	navctl analyze /path/to/repo
//	navctl analyze /path/to/repo --output report.json --workers 8
//	navctl analyze https://github.com/org/repo.git
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/navigator/services/navigator"
)

var (
	outputPath string
	workers    int
	extensions []string
	quiet      bool
)

func main() {
	root := &cobra.Command{
		Use:   "navctl",
		Short: "Structural code analysis for source repositories",
		Long: `navctl builds containment, control-flow and dependency graphs
for a source repository and writes a JSON analysis report.`,
		SilenceUsage: true,
	}

	analyze := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Analyze a local directory or remote git URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyze.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of stdout")
	analyze.Flags().IntVarP(&workers, "workers", "w", 0, "ingestion worker count (default from library)")
	analyze.Flags().StringSliceVar(&extensions, "extensions", nil, "source extensions to analyze (default library set)")
	analyze.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress logging")

	root.AddCommand(analyze)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runAnalyze executes one analysis session and emits the report.
func runAnalyze(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	var opts []navigator.Option
	if workers > 0 {
		opts = append(opts, navigator.WithWorkers(workers))
	}
	if len(extensions) > 0 {
		for i, ext := range extensions {
			if len(ext) > 0 && ext[0] != '.' {
				extensions[i] = "." + ext
			}
		}
		opts = append(opts, navigator.WithExtensions(extensions))
	}

	nav := navigator.New(opts...)
	report, err := nav.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analyze %s: %w", args[0], err)
	}

	if outputPath != "" {
		if err := report.Save(outputPath); err != nil {
			return err
		}
		slog.Info("report written", slog.String("path", outputPath))
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
