package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tutorec/internal/capture"
	"tutorec/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check platform support, capture tools, and storage paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			lines := make([]string, 0, 16)

			lines = append(lines, renderSectionHeader("Platform", colorize)...)
			platform, platformErr := capture.DetectPlatform()
			if platformErr != nil {
				lines = append(lines, renderStatusLine("Platform", statusError, platformErr.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Platform", statusOK, platform.String(), colorize))
			}

			var missing []string
			if platformErr == nil {
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
				statuses := deps.CheckBinaries(deps.Requirements(platform, cfg.FFmpegBinary()))
				lines = append(lines, dependencyLines(statuses, colorize)...)
				for _, status := range statuses {
					if !status.Available && !status.Optional {
						missing = append(missing, status.Name)
					}
				}
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Storage", colorize)...)
			lines = append(lines,
				renderStatusLine("Staging", pathKind(cfg.Paths.StagingDir), cfg.Paths.StagingDir, colorize),
				renderStatusLine("Projects", pathKind(cfg.Paths.ProjectsDir), cfg.Paths.ProjectsDir, colorize),
				renderStatusLine("Exports", pathKind(cfg.Paths.ExportDir), cfg.Paths.ExportDir, colorize),
				renderStatusLine("Library", pathKind(filepath.Dir(cfg.Paths.LibraryDB)), cfg.Paths.LibraryDB, colorize),
			)

			for _, line := range lines {
				fmt.Fprintln(stdout, line)
			}

			if platformErr != nil {
				return platformErr
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, "All checks passed")
			return nil
		},
	}
}
