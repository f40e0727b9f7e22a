package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tutorec/internal/config"
	"tutorec/internal/media"
)

func newProjectCommand() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:         "project",
		Short:       "Create and inspect project files",
		Annotations: map[string]string{standaloneAnnotation: "true"},
	}

	projectCmd.AddCommand(newProjectInitCommand())
	projectCmd.AddCommand(newProjectShowCommand())
	projectCmd.AddCommand(newProjectValidateCommand())

	return projectCmd
}

func newProjectInitCommand() *cobra.Command {
	var (
		name      string
		audio     []string
		webcam    string
		screen    string
		area      string
		aspect    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write a project file describing the capture inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !overwrite {
				return fmt.Errorf("project file already exists at %s (use --overwrite to replace it)", path)
			}

			if strings.TrimSpace(name) == "" {
				base := filepath.Base(path)
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}

			project := media.ProjectConfig{Name: name}
			for _, device := range audio {
				project.AudioInputs = append(project.AudioInputs, media.AudioInput{DeviceName: device})
			}
			if strings.TrimSpace(webcam) != "" {
				project.VideoInputs = append(project.VideoInputs, media.VideoInput{
					DeviceName: webcam,
					SourceType: media.SourceWebcam,
				})
			}
			if strings.TrimSpace(screen) != "" {
				if strings.TrimSpace(area) == "" {
					return errors.New("--screen requires --area (for example --area 1920x1080+0+0)")
				}
				rect, err := parseScreenArea(area, aspect)
				if err != nil {
					return err
				}
				project.VideoInputs = append(project.VideoInputs, media.VideoInput{
					DeviceName: screen,
					SourceType: media.SourceScreen,
				})
				project.ScreenArea = rect
			}

			if err := media.SaveProject(project, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote project file %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Start recording with: tutorec record start %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the file name)")
	cmd.Flags().StringSliceVar(&audio, "audio", nil, "Audio input device identifier (repeatable)")
	cmd.Flags().StringVar(&webcam, "webcam", "", "Webcam device identifier")
	cmd.Flags().StringVar(&screen, "screen", "", "Screen source identifier")
	cmd.Flags().StringVar(&area, "area", "", "Screen capture rectangle as WIDTHxHEIGHT+X+Y")
	cmd.Flags().StringVar(&aspect, "aspect", string(media.Aspect16x9), "Aspect ratio tag for the screen area (16:9, 9:16, 4:3, 1:1, free)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing project file")

	return cmd
}

func newProjectShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a project file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			project, err := media.LoadProject(path)
			if err != nil {
				return err
			}
			return writeJSON(cmd, project)
		},
	}
}

func newProjectValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a project file without recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			project, err := media.LoadProject(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project file valid: %s (%d audio, %d video inputs)\n",
				displayTitle(project.Name), len(project.AudioInputs), len(project.VideoInputs))
			return nil
		},
	}
}
