package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"tutorec/internal/export"
	"tutorec/internal/fileutil"
	"tutorec/internal/ipc"
	"tutorec/internal/media"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var layoutFlag string
	var openAfter bool

	exportCmd := &cobra.Command{
		Use:   "export <folder | library-id>",
		Short: "Merge a recorded project folder into a single video",
		Long: `Merge the screen, webcam, and microphone files of a recorded project
folder into one video. The folder argument accepts a path or the numeric
id of a library entry; run "tutorec layouts" for the available
arrangements.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if strings.TrimSpace(layoutFlag) == "" {
				return errors.New("--layout is required; run `tutorec layouts` for the options")
			}
			layout, err := media.ParseLayout(layoutFlag)
			if err != nil {
				return err
			}
			folder, err := resolveExportFolder(ctx, args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExportStart(folder, string(layout))
				if err != nil {
					return formatRPCError(err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Merging %s with the %s layout\n", folder, layout)

				task, err := awaitExport(cmd.Context(), client, resp.Task.ID, out)
				if err != nil {
					return err
				}
				switch task.State {
				case string(export.TaskSucceeded):
					fmt.Fprintf(out, "Export complete: %s\n", task.OutputPath)
				case string(export.TaskCanceled):
					return errors.New("export canceled")
				default:
					if task.Error != "" {
						return errors.New(task.Error)
					}
					return fmt.Errorf("export ended in state %s", task.State)
				}

				if openAfter {
					if err := fileutil.OpenInFileManager(folder); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warn: open folder: %v\n", err)
					}
				}
				return nil
			})
		},
	}

	exportCmd.Flags().StringVarP(&layoutFlag, "layout", "l", "", "Compositing layout (see `tutorec layouts`)")
	exportCmd.Flags().BoolVar(&openAfter, "open", false, "Reveal the folder in the file manager when done")

	exportCmd.AddCommand(newExportStatusCommand(ctx))
	exportCmd.AddCommand(newExportCancelCommand(ctx))

	return exportCmd
}

// awaitExport polls the daemon until the task settles, driving a terminal
// progress bar from the ffmpeg progress percentage.
func awaitExport(ctx context.Context, client *ipc.Client, taskID string, out io.Writer) (ipc.ExportStatus, error) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("compositing"),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		resp, err := client.ExportStatus()
		if err != nil {
			return ipc.ExportStatus{}, err
		}
		if task := resp.Task; task != nil && task.ID == taskID {
			_ = bar.Set(task.Percent)
			if task.State != string(export.TaskRunning) {
				_ = bar.Finish()
				return *task, nil
			}
		}
		select {
		case <-ctx.Done():
			return ipc.ExportStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newExportStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the most recent export task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExportStatus()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Task)
				}
				out := cmd.OutOrStdout()
				if resp.Task == nil {
					fmt.Fprintln(out, "No export has run")
					return nil
				}
				colorize := shouldColorize(out)
				for _, line := range exportLines(resp.Task, colorize) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the task as JSON")
	return cmd
}

func newExportCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the running export",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExportCancel()
				if err != nil {
					return formatRPCError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Export canceled (%s)\n", resp.Task.Folder)
				return nil
			})
		},
	}
}
