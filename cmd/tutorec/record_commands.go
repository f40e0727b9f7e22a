package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tutorec/internal/config"
	"tutorec/internal/ipc"
	"tutorec/internal/media"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Control the recording session",
	}

	recordCmd.AddCommand(newRecordStartCommand(ctx))
	recordCmd.AddCommand(newRecordPauseCommand(ctx))
	recordCmd.AddCommand(newRecordResumeCommand(ctx))
	recordCmd.AddCommand(newRecordStopCommand(ctx))
	recordCmd.AddCommand(newRecordStatusCommand(ctx))

	return recordCmd
}

func newRecordStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start <project-file>",
		Short: "Start recording the streams a project file describes",
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
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordStart(ipc.RecordStartRequest{Project: project})
				if err != nil {
					return formatRPCError(err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recording %s\n", displayTitle(resp.Session.Project))
				fmt.Fprintf(out, "Staging folder: %s\n", resp.Session.Folder)
				for _, stream := range resp.Session.Streams {
					fmt.Fprintf(out, "  %s (pid %d)\n", stream.Name, stream.PID)
				}
				return nil
			})
		},
	}
}

func newRecordPauseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause every capture stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordPause()
				if err != nil {
					return formatRPCError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recording %s paused\n", displayTitle(resp.Session.Project))
				return nil
			})
		},
	}
}

func newRecordResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordResume()
				if err != nil {
					return formatRPCError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recording %s resumed\n", displayTitle(resp.Session.Project))
				return nil
			})
		},
	}
}

func newRecordStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the recording and finalize its files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordStop()
				if err != nil {
					return formatRPCError(err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recording stopped after %s\n", formatSeconds(resp.DurationSeconds))
				fmt.Fprintf(out, "Project folder: %s\n", resp.ProjectFolder)
				fmt.Fprintf(out, "Library entry: %d\n", resp.LibraryID)
				return nil
			})
		},
	}
}

func newRecordStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active recording session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Session)
				}
				out := cmd.OutOrStdout()
				if resp.Session == nil {
					fmt.Fprintln(out, "No active recording session")
					return nil
				}
				colorize := shouldColorize(out)
				for _, line := range sessionLines(resp.Session, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Pause events", statusInfo, fmt.Sprintf("%d", len(resp.Session.PauseEvents)), colorize))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the session as JSON")
	return cmd
}
