package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tutorec/internal/capture"
	"tutorec/internal/daemonctl"
	"tutorec/internal/daemonrun"
	"tutorec/internal/deps"
	"tutorec/internal/export"
	"tutorec/internal/ipc"
	"tutorec/internal/recording"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the recording daemon",
	}

	daemonCmd.AddCommand(newDaemonRunCommand(ctx))
	daemonCmd.AddCommand(newDaemonStartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	daemonCmd.AddCommand(newDaemonRestartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))

	return daemonCmd
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the daemon in the foreground",
		Annotations:  map[string]string{standaloneAnnotation: "true"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			level := cfg.Logging.Level
			if strings.TrimSpace(logLevel) != "" {
				level = logLevel
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: level,
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the tutorec daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the tutorec daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, ipc.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			} else {
				fmt.Fprintln(stdout, "Stopping daemon...")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}
}

func newDaemonRestartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the tutorec daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			switch result.Start.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			}
			return nil
		},
	}
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, session, and export status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ipc.Dial(ctx.socketPath())
			if err != nil {
				if !errors.Is(err, ipc.ErrDaemonNotRunning) {
					return fmt.Errorf("connect to daemon: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, &ipc.StatusResponse{})
				}
				return renderOfflineStatus(cmd, ctx)
			}
			defer client.Close()

			status, err := client.Status()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			return renderDaemonStatus(cmd, ctx, status)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}

func renderDaemonStatus(cmd *cobra.Command, ctx *commandContext, status *ipc.StatusResponse) error {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Status", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Platform", statusInfo, status.Platform, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, ctx.socketPath(), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Hotplug", statusInfo, yesNo(status.Hotplug), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Library", statusInfo, status.LibraryDBPath, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Log file", statusInfo, status.LogPath, colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Session", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range sessionLines(status.Session, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Export", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range exportLines(status.Export, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	cfg := ctx.configValue()
	ffmpeg := ""
	if cfg != nil {
		ffmpeg = cfg.FFmpegBinary()
	}
	statuses := deps.CheckBinaries(deps.Requirements(capture.Platform(status.Platform), ffmpeg))
	for _, line := range dependencyLines(statuses, colorize) {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func renderOfflineStatus(cmd *cobra.Command, ctx *commandContext) error {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Status", statusWarn, "Not running (start it with `tutorec daemon start`)", colorize))
	fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, ctx.socketPath(), colorize))

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, renderStatusLine("Library", statusInfo, cfg.Paths.LibraryDB, colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	platform, err := capture.DetectPlatform()
	if err != nil {
		fmt.Fprintln(stdout, renderStatusLine("Platform", statusError, err.Error(), colorize))
		return nil
	}
	statuses := deps.CheckBinaries(deps.Requirements(platform, cfg.FFmpegBinary()))
	for _, line := range dependencyLines(statuses, colorize) {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func sessionLines(session *ipc.SessionStatus, colorize bool) []string {
	if session == nil {
		return []string{renderStatusLine("Recording", statusInfo, "No active session", colorize)}
	}
	kind := statusOK
	if session.State == string(recording.StatePaused) {
		kind = statusWarn
	}
	names := make([]string, 0, len(session.Streams))
	for _, stream := range session.Streams {
		names = append(names, stream.Name)
	}
	return []string{
		renderStatusLine("Recording", kind, session.State, colorize),
		renderStatusLine("Project", statusInfo, displayTitle(session.Project), colorize),
		renderStatusLine("Started", statusInfo, humanize.Time(session.StartedAt), colorize),
		renderStatusLine("Folder", statusInfo, session.Folder, colorize),
		renderStatusLine("Streams", statusInfo, strings.Join(names, ", "), colorize),
	}
}

func exportLines(task *ipc.ExportStatus, colorize bool) []string {
	if task == nil {
		return []string{renderStatusLine("Task", statusInfo, "No export has run", colorize)}
	}
	kind := statusInfo
	detail := task.State
	switch task.State {
	case string(export.TaskRunning):
		detail = fmt.Sprintf("running (%d%%)", task.Percent)
	case string(export.TaskSucceeded):
		kind = statusOK
		detail = fmt.Sprintf("succeeded: %s", task.OutputPath)
	case string(export.TaskFailed):
		kind = statusError
		if task.Error != "" {
			detail = fmt.Sprintf("failed: %s", task.Error)
		}
	case string(export.TaskCanceled):
		kind = statusWarn
	}
	return []string{
		renderStatusLine("Task", kind, detail, colorize),
		renderStatusLine("Layout", statusInfo, task.Layout, colorize),
		renderStatusLine("Folder", statusInfo, task.Folder, colorize),
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusError, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
