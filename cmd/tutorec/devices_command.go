package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tutorec/internal/capture"
	"tutorec/internal/devices"
	"tutorec/internal/ipc"
	"tutorec/internal/services"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio, webcam, and screen capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			inventory, err := deviceInventory(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, inventory)
			}

			rows := make([][]string, 0, len(inventory.AudioInputs)+len(inventory.VideoInputs)+1)
			for _, dev := range inventory.AudioInputs {
				rows = append(rows, []string{"audio", dev.ID, dev.Name})
			}
			for _, dev := range inventory.VideoInputs {
				rows = append(rows, []string{"webcam", dev.ID, dev.Name})
			}
			if inventory.Screen != nil {
				rows = append(rows, []string{"screen", inventory.Screen.ID, inventory.Screen.Name})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No capture devices found")
				return nil
			}
			table := renderTable([]string{"Type", "Identifier", "Name"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit devices as JSON")
	return cmd
}

// deviceInventory asks the daemon first, so listings share its hotplug
// cache, and enumerates directly when no daemon is running.
func deviceInventory(ctx context.Context, cctx *commandContext) (*ipc.DevicesResponse, error) {
	client, err := ipc.Dial(cctx.socketPath())
	if err == nil {
		defer client.Close()
		return client.Devices()
	}
	if !errors.Is(err, ipc.ErrDaemonNotRunning) {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}

	cfg, err := cctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	platform, err := capture.DetectPlatform()
	if err != nil {
		return nil, err
	}
	provider, err := devices.NewProvider(platform, cfg.FFmpegBinary())
	if err != nil {
		return nil, err
	}

	resp := &ipc.DevicesResponse{}
	if resp.AudioInputs, err = provider.AudioInputs(ctx); err != nil {
		return nil, err
	}
	if resp.VideoInputs, err = provider.VideoInputs(ctx); err != nil {
		return nil, err
	}
	screen, err := provider.ScreenSource(ctx)
	switch {
	case err == nil:
		resp.Screen = &screen
	case errors.Is(err, services.ErrNotFound):
	default:
		return nil, err
	}
	return resp, nil
}
