package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tutorec/internal/fileutil"
	"tutorec/internal/ipc"
	"tutorec/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the recording catalog",
	}

	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryRemoveCommand(ctx))

	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(client *ipc.Client, store *library.Store) error {
				var entries []ipc.LibraryEntry
				if client != nil {
					resp, err := client.LibraryList()
					if err != nil {
						return formatRPCError(err)
					}
					entries = resp.Entries
				} else {
					recs, err := store.List(cmd.Context())
					if err != nil {
						return err
					}
					entries = make([]ipc.LibraryEntry, 0, len(recs))
					for _, rec := range recs {
						entries = append(entries, ipc.LibraryEntry{
							ID:           rec.ID,
							ProjectName:  rec.ProjectName,
							Folder:       rec.Folder,
							StartedAt:    rec.StartedAt,
							StoppedAt:    rec.StoppedAt,
							Streams:      rec.Streams,
							Status:       string(rec.Status),
							ExportPath:   rec.ExportPath,
							ExportLayout: rec.ExportLayout,
							CreatedAt:    rec.CreatedAt,
						})
					}
				}

				if asJSON {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Project", "Status", "Duration", "Size", "Recorded", "Layout"},
					buildLibraryRows(entries),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit entries as JSON")
	return cmd
}

// buildLibraryRows shapes catalog entries for table display. Sizes come from
// walking each project folder; entries whose folder is gone show "-".
func buildLibraryRows(entries []ipc.LibraryEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		size := "-"
		if total, err := fileutil.DirSize(entry.Folder); err == nil {
			size = humanize.Bytes(uint64(total))
		}
		layout := entry.ExportLayout
		if layout == "" {
			layout = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			displayTitle(entry.ProjectName),
			entry.Status,
			formatClock(entry.StoppedAt.Sub(entry.StartedAt)),
			size,
			humanize.Time(entry.StartedAt),
			layout,
		})
	}
	return rows
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid library id %q", args[0])
			}
			return ctx.withLibrary(func(client *ipc.Client, store *library.Store) error {
				var removed bool
				if client != nil {
					resp, err := client.LibraryRemove(id)
					if err != nil {
						return formatRPCError(err)
					}
					removed = resp.Removed
				} else {
					ok, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					removed = ok
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Entry %d not found\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d\n", id)
				return nil
			})
		},
	}
}
