package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tutorec/internal/config"
	"tutorec/internal/ipc"
	"tutorec/internal/library"
	"tutorec/internal/media"
)

// formatRPCError strips the taxonomy prefix the daemon attaches to method
// errors so commands print just the human-readable part.
func formatRPCError(err error) error {
	if err == nil {
		return nil
	}
	kind, message := ipc.SplitErrorKind(err)
	if kind == "" {
		return err
	}
	return errors.New(message)
}

// displayTitle renders a stored project name for humans: separator runs
// collapse to single spaces and words are title-cased.
func displayTitle(name string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return name
	}
	return cases.Title(language.Und).String(title)
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}

// formatClock renders a duration as m:ss, or h:mm:ss past the hour mark.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// parseScreenArea parses the WIDTHxHEIGHT+X+Y geometry notation selection
// tools print, pairing it with the given aspect tag.
func parseScreenArea(area, aspect string) (*media.ScreenArea, error) {
	trimmed := strings.TrimSpace(area)
	size, offsets, ok := strings.Cut(trimmed, "+")
	if !ok {
		return nil, fmt.Errorf("screen area %q must look like WIDTHxHEIGHT+X+Y", area)
	}
	widthStr, heightStr, ok := strings.Cut(size, "x")
	if !ok {
		return nil, fmt.Errorf("screen area %q must look like WIDTHxHEIGHT+X+Y", area)
	}
	xStr, yStr, ok := strings.Cut(offsets, "+")
	if !ok {
		return nil, fmt.Errorf("screen area %q must look like WIDTHxHEIGHT+X+Y", area)
	}

	parse := func(field, value string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("screen area %s %q is not a number", field, value)
		}
		return n, nil
	}
	width, err := parse("width", widthStr)
	if err != nil {
		return nil, err
	}
	height, err := parse("height", heightStr)
	if err != nil {
		return nil, err
	}
	x, err := parse("x offset", xStr)
	if err != nil {
		return nil, err
	}
	y, err := parse("y offset", yStr)
	if err != nil {
		return nil, err
	}

	rect := &media.ScreenArea{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		AspectRatio: media.AspectRatio(strings.TrimSpace(aspect)),
	}
	if err := rect.Validate(); err != nil {
		return nil, err
	}
	return rect, nil
}

func pathKind(path string) statusKind {
	if _, err := os.Stat(path); err != nil {
		return statusWarn
	}
	return statusOK
}

// resolveExportFolder maps a library entry id or a folder path onto the
// project folder to merge. Bare names are also tried under the configured
// projects directory.
func resolveExportFolder(ctx *commandContext, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("project folder or library id is required")
	}

	if id, convErr := strconv.ParseInt(arg, 10, 64); convErr == nil {
		if id < 1 {
			return "", fmt.Errorf("invalid library id: %d", id)
		}
		var folder string
		err := ctx.withLibrary(func(client *ipc.Client, store *library.Store) error {
			if client != nil {
				resp, err := client.LibraryList()
				if err != nil {
					return formatRPCError(err)
				}
				for _, entry := range resp.Entries {
					if entry.ID == id {
						folder = entry.Folder
						return nil
					}
				}
				return fmt.Errorf("library entry %d not found", id)
			}
			rec, err := store.Get(context.Background(), id)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("library entry %d not found", id)
			}
			folder = rec.Folder
			return nil
		})
		if err != nil {
			return "", err
		}
		return folder, nil
	}

	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(path); statErr == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", path)
		}
		return path, nil
	}
	if !strings.ContainsRune(arg, os.PathSeparator) {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return "", err
		}
		candidate := filepath.Join(cfg.Paths.ProjectsDir, arg)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("project folder %q not found", arg)
}
