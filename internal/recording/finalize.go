package recording

import (
	"os"
	"path/filepath"
	"strings"

	"tutorec/internal/fileutil"
	"tutorec/internal/media"
	"tutorec/internal/services"
)

// ExportRecording copies a finished staging folder into the project library
// under destRoot/<project>. File names lose their project prefix during the
// copy, which yields the canonical layout the merge step expects:
// screen.mp4, webcam.mp4, mic<N>.wav and metadata.json.
func ExportRecording(stagingFolder, destRoot, project string) (string, error) {
	sanitized := media.SanitizeName(project)

	entries, err := os.ReadDir(stagingFolder)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "recording", "finalize", "read staging folder", err)
	}

	dest := filepath.Join(destRoot, sanitized)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", services.Wrap(nil, "recording", "finalize", "create project folder", err)
	}

	prefix := sanitized + "_"
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimPrefix(entry.Name(), prefix)
		src := filepath.Join(stagingFolder, entry.Name())
		if err := fileutil.CopyFileVerified(src, filepath.Join(dest, name)); err != nil {
			return "", services.Wrap(nil, "recording", "finalize", "copy "+entry.Name(), err)
		}
	}
	return dest, nil
}
