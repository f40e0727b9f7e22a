package main

import (
	"path/filepath"
	"testing"

	"tutorec/internal/media"
)

func TestProjectInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my_tutorial.json")

	out, _, err := runCLI(t, []string{
		"project", "init", path,
		"--audio", "hw:CARD=Mic,DEV=0",
		"--webcam", "/dev/video0",
		"--screen", ":0",
		"--area", "1920x1080+0+0",
	}, "", "")
	if err != nil {
		t.Fatalf("project init: %v", err)
	}
	requireContains(t, out, "Wrote project file")
	requireContains(t, out, "tutorec record start")

	project, err := media.LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if project.Name != "my_tutorial" {
		t.Fatalf("name = %q, want my_tutorial", project.Name)
	}
	if len(project.AudioInputs) != 1 || len(project.VideoInputs) != 2 {
		t.Fatalf("inputs = %d audio, %d video", len(project.AudioInputs), len(project.VideoInputs))
	}
	if project.ScreenArea == nil || project.ScreenArea.Width != 1920 || project.ScreenArea.Height != 1080 {
		t.Fatalf("screen area = %#v", project.ScreenArea)
	}
	if project.ScreenArea.AspectRatio != media.Aspect16x9 {
		t.Fatalf("aspect = %q, want 16:9", project.ScreenArea.AspectRatio)
	}

	_, _, err = runCLI(t, []string{"project", "init", path, "--audio", "hw:0"}, "", "")
	if err == nil {
		t.Fatal("expected init over existing file to fail")
	}
	requireContains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, []string{
		"project", "init", path,
		"--name", "Named Tutorial",
		"--audio", "hw:0",
		"--overwrite",
	}, "", "")
	if err != nil {
		t.Fatalf("project init --overwrite: %v", err)
	}
	project, err = media.LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject after overwrite: %v", err)
	}
	if project.Name != "Named Tutorial" {
		t.Fatalf("name = %q, want Named Tutorial", project.Name)
	}
}

func TestProjectInitScreenRequiresArea(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")

	_, _, err := runCLI(t, []string{"project", "init", path, "--screen", ":0"}, "", "")
	if err == nil {
		t.Fatal("expected missing area error")
	}
	requireContains(t, err.Error(), "--screen requires --area")
}

func TestProjectShowCommand(t *testing.T) {
	path := writeDemoProject(t, t.TempDir())

	out, _, err := runCLI(t, []string{"project", "show", path}, "", "")
	if err != nil {
		t.Fatalf("project show: %v", err)
	}
	requireContains(t, out, `"name": "demo"`)
	requireContains(t, out, `"source_type": "screen"`)
}

func TestProjectValidateCommand(t *testing.T) {
	path := writeDemoProject(t, t.TempDir())

	out, _, err := runCLI(t, []string{"project", "validate", path}, "", "")
	if err != nil {
		t.Fatalf("project validate: %v", err)
	}
	requireContains(t, out, "Project file valid: Demo (1 audio, 2 video inputs)")
}
