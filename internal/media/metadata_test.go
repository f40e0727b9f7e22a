package media_test

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"tutorec/internal/media"
)

func TestMetadataDurationFloor(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		stop time.Time
		want float64
	}{
		{"half second floors to one", start.Add(500 * time.Millisecond), 1.0},
		{"exact second", start.Add(time.Second), 1.0},
		{"longer run", start.Add(90 * time.Second), 90.0},
		{"clock skew floors to one", start.Add(-3 * time.Second), 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := media.Metadata{ProjectName: "demo", StartTimestamp: start, StopTimestamp: tc.stop}
			got, err := meta.Duration()
			if err != nil {
				t.Fatalf("Duration: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Duration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMetadataDurationRequiresTimestamps(t *testing.T) {
	meta := media.Metadata{ProjectName: "demo", StartTimestamp: time.Now()}
	if _, err := meta.Duration(); err == nil {
		t.Fatal("expected error for missing stop timestamp")
	}
	meta = media.Metadata{ProjectName: "demo", StopTimestamp: time.Now()}
	if _, err := meta.Duration(); err == nil {
		t.Fatal("expected error for missing start timestamp")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	original := media.Metadata{
		ProjectName:    "demo",
		StartTimestamp: start,
		StopTimestamp:  start.Add(42 * time.Second),
		PauseEvents: []media.PauseEvent{
			{Action: media.ActionPause, Timestamp: start.Add(10 * time.Second)},
			{Action: media.ActionResume, Timestamp: start.Add(15 * time.Second)},
		},
		Recordings: []string{"demo_mic1.wav", "demo_webcam.mp4", "demo_screen.mp4"},
	}

	path := filepath.Join(t.TempDir(), media.StagingMetadataName("demo"))
	if err := original.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := media.LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if !reflect.DeepEqual(original, loaded) {
		t.Fatalf("round trip mismatch:\n  saved  %#v\n  loaded %#v", original, loaded)
	}
}

func TestStagingMetadataName(t *testing.T) {
	if got := media.StagingMetadataName("My/Demo"); got != "My_Demo_metadata.json" {
		t.Fatalf("unexpected staging name %q", got)
	}
	if got := media.StagingMetadataName(""); got != "untitled_metadata.json" {
		t.Fatalf("unexpected staging name %q", got)
	}
}
