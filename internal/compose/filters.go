package compose

import (
	"fmt"
	"strings"

	"tutorec/internal/media"
)

// Shared graph fragments. Input 0 is always the screen recording, input 1
// the webcam, inputs 2..N+1 the microphones.
const (
	screenScaleTall  = "[0:v]scale=1080:-1[screen]"
	webcamCoverTall  = "[1:v]scale=1080:1200:force_original_aspect_ratio=increase,crop=1080:1200[webcam_tall]"
	stackCropCenter  = "[stacked_tall]crop=1080:1760[stacked]"
	stackSplit       = "[stacked]split[content][blur_src]"
	blurBackground   = "[blur_src]scale=1080:1920,boxblur=30:30[blurred]"
	blurOverlay      = "[blurred][content]overlay=0:80[v]"
	screenLetterbox  = "[0:v]scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2:black[screen]"
	webcamCoverInset = "[1:v]scale=480:270:force_original_aspect_ratio=increase,crop=480:270[webcam]"
	silentAudio      = "anullsrc=r=44100:cl=stereo[a]"
)

// FilterGraph returns the -filter_complex program for the layout given the
// number of microphone inputs. Unknown layouts fail before any fragment is
// emitted.
func FilterGraph(layout media.Layout, audioCount int) (string, error) {
	if audioCount < 0 {
		return "", fmt.Errorf("negative audio input count %d", audioCount)
	}
	switch layout {
	case media.LayoutVerticalBottom:
		return verticalGraph(false, audioCount), nil
	case media.LayoutVerticalTop:
		return verticalGraph(true, audioCount), nil
	case media.LayoutDownRight:
		return cornerGraph("W-w-20:H-h-20", audioCount, silentAudio), nil
	case media.LayoutDownLeft:
		return cornerGraph("20:H-h-20", audioCount, silentAudio), nil
	case media.LayoutTopRight:
		return cornerGraph("W-w-20:20", audioCount, silentAudio), nil
	case media.LayoutTopLeft:
		// Historical quirk: this layout reuses the screen recording's audio
		// track instead of synthesizing silence when no microphone was
		// recorded. Kept so re-exports of old projects stay identical.
		return cornerGraph("20:20", audioCount, "[0:a]anull[a]"), nil
	default:
		return "", fmt.Errorf("unknown layout %q", layout)
	}
}

// verticalGraph produces the 1080x1920 portrait layouts. The stack is
// cropped to 1760px and floated over a blurred copy of itself so uneven
// screen aspect ratios never leave hard black bars.
func verticalGraph(webcamOnTop bool, audioCount int) string {
	parts := make([]string, 0, 8)
	if webcamOnTop {
		parts = append(parts,
			webcamCoverTall,
			screenScaleTall,
			"[webcam_tall][screen]vstack[stacked_tall]",
		)
	} else {
		parts = append(parts,
			screenScaleTall,
			webcamCoverTall,
			"[screen][webcam_tall]vstack[stacked_tall]",
		)
	}
	parts = append(parts,
		stackCropCenter,
		stackSplit,
		blurBackground,
		blurOverlay,
		audioGraph(audioCount, silentAudio),
	)
	return strings.Join(parts, ";")
}

// cornerGraph produces the 1920x1080 layouts: letterboxed screen with the
// webcam inset at the given overlay position, 20px off both edges.
func cornerGraph(overlayPos string, audioCount int, emptyAudio string) string {
	parts := []string{
		screenLetterbox,
		webcamCoverInset,
		fmt.Sprintf("[screen][webcam]overlay=%s[v]", overlayPos),
		audioGraph(audioCount, emptyAudio),
	}
	return strings.Join(parts, ";")
}

func audioGraph(audioCount int, emptyAudio string) string {
	if audioCount == 0 {
		return emptyAudio
	}
	var b strings.Builder
	for i := 0; i < audioCount; i++ {
		fmt.Fprintf(&b, "[%d:a]", i+2)
	}
	fmt.Fprintf(&b, "amix=inputs=%d:duration=longest[a]", audioCount)
	return b.String()
}
