// Package compose builds the filter graphs and encoder invocations that
// merge recorded streams into a single deliverable video.
//
// Each layout is a stateless mapping from (screen, webcam, N microphones)
// to one -filter_complex program with a final video label [v] and audio
// label [a]. Graph topology is part of the on-disk contract with existing
// recordings, so the builders emit byte-stable filter strings.
package compose
