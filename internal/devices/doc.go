// Package devices enumerates the capture hardware available on the host:
// microphones, webcams, and the screen source. Enumeration shells out to
// platform tools (arecord, v4l2-ctl, ffmpeg device listings) through an
// injected runner so the parsers are exercised against canned transcripts.
package devices
