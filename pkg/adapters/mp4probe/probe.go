// Package mp4probe inspects recorded MP4 files so a finished recording can
// be sanity-checked without re-running the encoder.
package mp4probe

import (
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// TrackInfo describes one track of a probed file.
type TrackInfo struct {
	ID         uint32
	Handler    string
	Codec      string
	Width      int
	Height     int
	DurationMs uint64
}

// Info summarizes a probed MP4 file.
type Info struct {
	Fragmented bool
	DurationMs uint64
	Tracks     []TrackInfo
}

// ProbeFile inspects the MP4 file at path.
func ProbeFile(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Probe(f)
}

// Probe inspects MP4 data from a reader.
func Probe(r io.ReadSeeker) (*Info, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	info := &Info{Fragmented: mp4File.IsFragmented()}

	moov := mp4File.Moov
	if info.Fragmented && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return nil, fmt.Errorf("no moov box found")
	}

	var timescale uint32 = 1
	if moov.Mvhd != nil {
		timescale = moov.Mvhd.Timescale
		if timescale == 0 {
			timescale = 1
		}
		info.DurationMs = moov.Mvhd.Duration * 1000 / uint64(timescale)
	}

	for _, trak := range moov.Traks {
		info.Tracks = append(info.Tracks, trackInfo(trak))
	}
	return info, nil
}

func trackInfo(trak *mp4.TrakBox) TrackInfo {
	t := TrackInfo{}
	if trak.Tkhd != nil {
		t.ID = trak.Tkhd.TrackID
		// Tkhd stores dimensions as 16.16 fixed point.
		t.Width = int(trak.Tkhd.Width >> 16)
		t.Height = int(trak.Tkhd.Height >> 16)
	}
	if trak.Mdia == nil {
		return t
	}
	if trak.Mdia.Hdlr != nil {
		t.Handler = trak.Mdia.Hdlr.HandlerType
	}
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		t.DurationMs = trak.Mdia.Mdhd.Duration * 1000 / uint64(trak.Mdia.Mdhd.Timescale)
	}
	t.Codec = codecName(trak)
	return t
}

// codecName maps the first sample description to a codec label.
func codecName(trak *mp4.TrakBox) string {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return ""
	}
	stsd := trak.Mdia.Minf.Stbl.Stsd
	if stsd == nil || len(stsd.Children) == 0 {
		return ""
	}
	switch stsd.Children[0].Type() {
	case "avc1", "avc3":
		return "h264"
	case "hvc1", "hev1":
		return "h265"
	case "av01":
		return "av1"
	case "vp09":
		return "vp9"
	default:
		return stsd.Children[0].Type()
	}
}
