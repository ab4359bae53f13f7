// Package pipeline defines the generation model and video encoder the worker drives.
package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyOutput is reported when a pipeline succeeds without producing frames.
var ErrEmptyOutput = errors.New("pipeline produced no frames")

// ReferenceImage conditions a given frame on an input image.
type ReferenceImage struct {
	Path       string  `json:"path"`
	FrameIndex int     `json:"frame_index"`
	Strength   float64 `json:"strength"`
}

// TilingConfig controls how the decoder splits work across space and time.
type TilingConfig struct {
	SpatialTileSize     int `json:"spatial_tile_size"`
	SpatialOverlap      int `json:"spatial_overlap"`
	TemporalTileSize    int `json:"temporal_tile_size"`
	TemporalTileOverlap int `json:"temporal_tile_overlap"`
}

// DefaultTiling returns the tiling used for every job.
func DefaultTiling() TilingConfig {
	return TilingConfig{
		SpatialTileSize:     512,
		SpatialOverlap:      64,
		TemporalTileSize:    64,
		TemporalTileOverlap: 24,
	}
}

// VideoChunks returns how many temporal chunks numFrames is decoded in.
func VideoChunks(numFrames int, tiling TilingConfig) int {
	tile, overlap := tiling.TemporalTileSize, tiling.TemporalTileOverlap
	if tile <= 0 || numFrames <= tile {
		return 1
	}
	stride := tile - overlap
	if stride <= 0 {
		return 1
	}
	remaining := numFrames - tile
	return 1 + (remaining+stride-1)/stride
}

// Params is the full argument set for one generation call.
type Params struct {
	Prompt            string           `json:"prompt"`
	NegativePrompt    string           `json:"negative_prompt"`
	Seed              int64            `json:"seed"`
	Height            int              `json:"height"`
	Width             int              `json:"width"`
	NumFrames         int              `json:"num_frames"`
	FrameRate         float64          `json:"frame_rate"`
	NumInferenceSteps int              `json:"num_inference_steps"`
	CFGGuidanceScale  float64          `json:"cfg_guidance_scale"`
	Images            []ReferenceImage `json:"images"`
	Tiling            TilingConfig     `json:"tiling_config"`
}

// Output holds decoded media. Video is packed rgb24, Audio is mono f32le.
type Output struct {
	Video      []byte
	Width      int
	Height     int
	NumFrames  int
	Audio      []byte
	SampleRate int
}

// FrameSize is the byte length of a single rgb24 frame.
func (o *Output) FrameSize() int {
	return o.Width * o.Height * 3
}

// Check rejects non-positive geometry and buffers that do not hold exactly
// NumFrames frames.
func (o *Output) Check() error {
	if o.NumFrames == 0 || len(o.Video) == 0 {
		return ErrEmptyOutput
	}
	if o.Width <= 0 || o.Height <= 0 || o.NumFrames < 0 {
		return fmt.Errorf("invalid frame geometry %dx%d, %d frames", o.Width, o.Height, o.NumFrames)
	}
	if len(o.Video) != o.NumFrames*o.FrameSize() {
		return fmt.Errorf("video buffer is %d bytes, expected %d", len(o.Video), o.NumFrames*o.FrameSize())
	}
	return nil
}

// Result is either a successful Output or a failure message.
type Result struct {
	Output  *Output
	Failure string
}

// Failed reports whether the generation did not produce output.
func (r Result) Failed() bool {
	return r.Output == nil || r.Failure != ""
}

// Succeeded wraps out in a successful Result.
func Succeeded(out *Output) Result {
	return Result{Output: out}
}

// Failure builds a failed Result from msg.
func Failure(msg string) Result {
	return Result{Failure: msg}
}

// Pipeline turns Params into decoded media. Implementations must not panic
// across the interface boundary for expected errors; they return a failed Result.
type Pipeline interface {
	Generate(ctx context.Context, params *Params) Result
	Ready(ctx context.Context) bool
}

// EncodeRequest describes one mp4 to write.
type EncodeRequest struct {
	Output      *Output
	FPS         float64
	OutputPath  string
	VideoChunks int
}

// Encoder writes decoded media to a container file.
type Encoder interface {
	Encode(ctx context.Context, req *EncodeRequest) error
}
