package pipeline

import (
	"context"
	"time"
)

// MockPipeline produces flat grey frames and silence after a fixed delay.
// It stands in for the model in development.
type MockPipeline struct {
	Delay      time.Duration
	SampleRate int
}

// NewMockPipeline creates a mock pipeline.
func NewMockPipeline(delay time.Duration, sampleRate int) *MockPipeline {
	return &MockPipeline{Delay: delay, SampleRate: sampleRate}
}

func (m *MockPipeline) Generate(ctx context.Context, params *Params) Result {
	if params.Width <= 0 || params.Height <= 0 || params.NumFrames <= 0 {
		return Failure("width, height and num_frames must be positive")
	}

	select {
	case <-ctx.Done():
		return Failure(ctx.Err().Error())
	case <-time.After(m.Delay):
	}

	out := &Output{
		Width:      params.Width,
		Height:     params.Height,
		NumFrames:  params.NumFrames,
		SampleRate: m.SampleRate,
	}
	out.Video = make([]byte, out.NumFrames*out.FrameSize())
	for i := range out.Video {
		out.Video[i] = 0x80
	}

	fps := params.FrameRate
	if fps <= 0 {
		fps = 25
	}
	samples := int(float64(params.NumFrames) * float64(m.SampleRate) / fps)
	out.Audio = make([]byte, samples*4)

	return Succeeded(out)
}

func (m *MockPipeline) Ready(ctx context.Context) bool {
	return true
}
