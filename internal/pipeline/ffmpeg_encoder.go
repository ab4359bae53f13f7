package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpegEncoder muxes rgb24 frames and f32le audio into an H.264/AAC mp4.
type FFmpegEncoder struct {
	bin string
}

// NewFFmpegEncoder creates an encoder using the given ffmpeg binary.
func NewFFmpegEncoder(bin string) *FFmpegEncoder {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegEncoder{bin: bin}
}

// Available reports whether the ffmpeg binary can be resolved.
func (e *FFmpegEncoder) Available() bool {
	_, err := exec.LookPath(e.bin)
	return err == nil
}

// Encode writes req.Output to req.OutputPath. Frames are streamed to ffmpeg
// in req.VideoChunks pieces. On error the partial file is removed.
func (e *FFmpegEncoder) Encode(ctx context.Context, req *EncodeRequest) error {
	out := req.Output
	if out == nil {
		return ErrEmptyOutput
	}
	if err := out.Check(); err != nil {
		return err
	}

	args := []string{
		"-y", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", out.Width, out.Height),
		"-r", strconv.FormatFloat(req.FPS, 'f', -1, 64),
		"-i", "pipe:0",
	}

	hasAudio := len(out.Audio) > 0 && out.SampleRate > 0
	if hasAudio {
		audioPath, err := writeTempAudio(filepath.Dir(req.OutputPath), out.Audio)
		if err != nil {
			return err
		}
		defer os.Remove(audioPath)

		args = append(args,
			"-f", "f32le",
			"-ar", strconv.Itoa(out.SampleRate),
			"-ac", "1",
			"-i", audioPath,
		)
	}

	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p")
	if hasAudio {
		args = append(args, "-c:a", "aac", "-shortest")
	}
	args = append(args, "-movflags", "+faststart", req.OutputPath)

	cmd := exec.CommandContext(ctx, e.bin, args...)
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	writeErr := writeChunks(stdin, out, req.VideoChunks)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	if err := errors.Join(writeErr, closeErr, waitErr); err != nil {
		os.Remove(req.OutputPath)
		return fmt.Errorf("ffmpeg encode failed: %w: %s", err, strings.TrimSpace(output.String()))
	}
	return nil
}

func writeChunks(w io.Writer, out *Output, chunks int) error {
	if chunks < 1 {
		chunks = 1
	}
	framesPerChunk := (out.NumFrames + chunks - 1) / chunks
	chunkBytes := framesPerChunk * out.FrameSize()
	if chunkBytes <= 0 {
		chunkBytes = len(out.Video)
	}

	for offset := 0; offset < len(out.Video); offset += chunkBytes {
		end := offset + chunkBytes
		if end > len(out.Video) {
			end = len(out.Video)
		}
		if _, err := w.Write(out.Video[offset:end]); err != nil {
			return fmt.Errorf("write frames: %w", err)
		}
	}
	return nil
}

func writeTempAudio(dir string, audio []byte) (string, error) {
	f, err := os.CreateTemp(dir, "audio-*.f32le")
	if err != nil {
		return "", fmt.Errorf("create audio temp file: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write audio temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
