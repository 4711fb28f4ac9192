package realtime

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/smallnest/ringbuffer"
)

// wireSampleRate is the PCM16 rate the realtime endpoint speaks.
const wireSampleRate = 24_000

type FixedChunkReader struct {
	r         io.Reader
	buf       []byte
	chunkSize int
	eof       bool
}

func NewFixedChunkReader(r io.Reader, chunkSize int) *FixedChunkReader {
	return &FixedChunkReader{
		r:         r,
		chunkSize: chunkSize,
		buf:       make([]byte, 0, chunkSize*2),
	}
}

func getChunkSize(sampleRate int, sampleDuration time.Duration, bytesPerSample int, channels int) int {
	frames := int(float64(sampleRate) * sampleDuration.Seconds())
	chunkSize := frames * bytesPerSample * channels
	return chunkSize
}

func NewFixedAudioChunkReader(
	r io.Reader,
	sampleRate int,
	latency time.Duration,
	bytesPerSample int,
	channels int,
) *FixedChunkReader {
	return NewFixedChunkReader(r, getChunkSize(sampleRate, latency, bytesPerSample, channels))
}

func (f *FixedChunkReader) Read(p []byte) (int, error) {
	if len(p) < f.chunkSize {
		return 0, fmt.Errorf("buffer passed to Read must be at least %d bytes", f.chunkSize)
	}

	// Fill internal buffer until we can emit a full chunk or reach EOF
	for len(f.buf) < f.chunkSize && !f.eof {
		tmp := make([]byte, f.chunkSize)
		n, err := f.r.Read(tmp)
		if n > 0 {
			f.buf = append(f.buf, tmp[:n]...)
		}
		if err == io.EOF {
			f.eof = true
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if len(f.buf) == 0 && f.eof {
		return 0, io.EOF
	}

	// Determine how much to copy (either a full chunk, or the remaining)
	n := f.chunkSize
	if len(f.buf) < f.chunkSize {
		n = len(f.buf)
	}

	copy(p, f.buf[:n])
	f.buf = f.buf[n:]

	return n, nil
}

type PCMStreamer struct {
	data []int16
	pos  int
}

func NewPCMStreamer(b []byte) *PCMStreamer {
	samples := make([]int16, len(b)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return &PCMStreamer{data: samples}
}

func (s *PCMStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.pos >= len(s.data) {
			return i, false
		}
		val := float64(s.data[s.pos]) / 32768.0
		samples[i][0] = val
		samples[i][1] = val // duplicate mono to stereo
		s.pos++
	}
	return len(samples), true
}

func (s *PCMStreamer) Err() error { return nil }

// ResamplePCM converts mono 16-bit little-endian PCM between sample
// rates.
func ResamplePCM(pcmData []byte, fromRate, toRate int) ([]byte, error) {
	streamer := NewPCMStreamer(pcmData)

	resampler := beep.Resample(3, beep.SampleRate(fromRate), beep.SampleRate(toRate), streamer)

	// Buffer to collect the output
	buf := new(bytes.Buffer)
	sample := make([][2]float64, 1024)

	for {
		n, ok := resampler.Stream(sample)
		for i := 0; i < n; i++ {
			mono := (sample[i][0] + sample[i][1]) / 2.0
			int16Val := int16(mono * 32767)
			err := binary.Write(buf, binary.LittleEndian, int16Val)
			if err != nil {
				return nil, err
			}
		}
		if !ok {
			break
		}
	}

	return buf.Bytes(), nil
}

// StreamInputAudio reads mono PCM16 from r at the given sample rate,
// resamples it to the wire rate and appends it to the input audio
// buffer in latency-sized chunks. It returns once r is drained.
func (c *Client) StreamInputAudio(ctx context.Context, r io.Reader, sampleRate int, latency time.Duration) error {
	chunked := NewFixedAudioChunkReader(r, sampleRate, latency, 2, 1)
	buf := make([]byte, getChunkSize(sampleRate, latency, 2, 1))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := chunked.Read(buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input audio: %w", err)
		}

		chunk := buf[:n]
		if sampleRate != wireSampleRate {
			chunk, err = ResamplePCM(chunk, sampleRate, wireSampleRate)
			if err != nil {
				return fmt.Errorf("resample input audio: %w", err)
			}
		}
		if err := c.SendAudio(ctx, chunk); err != nil {
			return err
		}
	}
}

// PlaybackBuffer is a blocking ring buffer for response audio,
// sized for a given duration of mono PCM16. Reset drops buffered
// audio on barge-in.
type PlaybackBuffer struct {
	rb *ringbuffer.RingBuffer
}

func NewPlaybackBuffer(sampleRate int, capacity time.Duration) *PlaybackBuffer {
	size := getChunkSize(sampleRate, capacity, 2, 1)
	return &PlaybackBuffer{rb: ringbuffer.New(size).SetBlocking(true)}
}

func (b *PlaybackBuffer) Read(p []byte) (int, error)  { return b.rb.Read(p) }
func (b *PlaybackBuffer) Write(p []byte) (int, error) { return b.rb.Write(p) }

func (b *PlaybackBuffer) Reset() { b.rb.Reset() }

// Play drains an audio part's chunks into the buffer until the part
// is done.
func (b *PlaybackBuffer) Play(ctx context.Context, a *AudioContent) error {
	for {
		chunk, err := a.RecvAudio(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := b.rb.Write(chunk); err != nil {
			return fmt.Errorf("buffer playback audio: %w", err)
		}
	}
}
