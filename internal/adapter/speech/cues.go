package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	cueSampleRate = 22050
	cueAmplitude  = 0.3
)

// tone is a linear frequency sweep.
type tone struct {
	name     string
	from, to float64
	duration time.Duration
}

var (
	successTone = tone{name: "cue-success.wav", from: 900, to: 1350, duration: 90 * time.Millisecond}
	errorTone   = tone{name: "cue-error.wav", from: 300, to: 200, duration: 200 * time.Millisecond}
)

// Tones plays the answer cues. The WAV files are rendered into dir on first use.
type Tones struct {
	dir    string
	player *Player
	mu     sync.Mutex
	ready  map[string]string
	log    *slog.Logger
}

func NewTones(log *slog.Logger, dir string, player *Player) (*Tones, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cues: cache dir: %w", err)
	}
	return &Tones{
		dir:    dir,
		player: player,
		ready:  make(map[string]string),
		log:    log.With("adapter", "speech.cues"),
	}, nil
}

func (t *Tones) PlaySuccess(ctx context.Context) error {
	return t.play(ctx, successTone)
}

func (t *Tones) PlayError(ctx context.Context) error {
	return t.play(ctx, errorTone)
}

func (t *Tones) play(ctx context.Context, tn tone) error {
	path, err := t.file(tn)
	if err != nil {
		return err
	}
	return t.player.Play(ctx, path)
}

func (t *Tones) file(tn tone) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if path, ok := t.ready[tn.name]; ok {
		return path, nil
	}
	path := filepath.Join(t.dir, tn.name)
	if err := os.WriteFile(path, encodeWAV(tn.samples(cueSampleRate), cueSampleRate), 0o644); err != nil {
		return "", fmt.Errorf("cues: write %s: %w", tn.name, err)
	}
	t.ready[tn.name] = path
	t.log.Debug("cue rendered", slog.String("path", path))
	return path, nil
}

// samples renders the sweep with a short linear fade at both ends.
func (tn tone) samples(rate int) []int16 {
	n := rate * int(tn.duration/time.Millisecond) / 1000
	out := make([]int16, n)
	fade := n / 10
	phase := 0.0
	for i := range n {
		progress := float64(i) / float64(n)
		freq := tn.from + (tn.to-tn.from)*progress
		phase += 2 * math.Pi * freq / float64(rate)

		gain := cueAmplitude
		if fade > 0 {
			switch {
			case i < fade:
				gain *= float64(i) / float64(fade)
			case i >= n-fade:
				gain *= float64(n-1-i) / float64(fade)
			}
		}
		out[i] = int16(math.Sin(phase) * gain * math.MaxInt16)
	}
	return out
}

// encodeWAV writes 16-bit mono PCM with a canonical 44-byte header.
func encodeWAV(samples []int16, rate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	dataSize := len(samples) * 2
	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	w := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString("RIFF")
	w(uint32(36 + dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1))
	w(uint16(channels))
	w(uint32(rate))
	w(uint32(rate * channels * bitsPerSample / 8))
	w(uint16(channels * bitsPerSample / 8))
	w(uint16(bitsPerSample))
	buf.WriteString("data")
	w(uint32(dataSize))
	w(samples)
	return buf.Bytes()
}
