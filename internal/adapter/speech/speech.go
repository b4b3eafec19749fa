package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/heartmarshall/notas/internal/config"
)

// Speaker pronounces Portuguese text.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// CuePlayer plays short answer feedback tones.
type CuePlayer interface {
	PlaySuccess(ctx context.Context) error
	PlayError(ctx context.Context) error
}

type runFunc func(ctx context.Context, name string, args ...string) error

func execRun(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// NewSpeaker builds the speaker selected by cfg.Provider.
func NewSpeaker(log *slog.Logger, cfg config.SpeechConfig) (Speaker, error) {
	switch cfg.Provider {
	case config.SpeechNone, "":
		return Nop{}, nil
	case config.SpeechCommand:
		return NewCommand(log, cfg.Command, cfg.Timeout), nil
	case config.SpeechGoogle:
		return NewGoogle(log, cfg)
	default:
		return nil, fmt.Errorf("speech: unknown provider %q", cfg.Provider)
	}
}

// NewCues returns tone playback when cues are enabled, a no-op otherwise.
func NewCues(log *slog.Logger, cfg config.SpeechConfig) (CuePlayer, error) {
	if !cfg.Cues {
		return Nop{}, nil
	}
	return NewTones(log, cfg.CacheDir, NewPlayer(cfg.Player, cfg.Timeout))
}

// Nop discards every request.
type Nop struct{}

func (Nop) Speak(context.Context, string) error { return nil }
func (Nop) PlaySuccess(context.Context) error    { return nil }
func (Nop) PlayError(context.Context) error      { return nil }

// Command pronounces text by running an external synthesizer such as espeak-ng.
// The text is passed as the last argument.
type Command struct {
	args    []string
	timeout time.Duration
	run     runFunc
	log     *slog.Logger
}

// NewCommand splits command on whitespace; the first field is the binary.
func NewCommand(log *slog.Logger, command string, timeout time.Duration) *Command {
	return &Command{
		args:    strings.Fields(command),
		timeout: timeout,
		run:     execRun,
		log:     log.With("adapter", "speech.command"),
	}
}

// Speak runs the command and waits for it, bounded by the configured timeout.
func (c *Command) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(c.args) == 0 {
		return fmt.Errorf("speech command: not configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.log.DebugContext(ctx, "speak", slog.String("text", text))

	args := append(append([]string(nil), c.args[1:]...), text)
	if err := c.run(ctx, c.args[0], args...); err != nil {
		return fmt.Errorf("speech command: %w", err)
	}
	return nil
}

// Player plays an audio file through an external command (ffplay, afplay, aplay).
type Player struct {
	args    []string
	timeout time.Duration
	run     runFunc
}

func NewPlayer(command string, timeout time.Duration) *Player {
	return &Player{args: strings.Fields(command), timeout: timeout, run: execRun}
}

// Play blocks until playback ends or the timeout fires.
func (p *Player) Play(ctx context.Context, path string) error {
	if len(p.args) == 0 {
		return fmt.Errorf("player: not configured")
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	args := append(append([]string(nil), p.args[1:]...), path)
	if err := p.run(ctx, p.args[0], args...); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	return nil
}
