package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/heartmarshall/notas/internal/config"
)

const defaultGoogleURL = "https://texttospeech.googleapis.com/v1/text:synthesize"

// Google synthesizes speech with the Google Cloud Text-to-Speech REST API,
// caches the MP3 on disk and plays it with the configured player.
type Google struct {
	baseURL    string
	apiKey     string
	voice      string
	rate       float64
	cacheDir   string
	httpClient *http.Client
	player     *Player
	mu         sync.Mutex
	log        *slog.Logger
}

// NewGoogle creates the cache directory and returns a ready client.
func NewGoogle(log *slog.Logger, cfg config.SpeechConfig) (*Google, error) {
	return newGoogle(log, cfg, defaultGoogleURL)
}

func newGoogle(log *slog.Logger, cfg config.SpeechConfig, baseURL string) (*Google, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("google tts: cache dir: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Google{
		baseURL:    baseURL,
		apiKey:     cfg.GoogleAPIKey,
		voice:      cfg.Voice,
		rate:       cfg.Rate,
		cacheDir:   cfg.CacheDir,
		httpClient: &http.Client{Timeout: timeout},
		player:     NewPlayer(cfg.Player, timeout),
		log:        log.With("adapter", "speech.google"),
	}, nil
}

func (g *Google) cacheKey(text string) string {
	h := sha256.Sum256([]byte(g.voice + ":" + text))
	return hex.EncodeToString(h[:16])
}

// Speak plays text, fetching and caching the audio on first use.
func (g *Google) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	path, err := g.audioFile(ctx, text)
	if err != nil {
		return err
	}
	return g.player.Play(ctx, path)
}

func (g *Google) audioFile(ctx context.Context, text string) (string, error) {
	path := filepath.Join(g.cacheDir, g.cacheKey(text)+".mp3")
	if cached(path) {
		return path, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cached(path) {
		return path, nil
	}

	audio, err := g.synthesize(ctx, text)
	if err != nil {
		g.log.WarnContext(ctx, "tts request failed", slog.String("text", text), slog.String("error", err.Error()))
		return "", err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("google tts: write cache: %w", err)
	}
	return path, nil
}

func cached(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
	} `json:"audioConfig"`
}

func (g *Google) synthesize(ctx context.Context, text string) ([]byte, error) {
	var body synthesizeRequest
	body.Input.Text = text
	body.Voice.LanguageCode = g.voice
	body.AudioConfig.AudioEncoding = "MP3"
	body.AudioConfig.SpeakingRate = g.rate

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("google tts: marshal request: %w", err)
	}

	reqURL := g.baseURL + "?key=" + url.QueryEscape(g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("google tts: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google tts: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google tts: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("google tts: decode json: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("google tts: decode audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("google tts: empty audio")
	}
	return audio, nil
}
