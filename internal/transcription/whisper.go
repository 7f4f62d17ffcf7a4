package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// WhisperEngine transcribes audio against a whisper model server over HTTP.
// The audio file is uploaded as multipart form data; the server responds with
// the full text, detected language and raw segments.
type WhisperEngine struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewWhisperEngine(baseURL, model string, timeout time.Duration) *WhisperEngine {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &WhisperEngine{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *WhisperEngine) Name() string {
	return "whisper-" + e.model
}

// Init probes the ASR server. A failure here leaves the service in degraded
// readiness; transcription is retried per call, so a server that comes up
// later recovers without a restart.
func (e *WhisperEngine) Init(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("asr server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("asr server unhealthy: %s", resp.Status)
	}
	return nil
}

func (e *WhisperEngine) Transcribe(ctx context.Context, audioPath string) (RawTranscription, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fw, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return RawTranscription{}, err
	}

	fd, err := os.Open(audioPath)
	if err != nil {
		return RawTranscription{}, fmt.Errorf("open audio file: %w", err)
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return RawTranscription{}, fmt.Errorf("read audio file: %w", err)
	}
	if err = form.WriteField("model", e.model); err != nil {
		return RawTranscription{}, err
	}
	if err = form.Close(); err != nil {
		return RawTranscription{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/transcribe", &body)
	if err != nil {
		return RawTranscription{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return RawTranscription{}, fmt.Errorf("transcribe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return RawTranscription{}, fmt.Errorf("transcribe %s: %s", resp.Status, string(msg))
	}

	var out RawTranscription
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return RawTranscription{}, fmt.Errorf("transcribe decode: %w", err)
	}
	return out, nil
}
