package httpapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/openai"
	"github.com/labstack/echo/v4"
)

const (
	defaultTranscriptionTemperature float32 = 0.2
	defaultChatTemperature          float32 = 0.7
	defaultChatMaxTokens                    = 250
	defaultSpeechSpeed                      = 1.0
)

var errOpenAINotConfigured = fmt.Errorf("OpenAI %w", common.ErrNotConfigured)

func (s *Server) health(c echo.Context) error {
	ctx := c.Request().Context()
	if s.healthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.healthTimeout)
		defer cancel()
	}

	dbOK := false
	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(ctx); err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
		} else {
			dbOK = true
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":             "ok",
		"message":            "Backend is running",
		"api_key_configured": s.deps.OpenAI.IsConfigured(),
		"database_connected": dbOK,
	})
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) setAPIKey(c echo.Context) error {
	var req apiKeyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing API key")
	}

	res, err := s.deps.OpenAI.SetKey(c.Request().Context(), req.APIKey)
	if err != nil {
		return err
	}

	body := map[string]any{
		"status":   "ok",
		"message":  "API key set successfully",
		"verified": res.Verified,
	}
	if !res.Verified {
		s.logger.Warn(c.Request().Context(), "API key stored without verification", "reason", res.Reason)
		body["warning"] = "API key stored but could not be verified: " + res.Reason
	}
	return c.JSON(http.StatusOK, body)
}

type transcribeRequest struct {
	AudioData string `json:"audio_data"`
	MimeType  string `json:"mime_type"`
	Options   struct {
		Language    string   `json:"language"`
		Prompt      string   `json:"prompt"`
		Temperature *float32 `json:"temperature"`
	} `json:"options"`
}

func (s *Server) transcribe(c echo.Context) error {
	client, ok := s.deps.OpenAI.Client()
	if !ok {
		return errOpenAINotConfigured
	}

	var req transcribeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.AudioData == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing audio data")
	}

	audio, err := decodeAudio(req.AudioData)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid audio data encoding")
	}

	temperature := defaultTranscriptionTemperature
	if req.Options.Temperature != nil {
		temperature = *req.Options.Temperature
	}

	text, err := client.Transcribe(c.Request().Context(), openai.TranscriptionRequest{
		Audio:       audio,
		FileName:    audioFileName(req.MimeType),
		Language:    req.Options.Language,
		Prompt:      req.Options.Prompt,
		Temperature: temperature,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"text": text})
}

type generateRequest struct {
	Transcript      *string `json:"transcript"`
	CurrentQuestion string  `json:"currentQuestion"`
	Options         struct {
		SystemPrompt string   `json:"systemPrompt"`
		Model        string   `json:"model"`
		Temperature  *float32 `json:"temperature"`
		MaxTokens    *int     `json:"maxTokens"`
	} `json:"options"`
}

func (s *Server) generateResponse(c echo.Context) error {
	client, ok := s.deps.OpenAI.Client()
	if !ok {
		return errOpenAINotConfigured
	}

	var req generateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Transcript == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing transcript")
	}

	systemPrompt := req.Options.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = openai.InterviewerPrompt(req.CurrentQuestion)
	}
	model := req.Options.Model
	if model == "" {
		model = openai.DefaultChatModel
	}
	temperature := defaultChatTemperature
	if req.Options.Temperature != nil {
		temperature = *req.Options.Temperature
	}
	maxTokens := defaultChatMaxTokens
	if req.Options.MaxTokens != nil {
		maxTokens = *req.Options.MaxTokens
	}

	out, err := client.Chat(c.Request().Context(), openai.ChatRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserMessage:  *req.Transcript,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"response": out})
}

type speechRequest struct {
	Text    *string `json:"text"`
	Options struct {
		Voice  string   `json:"voice"`
		Model  string   `json:"model"`
		Speed  *float64 `json:"speed"`
		Format string   `json:"format"`
	} `json:"options"`
}

func (s *Server) textToSpeech(c echo.Context) error {
	client, ok := s.deps.OpenAI.Client()
	if !ok {
		return errOpenAINotConfigured
	}

	var req speechRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Text == nil || *req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing text")
	}

	voice := firstNonEmpty(req.Options.Voice, openai.DefaultVoice)
	model := firstNonEmpty(req.Options.Model, openai.DefaultSpeechModel)
	format := firstNonEmpty(req.Options.Format, openai.DefaultSpeechFormat)
	speed := defaultSpeechSpeed
	if req.Options.Speed != nil {
		speed = *req.Options.Speed
	}

	audio, err := client.Speech(c.Request().Context(), openai.SpeechRequest{
		Text:   *req.Text,
		Model:  model,
		Voice:  voice,
		Format: format,
		Speed:  speed,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"audio_data": base64.StdEncoding.EncodeToString(audio),
		"voice":      voice,
		"model":      model,
		"format":     format,
	})
}

// decodeAudio accepts plain base64 or a data URL ("data:audio/webm;base64,...").
func decodeAudio(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return b, nil
}

var audioExtensions = map[string]string{
	"audio/webm":  "webm",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/mpeg":  "mp3",
	"audio/mp3":   "mp3",
	"audio/mp4":   "mp4",
	"audio/m4a":   "m4a",
	"audio/x-m4a": "m4a",
	"audio/ogg":   "ogg",
	"audio/flac":  "flac",
}

// audioFileName picks a file name whose extension the transcription
// endpoint uses to detect the container format.
func audioFileName(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := audioExtensions[mt]; ok {
		return "audio." + ext
	}
	return "audio.webm"
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
