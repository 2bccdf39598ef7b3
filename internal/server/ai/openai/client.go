// Package openai wraps the OpenAI API calls the interview backend proxies:
// speech-to-text, chat completion and text-to-speech. Vendor failures are
// returned as *common.VendorError carrying the upstream status when known.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	goopenai "github.com/sashabaranov/go-openai"
)

const vendorName = "OpenAI"

const (
	DefaultChatModel          = "gpt-4o-mini"
	DefaultTranscriptionModel = goopenai.Whisper1
	DefaultSpeechModel        = "tts-1-hd"
	DefaultVoice              = "nova"
	DefaultSpeechFormat       = "mp3"

	probeModel     = "gpt-4o-mini"
	probeMaxTokens = 5
)

// Client is bound to one API key. Build a new one when the key changes.
type Client struct {
	api *goopenai.Client
}

// New builds a client for apiKey. An empty baseURL keeps the library default;
// a nil httpClient uses http.DefaultClient.
func New(apiKey, baseURL string, httpClient *http.Client) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg)}
}

type TranscriptionRequest struct {
	Audio       []byte
	FileName    string
	Language    string
	Prompt      string
	Temperature float32
}

// Transcribe sends audio to Whisper and returns the recognised text.
func (c *Client) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	fileName := req.FileName
	if fileName == "" {
		fileName = "audio.webm"
	}

	resp, err := c.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:       DefaultTranscriptionModel,
		FilePath:    fileName,
		Reader:      bytes.NewReader(req.Audio),
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		Language:    req.Language,
		Format:      goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", vendorError(err)
	}
	return resp.Text, nil
}

type ChatRequest struct {
	Model        string
	SystemPrompt string
	UserMessage  string
	Temperature  float32
	MaxTokens    int
}

// Chat runs one system+user exchange and returns the first choice.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultChatModel
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.UserMessage})

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", vendorError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &common.VendorError{Vendor: vendorName, Message: "empty completion"}
	}
	return resp.Choices[0].Message.Content, nil
}

type SpeechRequest struct {
	Text   string
	Model  string
	Voice  string
	Format string
	Speed  float64
}

// Speech synthesises req.Text and returns the encoded audio bytes.
func (c *Client) Speech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(req.Model),
		Input:          req.Text,
		Voice:          goopenai.SpeechVoice(req.Voice),
		ResponseFormat: goopenai.SpeechResponseFormat(req.Format),
		Speed:          req.Speed,
	})
	if err != nil {
		return nil, vendorError(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, &common.VendorError{Vendor: vendorName, Message: fmt.Sprintf("reading audio: %v", err)}
	}
	return audio, nil
}

// Probe makes the cheapest call that proves the key is accepted.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.Chat(ctx, ChatRequest{
		Model:       probeModel,
		UserMessage: "Test",
		MaxTokens:   probeMaxTokens,
	})
	return err
}

func vendorError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &common.VendorError{Vendor: vendorName, Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &common.VendorError{Vendor: vendorName, Status: reqErr.HTTPStatusCode, Message: msg}
	}
	return &common.VendorError{Vendor: vendorName, Message: err.Error()}
}
