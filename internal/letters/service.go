package letters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"letter-backend/internal/extract"
	"letter-backend/internal/llm"
	"letter-backend/internal/shared/storage/object"
	"letter-backend/internal/shared/telemetry"
	"letter-backend/internal/shared/util"
)

const (
	DefaultJobPostingMinLength = 50
	DefaultMaxTokens           = 4096
	DefaultTemperature         = 0.7

	rawPreviewLength = 300
)

var (
	errRequiredFields = &InputError{Message: "Please fill in all required fields: company name, position, and job description."}
	errInvalidName    = &InputError{Message: "Please upload a file with a valid name."}
)

// Upload is a resume file as received from the client, before any bytes are read.
type Upload struct {
	Document extract.Document
	Body     io.Reader
}

// GenerateInput bundles the form fields with an optional resume upload.
type GenerateInput struct {
	Request   LetterRequest
	Upload    *Upload
	RequestID string
}

// Service runs the generation pipeline: validate, stage the resume,
// extract its text, prompt the model and parse the bundle.
type Service struct {
	Store               object.ObjectStore
	LLM                 llm.Client
	Policy              extract.Policy
	Provider            string
	MaxTokens           int
	Temperature         float64
	JobPostingMinLength int
}

// Generate produces a letter bundle. A staged upload is deleted exactly once
// before Generate returns, whatever the outcome.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (Result, error) {
	req, err := s.validateRequest(in.Request)
	if err != nil {
		return Result{}, err
	}

	if in.Upload != nil {
		text, err := s.resumeText(ctx, in.Upload, in.RequestID)
		if err != nil {
			return Result{}, err
		}
		req.ResumeText = text
	}

	prompt := llm.BuildLetterPrompt(llm.LetterPromptInput{
		Company:       req.Company,
		Position:      req.Position,
		JobPosting:    req.JobPosting,
		ResumeText:    req.ResumeText,
		PersonalNotes: req.PersonalNotes,
	})

	start := time.Now()
	telemetry.Info("letters.generate.start", map[string]any{
		"request_id":    in.RequestID,
		"provider":      s.Provider,
		"company":       req.Company,
		"position":      req.Position,
		"tone":          req.Tone,
		"has_resume":    req.ResumeText != "",
		"resume_length": utf8.RuneCountInString(req.ResumeText),
		"prompt_hash":   llm.PromptHash(prompt),
	})

	completion, err := s.LLM.Complete(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   s.maxTokens(),
		Temperature: s.temperature(),
	})
	if err != nil {
		return Result{}, err
	}

	bundle, err := ParseBundle(completion.Text)
	if err != nil {
		telemetry.Warn("letters.parse.failed", map[string]any{
			"request_id":  in.RequestID,
			"model":       completion.Model,
			"error":       err.Error(),
			"raw_preview": preview(completion.Text, rawPreviewLength),
		})
		return Result{}, err
	}

	telemetry.Info("letters.generate.complete", map[string]any{
		"request_id":    in.RequestID,
		"model":         completion.Model,
		"input_tokens":  completion.InputTokens,
		"output_tokens": completion.OutputTokens,
		"duration_ms":   float64(time.Since(start).Microseconds()) / 1000.0,
	})

	return Result{
		Bundle: bundle,
		Generation: GenerationMetadata{
			Model:      completion.Model,
			TokensUsed: completion.TotalTokens(),
		},
		HasResume:    req.ResumeText != "",
		ResumeLength: utf8.RuneCountInString(req.ResumeText),
		Company:      req.Company,
		Position:     req.Position,
	}, nil
}

func (s *Service) validateRequest(req LetterRequest) (LetterRequest, error) {
	req.Company = strings.TrimSpace(req.Company)
	req.Position = strings.TrimSpace(req.Position)
	req.JobPosting = strings.TrimSpace(req.JobPosting)
	req.PersonalNotes = strings.TrimSpace(req.PersonalNotes)
	req.Tone = strings.TrimSpace(req.Tone)
	if req.Tone == "" {
		req.Tone = DefaultTone
	}

	if req.Company == "" || req.Position == "" || req.JobPosting == "" {
		return req, errRequiredFields
	}
	minLen := s.JobPostingMinLength
	if minLen <= 0 {
		minLen = DefaultJobPostingMinLength
	}
	if utf8.RuneCountInString(req.JobPosting) < minLen {
		return req, &InputError{
			Message: fmt.Sprintf("Please provide a more detailed job description (at least %d characters).", minLen),
		}
	}
	return req, nil
}

// resumeText validates, stages, reads and extracts the upload. The staged
// object is removed on every path once it exists.
func (s *Service) resumeText(ctx context.Context, up *Upload, requestID string) (string, error) {
	format, err := s.Policy.Validate(up.Document)
	if err != nil {
		return "", err
	}
	if _, err := util.SanitizeFileName(up.Document.Name); err != nil {
		return "", errInvalidName
	}

	key, size, err := s.Store.Save(ctx, up.Document.Name, up.Body)
	if err != nil {
		return "", fmt.Errorf("storage: stage upload: %w", err)
	}
	defer s.release(ctx, key, requestID)

	telemetry.Info("letters.upload.staged", map[string]any{
		"request_id":  requestID,
		"storage_key": key,
		"size_bytes":  size,
		"format":      format.String(),
	})

	// The declared size comes from the client; re-check what was actually stored.
	if size > s.maxSize() {
		_, err := s.Policy.Validate(extract.Document{Name: up.Document.Name, MediaType: up.Document.MediaType, SizeBytes: size})
		return "", err
	}

	data, err := s.read(ctx, key)
	if err != nil {
		return "", err
	}
	return extract.Text(format, data)
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("storage: open staged upload: %w", err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("storage: read staged upload: %w", err)
	}
	return buf.Bytes(), nil
}

// release deletes a staged upload. It runs detached from request
// cancellation and only logs failures.
func (s *Service) release(ctx context.Context, key, requestID string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
		telemetry.Warn("letters.upload.cleanup_failed", map[string]any{
			"request_id":  requestID,
			"storage_key": key,
			"error":       err.Error(),
		})
	}
}

func (s *Service) maxSize() int64 {
	if s.Policy.MaxSizeBytes <= 0 {
		return extract.DefaultMaxSizeBytes
	}
	return s.Policy.MaxSizeBytes
}

func (s *Service) maxTokens() int {
	if s.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return s.MaxTokens
}

func (s *Service) temperature() float64 {
	if s.Temperature <= 0 {
		return DefaultTemperature
	}
	return s.Temperature
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// IsInputError reports whether err is a validation failure whose message can
// be shown to the user verbatim.
func IsInputError(err error) bool {
	var inputErr *InputError
	var validationErr *extract.ValidationError
	var extractionErr *extract.ExtractionError
	return errors.As(err, &inputErr) || errors.As(err, &validationErr) || errors.As(err, &extractionErr)
}
