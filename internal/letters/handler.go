package letters

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"letter-backend/internal/extract"
	"letter-backend/internal/shared/metrics"
	"letter-backend/internal/shared/server/middleware"
	"letter-backend/internal/shared/server/respond"
	"letter-backend/internal/shared/telemetry"
)

const (
	resumeField = "resume"
	// formOverhead leaves room for the text fields and multipart framing.
	formOverhead = 1 << 20
)

var (
	errTooManyFiles = &InputError{Message: "Too many files uploaded. Please upload only one resume file."}
	errUploadFailed = &InputError{Message: "Unable to process the uploaded file. Please try again."}
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches letter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/letters/generate", h.generate)
	rg.GET("/letters/tips", h.tips)
}

type generateForm struct {
	Company       string `form:"company" json:"company"`
	Position      string `form:"position" json:"position"`
	JobPosting    string `form:"jobPosting" json:"jobPosting"`
	PersonalNotes string `form:"personalNotes" json:"personalNotes"`
	Tone          string `form:"tone" json:"tone"`
}

type generateResponse struct {
	Success  bool             `json:"success"`
	Data     LetterBundle     `json:"data"`
	Metadata responseMetadata `json:"metadata"`
}

type responseMetadata struct {
	HasResume    bool   `json:"hasResume"`
	ResumeLength int    `json:"resumeLength"`
	Company      string `json:"company"`
	Position     string `json:"position"`
	Model        string `json:"model"`
	TokensUsed   int    `json:"tokensUsed"`
}

func (h *Handler) generate(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)
	start := time.Now()
	metrics.IncLettersRequested()

	maxSize := h.Svc.maxSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+formOverhead)

	var form generateForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, start, bindError(err, maxSize))
		return
	}
	if c.Request.MultipartForm != nil {
		defer func() { _ = c.Request.MultipartForm.RemoveAll() }()
	}

	fileHeader, err := singleUpload(c.Request.MultipartForm)
	if err != nil {
		h.fail(c, start, err)
		return
	}

	in := GenerateInput{
		Request: LetterRequest{
			Company:       form.Company,
			Position:      form.Position,
			JobPosting:    form.JobPosting,
			PersonalNotes: form.PersonalNotes,
			Tone:          form.Tone,
		},
		RequestID: reqID,
	}
	if fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.fail(c, start, errUploadFailed)
			return
		}
		defer file.Close()
		in.Upload = &Upload{
			Document: documentFor(fileHeader),
			Body:     file,
		}
	}

	// A client disconnect does not abort a dispatched generation.
	result, err := h.Svc.Generate(context.WithoutCancel(c.Request.Context()), in)
	if err != nil {
		h.fail(c, start, err)
		return
	}

	metrics.IncLettersGenerated()
	metrics.ObserveLetterDurationMs(float64(time.Since(start).Milliseconds()))
	respond.OK(c, generateResponse{
		Success: true,
		Data:    result.Bundle,
		Metadata: responseMetadata{
			HasResume:    result.HasResume,
			ResumeLength: result.ResumeLength,
			Company:      result.Company,
			Position:     result.Position,
			Model:        result.Generation.Model,
			TokensUsed:   result.Generation.TokensUsed,
		},
	})
}

func (h *Handler) tips(c *gin.Context) {
	respond.OK(c, gin.H{
		"success": true,
		"data":    gin.H{"tips": Tips()},
	})
}

func (h *Handler) fail(c *gin.Context, start time.Time, err error) {
	failure := Classify(err)
	metrics.IncLettersFailed(string(failure.Category))
	metrics.ObserveLetterDurationMs(float64(time.Since(start).Milliseconds()))

	fields := map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"category":   string(failure.Category),
		"error":      err.Error(),
	}
	if IsInputError(err) {
		telemetry.Warn("letters.generate.rejected", fields)
	} else {
		telemetry.Error("letters.generate.failed", fields)
	}
	respond.Abort(c, failure.Status(), string(failure.Category), failure.Message)
}

// singleUpload returns the resume file, or nil when none was sent. Any
// second file, under any field name, is rejected.
func singleUpload(form *multipart.Form) (*multipart.FileHeader, error) {
	if form == nil {
		return nil, nil
	}
	total := 0
	for _, files := range form.File {
		total += len(files)
	}
	if total > 1 {
		return nil, errTooManyFiles
	}
	files := form.File[resumeField]
	if len(files) == 0 {
		if total > 0 {
			return nil, errTooManyFiles
		}
		return nil, nil
	}
	return files[0], nil
}

func documentFor(fh *multipart.FileHeader) extract.Document {
	return extract.Document{
		Name:      fh.Filename,
		MediaType: strings.TrimSpace(fh.Header.Get("Content-Type")),
		SizeBytes: fh.Size,
	}
}

func bindError(err error, maxSize int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
		return &InputError{
			Message: fmt.Sprintf("Your file is too large. Please upload a file smaller than %.0fMB.", float64(maxSize)/1024/1024),
		}
	}
	return errUploadFailed
}
