package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"letter-backend/internal/bootstrap"
	"letter-backend/internal/extract"
	"letter-backend/internal/letters"
	"letter-backend/internal/llm"
	"letter-backend/internal/shared/config"
	localstore "letter-backend/internal/shared/storage/object/local"
)

type options struct {
	resumePath     string
	jobPostingPath string
	company        string
	position       string
	notes          string
	tone           string
	outPath        string
	provider       string
	model          string
	printPrompt    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "prompttest",
		Short: "Run one motivation letter generation against the configured LLM",
		Long: `prompttest runs the same pipeline as POST /api/v1/letters/generate from the
command line and prints the resulting letter bundle as JSON.

Example:
  prompttest --company "Acme" --position "Backend Engineer" --job-posting jd.txt --resume cv.pdf`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.resumePath, "resume", "", "Path to resume file (pdf, doc or docx)")
	flags.StringVar(&opts.jobPostingPath, "job-posting", "", "Path to job posting text file")
	flags.StringVar(&opts.company, "company", "", "Company name")
	flags.StringVar(&opts.position, "position", "", "Position title")
	flags.StringVar(&opts.notes, "notes", "", "Personal notes to include")
	flags.StringVar(&opts.tone, "tone", letters.DefaultTone, "Preferred tone (informational)")
	flags.StringVar(&opts.outPath, "out", "", "Write JSON output to this path instead of stdout")
	flags.StringVar(&opts.provider, "provider", "", "LLM provider override (anthropic or openai)")
	flags.StringVar(&opts.model, "model", "", "LLM model override")
	flags.BoolVar(&opts.printPrompt, "print-prompt", false, "Print the prompt and exit without calling the LLM")
	_ = cmd.MarkFlagRequired("job-posting")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("position")
	return cmd
}

func run(ctx context.Context, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()
	if opts.provider != "" {
		cfg.LLMProvider = strings.ToLower(strings.TrimSpace(opts.provider))
	}
	if opts.model != "" {
		cfg.LLMModel = opts.model
	}

	jobPosting, err := os.ReadFile(opts.jobPostingPath)
	if err != nil {
		return errors.Wrap(err, "read job posting")
	}

	req := letters.LetterRequest{
		Company:       opts.company,
		Position:      opts.position,
		JobPosting:    string(jobPosting),
		PersonalNotes: opts.notes,
		Tone:          opts.tone,
	}

	if opts.printPrompt {
		return printPrompt(req, opts.resumePath)
	}

	stagingDir, err := os.MkdirTemp("", "prompttest-")
	if err != nil {
		return errors.Wrap(err, "create staging dir")
	}
	defer os.RemoveAll(stagingDir)

	svc := bootstrap.NewLettersService(cfg, localstore.New(stagingDir), bootstrap.BuildLLM(cfg))
	in := letters.GenerateInput{Request: req, RequestID: "prompttest"}

	if opts.resumePath != "" {
		upload, closeFn, err := openUpload(opts.resumePath)
		if err != nil {
			return err
		}
		defer closeFn()
		in.Upload = upload
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.LLMTimeoutSeconds+30)*time.Second)
	defer cancel()

	result, err := svc.Generate(ctx, in)
	if err != nil {
		failure := letters.Classify(err)
		fmt.Fprintf(os.Stderr, "%s: %s\n", failure.Category, failure.Message)
		return errors.Wrap(err, "generate letters")
	}

	payload := map[string]any{
		"success": true,
		"data":    result.Bundle,
		"metadata": map[string]any{
			"hasResume":    result.HasResume,
			"resumeLength": result.ResumeLength,
			"company":      result.Company,
			"position":     result.Position,
			"model":        result.Generation.Model,
			"tokensUsed":   result.Generation.TokensUsed,
		},
	}
	return writeJSON(opts.outPath, payload)
}

func printPrompt(req letters.LetterRequest, resumePath string) error {
	resumeText := ""
	if resumePath != "" {
		data, err := os.ReadFile(resumePath)
		if err != nil {
			return errors.Wrap(err, "read resume")
		}
		format := extract.Detect(mimeFromExt(resumePath))
		resumeText, err = extract.Text(format, data)
		if err != nil {
			return errors.Wrap(err, "extract resume text")
		}
	}
	prompt := llm.BuildLetterPrompt(llm.LetterPromptInput{
		Company:       req.Company,
		Position:      req.Position,
		JobPosting:    req.JobPosting,
		ResumeText:    resumeText,
		PersonalNotes: req.PersonalNotes,
	})
	fmt.Println(prompt)
	fmt.Fprintf(os.Stderr, "prompt_hash=%s\n", llm.PromptHash(prompt))
	return nil
}

func openUpload(path string) (*letters.Upload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open resume")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, errors.Wrap(err, "stat resume")
	}
	upload := &letters.Upload{
		Document: extract.Document{
			Name:      filepath.Base(path),
			MediaType: mimeFromExt(path),
			SizeBytes: info.Size(),
		},
		Body: f,
	}
	return upload, func() { _ = f.Close() }, nil
}

func mimeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extract.MimePDF
	case ".docx":
		return extract.MimeDOCX
	case ".doc":
		return extract.MimeDOC
	default:
		return "application/octet-stream"
	}
}

func writeJSON(outPath string, payload any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return errors.Wrap(err, "encode output")
	}
	if outPath == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", outPath)
	}
	return nil
}
