package llm

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"strings"
	"text/template"
)

var (
	//go:embed prompts/letters_v1.txt
	lettersPromptV1 string

	lettersTemplate = template.Must(template.New("letters_v1").Parse(lettersPromptV1))
)

// LetterPromptInput carries the form fields that shape the letter prompt.
// ResumeText and PersonalNotes are optional; their sections are omitted when blank.
type LetterPromptInput struct {
	Company       string
	Position      string
	JobPosting    string
	ResumeText    string
	PersonalNotes string
}

// BuildLetterPrompt renders the letter-generation prompt. The output is a pure
// function of the input.
func BuildLetterPrompt(input LetterPromptInput) string {
	input.ResumeText = strings.TrimSpace(input.ResumeText)
	input.PersonalNotes = strings.TrimSpace(input.PersonalNotes)

	var b strings.Builder
	if err := lettersTemplate.Execute(&b, input); err != nil {
		// The template only reads string fields, so execution cannot fail at runtime.
		panic(err)
	}
	return b.String()
}

// PromptHash returns a stable digest of a prompt, logged instead of the prompt itself.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
