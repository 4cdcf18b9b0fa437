package llm

import (
	"strings"
	"testing"
)

func baseInput() LetterPromptInput {
	return LetterPromptInput{
		Company:    "Acme Corp",
		Position:   "Backend Engineer",
		JobPosting: "We are hiring a backend engineer to build Go services.",
	}
}

func TestBuildLetterPromptIncludesFields(t *testing.T) {
	prompt := BuildLetterPrompt(baseInput())

	for _, want := range []string{
		"Company: Acme Corp",
		"Position: Backend Engineer",
		"**Job Posting:**\nWe are hiring a backend engineer to build Go services.",
		"Professional", "Friendly", "Enthusiastic",
		"250-350 words",
		"call to action",
		"Return ONLY valid JSON in a single line",
		`Use \n escape sequences`,
		"Do not include any text before or after the JSON",
		`{"professional":{"content":`,
		`"customizationTips":[`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildLetterPromptOptionalSections(t *testing.T) {
	without := BuildLetterPrompt(baseInput())
	if strings.Contains(without, "Candidate's Resume") || strings.Contains(without, "Personal Notes") {
		t.Fatalf("optional sections should be omitted when blank")
	}

	in := baseInput()
	in.ResumeText = "Jane Doe, 10 years of Go"
	in.PersonalNotes = "  Relocating to Berlin  "
	with := BuildLetterPrompt(in)
	if !strings.Contains(with, "**Candidate's Resume:**\nJane Doe, 10 years of Go\n") {
		t.Fatalf("resume section missing:\n%s", with)
	}
	if !strings.Contains(with, "**Personal Notes from Candidate:**\nRelocating to Berlin\n") {
		t.Fatalf("notes section missing:\n%s", with)
	}

	schemaTail := func(p string) string {
		return p[strings.Index(p, "**Instructions:**"):]
	}
	if schemaTail(without) != schemaTail(with) {
		t.Fatalf("instructions and schema must not depend on optional sections")
	}
}

func TestBuildLetterPromptDeterministic(t *testing.T) {
	in := baseInput()
	in.ResumeText = "resume"
	if BuildLetterPrompt(in) != BuildLetterPrompt(in) {
		t.Fatalf("expected identical prompts for identical input")
	}
}

func TestBuildLetterPromptDoesNotEscapeText(t *testing.T) {
	in := baseInput()
	in.Company = "Smith & Sons <Ltd>"
	prompt := BuildLetterPrompt(in)
	if !strings.Contains(prompt, "Company: Smith & Sons <Ltd>") {
		t.Fatalf("expected company verbatim, got:\n%s", prompt)
	}
}

func TestPromptHash(t *testing.T) {
	a := PromptHash(BuildLetterPrompt(baseInput()))
	if a != PromptHash(BuildLetterPrompt(baseInput())) {
		t.Fatalf("expected deterministic prompt hash")
	}
	in := baseInput()
	in.JobPosting = "different job"
	if a == PromptHash(BuildLetterPrompt(in)) {
		t.Fatalf("expected prompt hash to change when input changes")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(a))
	}
}

func TestGenerationErrorMessage(t *testing.T) {
	err := &GenerationError{Provider: "anthropic", Kind: KindMissingCredential}
	if err.Error() != "anthropic: API key is not configured" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
