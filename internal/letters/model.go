package letters

// DefaultTone is applied when the caller leaves tone blank. Tone is carried
// through for logging only; every generation returns all three variants.
const DefaultTone = "professional"

// LetterRequest is the validated input for one generation.
type LetterRequest struct {
	ResumeText    string
	JobPosting    string
	Company       string
	Position      string
	PersonalNotes string
	Tone          string
}

// LetterVariant is one letter in a given tone.
type LetterVariant struct {
	Content string `json:"content"`
	Tone    string `json:"tone"`
}

// LetterBundle is the parsed model output: three variants plus tips.
type LetterBundle struct {
	Professional      LetterVariant `json:"professional"`
	Friendly          LetterVariant `json:"friendly"`
	Enthusiastic      LetterVariant `json:"enthusiastic"`
	CustomizationTips []string      `json:"customizationTips"`
}

// GenerationMetadata records which model produced a bundle and its token usage.
type GenerationMetadata struct {
	Model      string `json:"model"`
	TokensUsed int    `json:"tokensUsed"`
}

// Result is what a successful generation returns to the caller.
type Result struct {
	Bundle       LetterBundle
	Generation   GenerationMetadata
	HasResume    bool
	ResumeLength int
	Company      string
	Position     string
}
