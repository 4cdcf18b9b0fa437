package letters

var writingTips = []string{
	"Start with a strong opening that shows genuine interest",
	"Research the company and mention specific details",
	"Connect your experience to the job requirements",
	"Show enthusiasm for the role and company",
	"Keep it concise (one page maximum)",
	"Use specific examples and achievements",
	"End with a clear call to action",
	"Proofread carefully for errors",
}

// Tips returns the static letter-writing tips.
func Tips() []string {
	return append([]string(nil), writingTips...)
}
