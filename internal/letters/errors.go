package letters

// InputError carries a user-facing validation message. Its Error text is
// the message itself so the classifier can pass it through unchanged.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// ParseErrorKind identifies why a completion could not be turned into a bundle.
type ParseErrorKind string

const (
	KindNoJSONFound      ParseErrorKind = "no_json_found"
	KindInvalidJSON      ParseErrorKind = "invalid_json"
	KindIncompleteBundle ParseErrorKind = "incomplete_bundle"
)

// ParseError reports a malformed model response.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	var msg string
	switch e.Kind {
	case KindNoJSONFound:
		msg = "could not find JSON in AI response"
	case KindIncompleteBundle:
		msg = "invalid letter structure in AI response"
	default:
		msg = "could not parse AI response"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
