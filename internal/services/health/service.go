package health

// Status is the payload served by the health endpoint.
type Status struct {
	OK            bool   `json:"ok"`
	Provider      string `json:"provider"`
	LLMConfigured bool   `json:"llmConfigured"`
	ObjectStore   string `json:"objectStore"`
}

// Service encapsulates health-related checks.
type Service struct {
	provider      string
	llmConfigured bool
	objectStore   string
}

// NewService constructs a new health service.
func NewService(provider string, llmConfigured bool, objectStore string) *Service {
	return &Service{provider: provider, llmConfigured: llmConfigured, objectStore: objectStore}
}

// Status reports liveness and whether an LLM credential is present. A
// missing credential does not make the service unhealthy; generation
// requests fail with a configuration error instead.
func (s *Service) Status() Status {
	return Status{
		OK:            true,
		Provider:      s.provider,
		LLMConfigured: s.llmConfigured,
		ObjectStore:   s.objectStore,
	}
}
