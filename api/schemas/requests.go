// api/schemas/requests.go
package schemas

// HTTP request and response bodies for the automation API.

// SessionResponse describes a browser session: returned by session create
// and status lookups.
type SessionResponse struct {
	SessionID  string  `json:"session_id"`
	Active     bool    `json:"active"`
	CurrentURL *string `json:"current_url,omitempty"`
	CreatedAt  *string `json:"created_at,omitempty"`
}

// NavigateRequest directs a session to load a URL.
type NavigateRequest struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// NavigateResponse reports the outcome of a navigation, echoing the URL.
type NavigateResponse struct {
	Success    bool   `json:"success"`
	CurrentURL string `json:"current_url"`
}

// InteractionRequest submits one browser action against a session.
type InteractionRequest struct {
	SessionID string        `json:"session_id"`
	Action    BrowserAction `json:"action"`
}

// InteractionResponse carries the action's textual output.
type InteractionResponse struct {
	Success bool    `json:"success"`
	Result  *string `json:"result,omitempty"`
}

// ExtractRequest evaluates one CSS selector against a session's current
// page.
type ExtractRequest struct {
	SessionID string `json:"session_id"`
	Selector  string `json:"selector"`
}

// ExtractResponse returns the matched elements' text plus a count.
type ExtractResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
}

// AutomationRequest asks for a free-form task to be planned and executed
// against a session.
type AutomationRequest struct {
	SessionID       string                 `json:"session_id"`
	TaskDescription string                 `json:"task_description"`
	TargetURL       *string                `json:"target_url,omitempty"`
	Context         map[string]interface{} `json:"context,omitempty"`
}

// AutomationResponse reports per-step outcomes for an executed plan.
type AutomationResponse struct {
	Success bool         `json:"success"`
	TaskID  string       `json:"task_id"`
	Results []TaskResult `json:"results"`
}

// ProductExtractionRequest asks for a full product extraction run. When
// SessionID is absent a temporary session is created and torn down
// implicitly.
type ProductExtractionRequest struct {
	URL       string  `json:"url"`
	SessionID *string `json:"session_id,omitempty"`
}

// ProductExtractionResponse is the outcome of a product extraction run.
type ProductExtractionResponse struct {
	Success          bool         `json:"success"`
	Product          *ProductInfo `json:"product,omitempty"`
	Error            *string      `json:"error,omitempty"`
	ExtractionTimeMS int64        `json:"extraction_time_ms"`
}

// CleanupResponse reports how many sessions a bulk cleanup removed.
type CleanupResponse struct {
	Success      bool `json:"success"`
	ClearedCount int  `json:"cleared_count"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	Timestamp      string `json:"timestamp"`
}

// ErrorResponse is the uniform error envelope for every endpoint.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}
