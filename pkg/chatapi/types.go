package chatapi

import "encoding/json"

// ChatRequest is the body POSTed to the chat endpoint.
type ChatRequest struct {
	Message       string `json:"message"`
	GenerateImage bool   `json:"generateImage"`
}

// ChatResponse mirrors the backend's reply. Every field is optional; a missing or null
// field decodes to nil.
type ChatResponse struct {
	Message          *string `json:"message,omitempty"`
	Blocked          *bool   `json:"blocked,omitempty"`
	Error            *string `json:"error,omitempty"`
	FullSummary      *string `json:"fullSummary,omitempty"`
	RecommendedTitle *string `json:"recommendedTitle,omitempty"`
	ImageURL         *string `json:"imageUrl,omitempty"`
	ImageB64         *string `json:"imageB64,omitempty"`
}

// decodeChatResponse reads every field on its own, so a field of an unexpected type is
// treated as absent instead of discarding the rest of the body. The names of such fields
// are returned in skipped. Only a body that is not a JSON object is an error.
func decodeChatResponse(data []byte) (r ChatResponse, skipped []string, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ChatResponse{}, nil, err
	}

	str := func(name string) *string {
		raw, ok := fields[name]
		if !ok {
			return nil
		}
		var v *string
		if json.Unmarshal(raw, &v) != nil {
			skipped = append(skipped, name)
			return nil
		}
		return v
	}

	r.Message = str("message")
	r.Error = str("error")
	r.FullSummary = str("fullSummary")
	r.RecommendedTitle = str("recommendedTitle")
	r.ImageURL = str("imageUrl")
	r.ImageB64 = str("imageB64")
	if raw, ok := fields["blocked"]; ok {
		if json.Unmarshal(raw, &r.Blocked) != nil {
			r.Blocked = nil
			skipped = append(skipped, "blocked")
		}
	}
	return r, skipped, nil
}

// IsBlocked reports whether the backend flagged the message for moderation.
func (r ChatResponse) IsBlocked() bool {
	return r.Blocked != nil && *r.Blocked
}

// HasError reports whether the backend returned a non-empty application error.
func (r ChatResponse) HasError() bool {
	return present(r.Error)
}

// HasSummary is true when both the full summary and the title it belongs to came back.
func (r ChatResponse) HasSummary() bool {
	return present(r.FullSummary) && present(r.RecommendedTitle)
}

// HasImage is true when either image representation is set.
func (r ChatResponse) HasImage() bool {
	return present(r.ImageURL) || present(r.ImageB64)
}

// ChatResult pairs the HTTP status with the best-effort decoded body.
type ChatResult struct {
	StatusCode int
	Body       ChatResponse
}

// OK reports a 2xx status.
func (r *ChatResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HealthResponse is the health endpoint's body.
type HealthResponse struct {
	OK    *bool `json:"ok,omitempty"`
	Count *int  `json:"count,omitempty"`
}

// Str dereferences an optional string, returning "" for nil.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func present(s *string) bool {
	return s != nil && *s != ""
}
