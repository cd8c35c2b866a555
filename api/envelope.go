package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the uniform wrapper every backend response carries, regardless
// of HTTP status. Paginated list endpoints add the Total/Page/PageSize
// fields; they stay nil everywhere else.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`

	Total    *int64 `json:"total,omitempty"`
	Page     *int   `json:"page,omitempty"`
	PageSize *int   `json:"page_size,omitempty"`
}

// Success reports whether the envelope carries an application-level success
// code. The backend uses both 0 and 200 depending on the endpoint's age.
func (e *Envelope) Success() bool {
	return e.Code == 0 || e.Code == 200
}

// PageMeta is the pagination metadata of a list envelope.
type PageMeta struct {
	Total    int64
	Page     int
	PageSize int
}

func (e *Envelope) pageMeta() PageMeta {
	meta := PageMeta{}
	if e.Total != nil {
		meta.Total = *e.Total
	}
	if e.Page != nil {
		meta.Page = *e.Page
	}
	if e.PageSize != nil {
		meta.PageSize = *e.PageSize
	}
	return meta
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("api: malformed envelope: %w", err)
	}
	return &env, nil
}
