package entity

import (
	"net/url"
	"strconv"
)

// Response is the envelope shared by every API endpoint.
type Response[T any] struct {
	Detail string   `json:"detail"`
	Status string   `json:"status"`
	Errors []string `json:"errors,omitempty"`
	Data   T        `json:"data"`
}

// List is the pagination wrapper nested inside the envelope of list endpoints.
type List[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

// Message extracts the human-readable message from an error envelope,
// preferring the first entry of errors over detail.
func (r *Response[T]) Message() string {
	if len(r.Errors) > 0 && r.Errors[0] != "" {
		return r.Errors[0]
	}

	return r.Detail
}

// ListParams are the standard pagination query parameters.
type ListParams struct {
	Page     int
	PageSize int
}

// Query renders the pagination parameters, omitting zero values.
func (p ListParams) Query() url.Values {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(p.PageSize))
	}

	return values
}

// Query renders course-list filters on top of the pagination parameters.
func (p CourseListParams) Query() url.Values {
	values := p.ListParams.Query()
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if p.Category != "" {
		values.Set("category", p.Category)
	}
	if p.Status != "" {
		values.Set("status", string(p.Status))
	}

	return values
}
