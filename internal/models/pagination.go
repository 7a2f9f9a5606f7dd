package models

import "math"

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder treats anything but "asc" as descending.
func ParseSortOrder(s string) SortOrder {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

// ListParams are the common pagination, search and sort parameters.
// Limit 0 means "return everything".
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// Offset returns the number of rows to skip for the current page. It
// saturates at math.MaxInt instead of overflowing.
func (p ListParams) Offset() int {
	if p.Limit <= 0 || p.Page <= 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Page is one page of a listing.
type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// NewPage builds page metadata; limit 0 collapses everything into one page.
func NewPage[T any](data []T, params ListParams, total int) Page[T] {
	if data == nil {
		data = []T{}
	}
	if params.Limit <= 0 {
		return Page[T]{Data: data, Page: 1, TotalPages: 1, Total: total}
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	return Page[T]{
		Data:       data,
		Page:       page,
		TotalPages: pageCount(total, params.Limit),
		Total:      total,
	}
}

func pageCount(total, limit int) int {
	n := total / limit
	if total%limit != 0 {
		n++
	}
	return n
}
