package services

import (
	"fmt"
	"math"
	"strings"

	"social-go/internal/apperrors"
	"social-go/internal/storage"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// SortOrder orders a listing by creation time.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" or "desc" in any case; empty means desc.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return SortDesc, nil
	case string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	}
	return "", apperrors.ValidationFields("Invalid sort order", map[string]string{"sort": "must be asc or desc"})
}

// Page is a validated 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage validates number >= 1 and 1 <= size <= maxSize. A maxSize <= 0
// falls back to MaxPageSize. Pages whose offset would overflow int are rejected.
func NewPage(number, size, maxSize int) (Page, error) {
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	fields := map[string]string{}
	if number < 1 {
		fields["page"] = "must be a positive integer"
	}
	if size < 1 || size > maxSize {
		fields["pageSize"] = fmt.Sprintf("must be between 1 and %d", maxSize)
	} else if number > 1 && number-1 > math.MaxInt/size {
		fields["page"] = "is out of range"
	}
	if len(fields) > 0 {
		return Page{}, apperrors.ValidationFields("Invalid pagination parameters", fields)
	}
	return Page{Number: number, Size: size}, nil
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Query resolves p into a storage window.
func (p Page) Query(order SortOrder) storage.PageQuery {
	return storage.PageQuery{Offset: p.Offset(), Limit: p.Size, Desc: order != SortAsc}
}
