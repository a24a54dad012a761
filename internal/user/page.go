// AngelaMos | 2026
// page.go

package user

import (
	"fmt"
	"math"
	"strings"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

const (
	DefaultSortField = "id"
	DefaultPageSize  = 10
	MaxPageSize      = 100
)

// sortColumns maps API sort keys to columns. Anything else is rejected
// before a query is built.
var sortColumns = map[string]string{
	"id":        "id",
	"userName":  "user_name",
	"email":     "email",
	"fullName":  "full_name",
	"role":      "role",
	"active":    "active",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type Sort struct {
	Field string
	Desc  bool
}

func (s Sort) column() string {
	if col, ok := sortColumns[s.Field]; ok {
		return col
	}
	return sortColumns[DefaultSortField]
}

func (s Sort) direction() string {
	if s.Desc {
		return "DESC"
	}
	return "ASC"
}

func (s Sort) String() string {
	return s.Field + "," + strings.ToLower(s.direction())
}

// ParseSort reads "field" or "field,asc|desc". An empty string yields the
// default id ascending order.
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Sort{Field: DefaultSortField}, nil
	}

	field, dir, _ := strings.Cut(raw, ",")
	field = strings.TrimSpace(field)

	if _, ok := sortColumns[field]; !ok {
		return Sort{}, fmt.Errorf(
			"unsupported sort property %q: %w",
			field,
			core.ErrInvalidInput,
		)
	}

	sort := Sort{Field: field}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		sort.Desc = true
	default:
		return Sort{}, fmt.Errorf(
			"unsupported sort direction %q: %w",
			dir,
			core.ErrInvalidInput,
		)
	}

	return sort, nil
}

// PageRequest is zero-based. Callers bound Size to [1, MaxPageSize].
type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// MaxPage is the highest page number whose offset, and the offset of the
// page after it, still fits in an int for the given size.
func MaxPage(size int) int {
	if size < 1 {
		size = 1
	}
	return math.MaxInt/size - 1
}

type Page struct {
	Items         []User
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

func NewPage(items []User, req PageRequest, total int64) Page {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page{
		Items:         items,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          req.Page >= totalPages-1,
	}
}
