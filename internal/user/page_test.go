// AngelaMos | 2026
// page_test.go

package user

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		raw  string
		want Sort
	}{
		{"", Sort{Field: "id"}},
		{"  ", Sort{Field: "id"}},
		{"userName", Sort{Field: "userName"}},
		{"email,asc", Sort{Field: "email"}},
		{"createdAt,desc", Sort{Field: "createdAt", Desc: true}},
		{"role, DESC", Sort{Field: "role", Desc: true}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSort(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSortRejects(t *testing.T) {
	for _, raw := range []string{"password", "user_name", "email,sideways", "; DROP TABLE users"} {
		_, err := ParseSort(raw)
		assert.ErrorIs(t, err, core.ErrInvalidInput, raw)
	}
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "id,asc", Sort{Field: "id"}.String())
	assert.Equal(t, "fullName,desc", Sort{Field: "fullName", Desc: true}.String())
	assert.Equal(t, "full_name", Sort{Field: "fullName"}.column())
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		req        PageRequest
		total      int64
		totalPages int
		first      bool
		last       bool
	}{
		{"empty", PageRequest{Page: 0, Size: 10}, 0, 0, true, true},
		{"single page", PageRequest{Page: 0, Size: 10}, 7, 1, true, true},
		{"exact fit", PageRequest{Page: 1, Size: 5}, 10, 2, false, true},
		{"middle", PageRequest{Page: 1, Size: 3}, 10, 4, false, false},
		{"past the end", PageRequest{Page: 9, Size: 3}, 10, 4, false, true},
		{"largest page", PageRequest{Page: math.MaxInt, Size: 100}, 2, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(nil, tt.req, tt.total)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.first, p.First)
			assert.Equal(t, tt.last, p.Last)
			assert.Equal(t, tt.total, p.TotalElements)
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 0, Size: 20}.Offset())
	assert.Equal(t, 40, PageRequest{Page: 2, Size: 20}.Offset())
}

func TestMaxPage(t *testing.T) {
	for _, size := range []int{1, 7, DefaultPageSize, MaxPageSize} {
		last := MaxPage(size)
		assert.Positive(t, last, size)
		assert.Positive(t, PageRequest{Page: last, Size: size}.Offset(), size)
		assert.LessOrEqual(t, last, math.MaxInt/size-1, size)
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("PROJECT_MANAGER")
	require.NoError(t, err)
	assert.Equal(t, RoleProjectManager, role)

	for _, raw := range []string{"OWNER", "project_manager", "Developer", " TESTER", ""} {
		_, err = ParseRole(raw)
		assert.ErrorIs(t, err, core.ErrInvalidInput, raw)
	}
}
