package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/devicehub/devicehub/internal/shared/constants"
)

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"valid values", 2, 20, 2, 20},
		{"page below one", 0, 20, constants.DefaultPage, 20},
		{"page size below one", 1, -1, 1, constants.DefaultPageSize},
		{"page size capped", 1, 500, 1, constants.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ValidatePagination(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", constants.DefaultPage, constants.DefaultPageSize},
		{"page=3&page_size=10", 3, 10},
		{"page=abc&page_size=0", constants.DefaultPage, constants.DefaultPageSize},
		{"page_size=1000", constants.DefaultPage, constants.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/devices?"+tt.query, nil)

			p := ParsePagination(c)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestApplyPaginationAndTotalPages(t *testing.T) {
	start, end := ApplyPagination(45, 3, 20)
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	start, end = ApplyPagination(5, 2, 20)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)

	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 3, TotalPages(41, 20))
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}
