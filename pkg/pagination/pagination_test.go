// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wayneaws/studenthub/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query  string
		params pagination.Params
	}{
		{"", pagination.Params{Page: 1, Limit: 20}},
		{"?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"?page=0&limit=-4", pagination.Params{Page: 1, Limit: 20}},
		{"?page=two&limit=ten", pagination.Params{Page: 1, Limit: 20}},
		{"?limit=500", pagination.Params{Page: 1, Limit: pagination.MaxLimit}},
	}

	for _, tt := range tests {
		request := httptest.NewRequest("GET", "/admin/users"+tt.query, nil)
		assert.Equal(t, tt.params, pagination.FromRequest(request), tt.query)
	}
}

func TestMeta(t *testing.T) {
	params := pagination.Params{Page: 2, Limit: 20}
	assert.Equal(t, 20, params.Offset())

	assert.Equal(t, pagination.Meta{
		Page: 2, Limit: 20, Total: 45, TotalPages: 3, HasNextPage: true, HasPrevPage: true,
	}, params.Meta(45))

	assert.Equal(t, pagination.Meta{
		Page: 1, Limit: 20, Total: 0, TotalPages: 0,
	}, pagination.Params{Page: 1, Limit: 20}.Meta(0))
}
