// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package slice_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"GO", "SQL"}, slice.Map([]string{"go", "sql"}, strings.ToUpper))
}

func TestFilter(t *testing.T) {
	even := slice.Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)
}

func TestEmptyResultsEncodeAsArrays(t *testing.T) {
	none := slice.Filter([]int{1, 3}, func(n int) bool { return n%2 == 0 })
	encoded, err := json.Marshal(map[string]any{
		"filtered": none,
		"mapped":   slice.Map[int, string](nil, func(int) string { return "" }),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"filtered":[],"mapped":[]}`, string(encoded))
}
