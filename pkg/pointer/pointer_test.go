// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package pointer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wayneaws/studenthub/pkg/pointer"
)

func TestClone(t *testing.T) {
	assert.Nil(t, pointer.Clone[time.Time](nil))

	original := pointer.To(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	clone := pointer.Clone(original)

	assert.Equal(t, *original, *clone)
	assert.NotSame(t, original, clone)

	*clone = clone.Add(time.Hour)
	assert.NotEqual(t, *original, *clone)
}
