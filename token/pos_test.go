// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rive-lang/rivec/token"
)

func TestSpanMergeIsSmallestEnclosing(t *testing.T) {
	a := token.NewSpan(token.Pos{Line: 1, Col: 1}, token.Pos{Line: 1, Col: 5})
	b := token.NewSpan(token.Pos{Line: 1, Col: 3}, token.Pos{Line: 2, Col: 2})

	merged := token.Merge(a, b)

	assert.Equal(t, token.Pos{Line: 1, Col: 1}, merged.Start)
	assert.Equal(t, token.Pos{Line: 2, Col: 2}, merged.End)
}

func TestSpanMergeWithItselfIsIdentity(t *testing.T) {
	a := token.NewSpan(token.Pos{Line: 4, Col: 2}, token.Pos{Line: 4, Col: 9})

	assert.Equal(t, a, token.Merge(a, a))
}

func TestSpanContains(t *testing.T) {
	s := token.NewSpan(token.Pos{Line: 2, Col: 3}, token.Pos{Line: 2, Col: 10})

	assert.True(t, s.Contains(token.Pos{Line: 2, Col: 5}))
	assert.False(t, s.Contains(token.Pos{Line: 2, Col: 1}))
	assert.False(t, s.Contains(token.Pos{Line: 3, Col: 5}))
}
