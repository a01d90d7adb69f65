// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package rivec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rivec "github.com/rive-lang/rivec"
)

func TestCompile(t *testing.T) {
	out, err := rivec.Compile(`fun main() { print("Hello") }`)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "fn main()"))
}

func TestCheck(t *testing.T) {
	assert.NoError(t, rivec.Check(`fun main() { }`))
	assert.Error(t, rivec.Check(`fun main() { let x: Int = "s" }`))
}
