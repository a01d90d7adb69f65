// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/typesys"
)

func TestBuiltinTypesRegistered(t *testing.T) {
	r := typesys.NewRegistry()

	_, ok := r.Get(typesys.Int)
	require.True(t, ok)

	id, ok := r.GetByName("Int")
	require.True(t, ok)
	assert.Equal(t, typesys.Int, id)
}

func TestRegistryIdentity(t *testing.T) {
	r := typesys.NewRegistry()

	arr := r.CreateArray(typesys.Int, 5)
	meta, ok := r.Get(arr)
	require.True(t, ok)
	assert.Equal(t, arr, meta.ID)
}

func TestTypeCompatibilityLaws(t *testing.T) {
	r := typesys.NewRegistry()

	assert.True(t, r.AreCompatible(typesys.Int, typesys.Int))
	assert.False(t, r.AreCompatible(typesys.Int, typesys.Float))

	optInt := r.CreateOptional(typesys.Int)
	assert.True(t, r.AreCompatible(optInt, typesys.Int), "T widens to Optional<T>")
	assert.True(t, r.AreCompatible(optInt, typesys.Null), "Null widens to any Optional<_>")
	assert.False(t, r.AreCompatible(typesys.Int, optInt), "no implicit narrowing")
	assert.False(t, r.AreCompatible(typesys.Int, typesys.Null))
}

func TestArrayCreation(t *testing.T) {
	r := typesys.NewRegistry()

	id := r.CreateArray(typesys.Int, 5)
	meta, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, typesys.KArray, meta.Kind.Tag)
	assert.Equal(t, typesys.Copy, meta.Strategy, "array of Copy elements is Copy")

	id2 := r.CreateArray(typesys.Text, 5)
	meta2, _ := r.Get(id2)
	assert.Equal(t, typesys.CoW, meta2.Strategy, "array of non-Copy elements is CoW")
}

func TestListAndMapAlwaysCoW(t *testing.T) {
	r := typesys.NewRegistry()

	list := r.CreateList(typesys.Int)
	meta, _ := r.Get(list)
	assert.Equal(t, typesys.CoW, meta.Strategy)

	m := r.CreateMap(typesys.Text, typesys.Int)
	metaMap, _ := r.Get(m)
	assert.Equal(t, typesys.CoW, metaMap.Strategy)
}

func TestFunctionCreation(t *testing.T) {
	r := typesys.NewRegistry()

	id := r.CreateFunction([]typesys.ID{typesys.Int, typesys.Int}, typesys.Int)
	meta, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, typesys.KFunction, meta.Kind.Tag)
	assert.Equal(t, typesys.Copy, meta.Strategy)
}

func TestListMethodGet(t *testing.T) {
	r := typesys.NewRegistry()

	list := r.CreateList(typesys.Int)
	sig, ok := r.GetMethod(list, "get")
	require.True(t, ok)
	assert.Equal(t, typesys.Int, sig.ReturnType, "List.get returns the bare element type")

	_, ok = r.GetMethod(list, "len")
	assert.True(t, ok)
}

func TestMapMethodGet(t *testing.T) {
	r := typesys.NewRegistry()

	m := r.CreateMap(typesys.Text, typesys.Int)
	sig, ok := r.GetMethod(m, "get")
	require.True(t, ok)
	assert.Equal(t, typesys.Int, sig.ReturnType)
}

func TestDisplayNameRendersOptionalAsQuestionMark(t *testing.T) {
	r := typesys.NewRegistry()

	opt := r.CreateOptional(typesys.Int)
	assert.Equal(t, "Int?", r.TypeName(opt))
}

func TestExplicitUniqueNeverChanges(t *testing.T) {
	r := typesys.NewRegistry()

	id := r.CreateStruct("Handle", nil, true)
	meta, _ := r.Get(id)
	assert.True(t, meta.IsMoveOnly())
}

func TestCloneSharesIDSpace(t *testing.T) {
	r := typesys.NewRegistry()
	id := r.CreateArray(typesys.Int, 3)

	clone := r.Clone()
	meta, ok := clone.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, meta.ID)
}
