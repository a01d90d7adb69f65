// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package typesys

// Metadata is everything the registry knows about one type: its
// structure, how it is managed in memory, and whether a user marked it
// @unique explicitly.
//
// Invariant: Strategy is determined by Kind unless ExplicitUnique is
// set; once ExplicitUnique is set it never changes (enforced by the
// registry never overwriting an existing entry's ExplicitUnique).
type Metadata struct {
	ID             ID
	Kind           Kind
	Strategy       Strategy
	ExplicitUnique bool
}

func primitiveMetadata(id ID, kind Kind) Metadata {
	return Metadata{ID: id, Kind: kind, Strategy: ForPrimitive(kind.DisplayName())}
}

func compositeMetadata(id ID, kind Kind, strategy Strategy) Metadata {
	return Metadata{ID: id, Kind: kind, Strategy: strategy}
}

func userDefinedMetadata(id ID, kind Kind, strategy Strategy, explicitUnique bool) Metadata {
	return Metadata{ID: id, Kind: kind, Strategy: strategy, ExplicitUnique: explicitUnique}
}

// IsCopy reports whether values of this type are implicitly copyable.
func (m Metadata) IsCopy() bool {
	return m.Strategy.IsCopy()
}

// UsesRc reports whether values of this type are reference-counted.
func (m Metadata) UsesRc() bool {
	return m.Strategy.UsesRc()
}

// IsMoveOnly reports whether this type must be moved, never shared.
func (m Metadata) IsMoveOnly() bool {
	return m.Strategy.IsUnique() || m.ExplicitUnique
}
