// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the bundle records: the aggregate types a design uses for
// ports, pipes and storages.
package model

// BundleKind distinguishes the three shapes a bundle can take.
type BundleKind int

const (
	BundleStruct BundleKind = iota
	BundleAlias
	BundleEnum
)

func (k BundleKind) String() string {
	switch k {
	case BundleAlias:
		return "alias"
	case BundleEnum:
		return "enum"
	default:
		return "struct"
	}
}

// BundleMember is one field of a struct or alias bundle. It is also the shape
// of a module storage declaration.
//
// A member with a non-empty UintLength is an unsigned integer of that many
// bits; its Type, if set, must be UintType. Otherwise Type is a basic type or
// the name of another bundle. Dims holds array dimension expressions, outer
// first.
type BundleMember struct {
	Name       string
	Type       string
	UintLength string
	Value      string
	Comment    string
	Dims       []string
}

// EnumMember is one named constant of an enum bundle. An empty Value means
// "previous value plus one".
type EnumMember struct {
	Name    string
	Value   string
	Comment string
}

// BundleItem is a named bundle definition.
type BundleItem struct {
	Name        string
	Comment     string
	IsAlias     bool
	Members     []BundleMember
	EnumMembers []EnumMember

	Source *FSInfo
}

// Kind classifies the bundle. Alias wins over enum when both are set; the
// library reports that combination as an error.
func (b *BundleItem) Kind() BundleKind {
	switch {
	case b.IsAlias:
		return BundleAlias
	case len(b.EnumMembers) > 0:
		return BundleEnum
	default:
		return BundleStruct
	}
}

// Clone returns a deep copy of the bundle.
func (b BundleItem) Clone() BundleItem {
	out := b
	if b.Members != nil {
		out.Members = make([]BundleMember, len(b.Members))
		for i, m := range b.Members {
			out.Members[i] = m.Clone()
		}
	}
	if b.EnumMembers != nil {
		out.EnumMembers = append([]EnumMember(nil), b.EnumMembers...)
	}
	if b.Source != nil {
		src := *b.Source
		out.Source = &src
	}
	return out
}

// Clone returns a deep copy of the member.
func (m BundleMember) Clone() BundleMember {
	out := m
	if m.Dims != nil {
		out.Dims = append([]string(nil), m.Dims...)
	}
	return out
}

// TaggedBundle is a bundle definition as declared in a project, together
// with the tags it is filed under.
type TaggedBundle struct {
	Item BundleItem
	Tags []string
}
