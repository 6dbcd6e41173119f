// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file lists the basic member types and the reserved names.
package model

// UintType is the declared type of a member whose bit width is given by a
// length expression.
const UintType = "__uint__"

// TopInterface names the enclosing module in stall and update-sequence
// connections.
const TopInterface = "__top__"

var basicTypes = map[string]struct{}{
	"bool":   {},
	"int8":   {},
	"uint8":  {},
	"int16":  {},
	"uint16": {},
	"int32":  {},
	"uint32": {},
	"int64":  {},
	"uint64": {},
	"float":  {},
	"double": {},
}

// IsBasicType reports whether t is one of the built-in scalar types. The
// length-carrying UintType is not a basic type on its own.
func IsBasicType(t string) bool {
	_, ok := basicTypes[t]
	return ok
}
