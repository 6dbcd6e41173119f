// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines ConfigItem, the record behind every global and local
// config constant.
package model

// ConfigItem is a named integer constant. Value is an expression string that
// may reference other config items by name.
type ConfigItem struct {
	Name    string
	Value   string
	Comment string
	Group   string

	Source *FSInfo
}
