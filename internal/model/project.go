// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Project, the unit the loader produces and the writer consumes.
package model

// Project aggregates every declaration loaded from a design directory.
type Project struct {
	Configs []ConfigItem
	Bundles []TaggedBundle
	Modules []*Module
}

// NewProject creates and returns an initialized Project.
func NewProject() *Project {
	return &Project{
		Configs: []ConfigItem{},
		Bundles: []TaggedBundle{},
		Modules: []*Module{},
	}
}
