// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which links a loaded record back to the
// file it was declared in so that validation errors can name the file.
package model

import "fmt"

// FSInfo stores file system metadata of a declaration.
type FSInfo struct {
	FilePath string
	Line     int
}

func NewFSInfo(filePath string, line int) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
		Line:     line,
	}
}

// String renders "path:line", or the empty string for a nil receiver.
func (f *FSInfo) String() string {
	if f == nil {
		return ""
	}
	if f.Line <= 0 {
		return f.FilePath
	}
	return fmt.Sprintf("%s:%d", f.FilePath, f.Line)
}
