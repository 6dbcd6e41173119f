// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the plain data records of a hardware design: config
// items, bundles and modules. The records carry no behavior beyond small
// structural helpers; every rule about them lives in the libraries that own
// them (configlib, bundlelib, modulelib).
//
// # Core Concepts
//
//   - ConfigItem: a named integer constant whose value is an expression over
//     other config items.
//
//   - BundleItem: a named aggregate type. It is an alias (exactly one member),
//     an enum (named integer constants) or a struct (ordered members).
//
//   - Module: a reusable component with typed request/service ports, typed pipe
//     ports, storages, child instances and the connections between them.
//
//   - Project: everything loaded from one design directory, in the
//     format-agnostic shape the libraries consume.
//
// Expressions are kept as raw strings. Parsing and evaluation are deferred to
// the libraries so that a record can be stored, renamed and written back
// without losing the user's spelling.
package model
