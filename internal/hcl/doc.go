// Package hcl reads and writes design projects in HCL. The Loader parses
// every .hcl file of a project into a format-agnostic model.Project; the
// Writer emits a model.Project back in the same block schema so that edits
// made through the libraries, such as renames, can be saved.
package hcl
