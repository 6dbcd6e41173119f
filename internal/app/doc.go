// Package app loads a design project and runs one command against it. It
// resolves settings, builds the logger, wires the design libraries and hands
// control to the console dispatcher.
package app
