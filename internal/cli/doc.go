// Package cli turns command-line arguments into an app.Config. Usage errors
// come back as *ExitError with exit code 2.
package cli
