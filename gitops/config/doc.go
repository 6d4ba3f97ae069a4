// Package config loads publisher settings from an optional YAML file.
// Values absent from the file keep their defaults; command-line flags are
// applied on top by the caller. Tokens are deliberately not accepted in
// the file.
package config
