// Package config reads the optional settings file. Settings can be written in
// HCL or YAML; the format is picked from the file extension and both decode
// into the same format-agnostic Settings model, which the CLI merges under
// any flags given explicitly.
package config
