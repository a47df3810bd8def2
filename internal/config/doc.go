// Package config loads pipeline settings.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional TOML file, and ALBUM_* environment variables. Lambdas normally run
// on defaults plus environment; the CLI usually reads a file.
package config
