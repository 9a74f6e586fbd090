// Package config provides configuration structures and utilities for linkscout.
// It defines the run settings built from CLI flags, the optional YAML
// configuration file with per-site request settings, and the target list
// loader.
package config
