// Package config provides configuration structures for a11yscan: crawl
// budgets and limits, output preferences, the YAML configuration file with
// per-site overrides, and the frontier scoring policy.
package config
