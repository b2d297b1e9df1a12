// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan samples a website with a bounded crawl and reports
// accessibility barriers such as images without alt text and form
// controls without labels.
//
// Usage:
//
//	a11yscan scan <site>
//	a11yscan compare <site>
//
// See --help for all available options.
package main

// main is the entry point for a11yscan.
func main() {
	Execute()
}
