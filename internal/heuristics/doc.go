// Package heuristics extracts structural accessibility facts from static
// page markup.
//
// For each page the Analyzer counts images and images without an alt
// attribute, form controls and controls without an accessible name, and
// forms. It also splits the page's links into internal and external sets
// relative to the site root.
//
// No script is executed. Content rendered by JavaScript is invisible to the
// analyzer; the aggregate package flags sites where no links were found.
package heuristics
