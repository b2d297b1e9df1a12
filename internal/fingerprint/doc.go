// Package fingerprint digests the core counters of a scan and compares a
// scan with the previous scan of the same site.
//
// The digest is xxhash over five counters. It answers "did anything
// change" and nothing more. The Store is process-local; durable history
// lives in the evidence database.
package fingerprint
