// Package cache provides the TTL result cache that makes repeated audits of
// one site within the TTL return the same report without crawling again.
package cache
