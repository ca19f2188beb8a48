// Package dedupe provides a TTL seen-cache for duplicate event suppression.
package dedupe
