// Package cache implements the file-per-entry key/value store. Every key maps to
// <StoragePath>/<base64url(key)>, and each file holds a two-line record: an
// expiration marker (-1 or a Unix timestamp) followed by the serialized value.
// Writes go through temp file + rename so readers never observe partial records,
// and expiry is lazy: any read that finds a stale record removes the file.
// The directory is validated on every call since external actors may change it.
package cache
