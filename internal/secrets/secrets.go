// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package secrets keeps endpoint credentials out of the config file. Config
// values of the form keyring://<service>/<key> are resolved from the OS
// keyring after load.
package secrets

// DefaultService is the keyring service sparqlboard stores under.
const DefaultService = "sparqlboard"

// Store holds secrets for one keyring service.
type Store interface {
	// Service is the keyring service this store reads and writes.
	Service() string

	// Set saves value under key, replacing any previous value.
	Set(key, value string) error

	// Get returns the value for key. A missing key carries
	// CodeSecretNotFound.
	Get(key string) (string, error)

	// Delete removes key. A missing key carries CodeSecretNotFound.
	Delete(key string) error

	// Keys lists stored key names in sorted order.
	Keys() ([]string, error)
}
