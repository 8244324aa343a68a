// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package secrets

import (
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const scheme = "keyring://"

// IsURI reports whether value is a keyring reference.
func IsURI(value string) bool {
	return strings.HasPrefix(value, scheme)
}

// URI builds the reference for key in service.
func URI(service, key string) string {
	return scheme + service + "/" + key
}

// ParseURI splits keyring://service/key. The key may itself contain
// slashes.
func ParseURI(uri string) (service, key string, err error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", sberr.Errorf(sberr.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}
	service, key, ok = strings.Cut(rest, "/")
	if !ok || service == "" || key == "" {
		return "", "", sberr.Errorf(sberr.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/key", uri)
	}
	return service, key, nil
}

// Resolve returns the secret a keyring URI points at, or value unchanged
// when it is not a URI. The URI's service must match the store's. A store
// error keeps its own code, so a missing key reports CodeSecretNotFound;
// uncoded store errors carry CodeSecretResolveFailure.
func Resolve(store Store, value string) (string, error) {
	if !IsURI(value) {
		return value, nil
	}
	service, key, err := ParseURI(value)
	if err != nil {
		return "", err
	}
	if service != store.Service() {
		return "", sberr.Errorf(sberr.CodeSecretInvalidInput,
			"keyring URI %q names service %q, expected %q", value, service, store.Service())
	}
	secret, err := store.Get(key)
	if err != nil {
		return "", sberr.Wrapf(err, sberr.CodeSecretResolveFailure, "resolving keyring URI %q", value)
	}
	return secret, nil
}

// ResolveViper replaces every keyring URI among v's string values with its
// secret. Failures are logged and leave the URI in place, so the request
// that needs the credential fails visibly instead.
func ResolveViper(v *viper.Viper, store Store) {
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if !IsURI(val) {
			continue
		}
		resolved, err := Resolve(store, val)
		if err != nil {
			slog.Warn("resolving keyring URI, keeping original value", "config_key", key, "error", err)
			continue
		}
		v.Set(key, resolved)
	}
}
