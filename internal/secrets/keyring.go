// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"github.com/zalando/go-keyring"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// indexKey holds the JSON list of key names, since OS keyrings cannot
// enumerate entries.
const indexKey = "::index"

// KeyringStore is a Store backed by the OS keyring.
type KeyringStore struct {
	service string
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore returns a store for service, or DefaultService when
// service is empty.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Service() string { return s.service }

func (s *KeyringStore) Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := keyring.Set(s.service, key, value); err != nil {
		return sberr.Wrapf(err, sberr.CodeSecretStoreFailure, "storing secret %s/%s", s.service, key)
	}
	return s.updateIndex(func(keys []string) []string {
		if slices.Contains(keys, key) {
			return keys
		}
		return append(keys, key)
	})
}

func (s *KeyringStore) Get(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	val, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", sberr.Errorf(sberr.CodeSecretNotFound, "secret %s/%s not found", s.service, key)
	}
	if err != nil {
		return "", sberr.Wrapf(err, sberr.CodeSecretStoreFailure, "retrieving secret %s/%s", s.service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := keyring.Delete(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return sberr.Errorf(sberr.CodeSecretNotFound, "secret %s/%s not found", s.service, key)
	}
	if err != nil {
		return sberr.Wrapf(err, sberr.CodeSecretDeleteFailure, "deleting secret %s/%s", s.service, key)
	}
	return s.updateIndex(func(keys []string) []string {
		return slices.DeleteFunc(keys, func(k string) bool { return k == key })
	})
}

func (s *KeyringStore) Keys() ([]string, error) {
	keys, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

func checkKey(key string) error {
	if key == "" || key == indexKey {
		return sberr.Errorf(sberr.CodeSecretInvalidInput, "invalid secret key %q", key)
	}
	return nil
}

func (s *KeyringStore) loadIndex() ([]string, error) {
	raw, err := keyring.Get(s.service, indexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, sberr.Wrapf(err, sberr.CodeSecretListFailure, "loading key index for %s", s.service)
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, sberr.Wrapf(err, sberr.CodeSecretListFailure, "decoding key index for %s", s.service)
	}
	return keys, nil
}

func (s *KeyringStore) updateIndex(edit func([]string) []string) error {
	keys, err := s.loadIndex()
	if err != nil {
		return err
	}
	keys = edit(keys)

	if len(keys) == 0 {
		if err := keyring.Delete(s.service, indexKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("removing empty key index", "service", s.service, "error", err)
		}
		return nil
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return sberr.Wrapf(err, sberr.CodeSecretListFailure, "encoding key index for %s", s.service)
	}
	if err := keyring.Set(s.service, indexKey, string(data)); err != nil {
		return sberr.Wrapf(err, sberr.CodeSecretListFailure, "saving key index for %s", s.service)
	}
	return nil
}
