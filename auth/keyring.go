// Package auth stores provider API keys in the system keyring.
package auth

import (
	"errors"
	"strings"

	"github.com/cinesrc/cinesrc/constant"
	"github.com/zalando/go-keyring"
)

const service = constant.App + "-providers"

// ErrEmptyKey is returned when asked to store a blank key.
var ErrEmptyKey = errors.New("api key is empty")

// SetKey stores the API key of a provider.
func SetKey(providerID, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyKey
	}
	return keyring.Set(service, providerID, apiKey)
}

// Key returns the API key of a provider. ok is false when none is stored.
func Key(providerID string) (apiKey string, ok bool, err error) {
	apiKey, err = keyring.Get(service, providerID)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return apiKey, true, nil
}

// DeleteKey forgets the API key of a provider. Deleting a missing key is not an error.
func DeleteKey(providerID string) error {
	if err := keyring.Delete(service, providerID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
