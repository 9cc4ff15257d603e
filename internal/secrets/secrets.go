// Package secrets resolves provider credentials: OS keychain first, then
// environment.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the engine's entries in the OS keychain.
const KeyringService = "jobboard"

// Keychain accounts and their environment fallbacks.
const (
	AdzunaAppID        = "adzuna:app_id"
	AdzunaAppKey       = "adzuna:app_key"
	JoobleKey          = "jooble:key"
	AlertsIMAPPassword = "alerts:imap_password"
)

var envKeys = map[string]string{
	AdzunaAppID:        "ADZUNA_APP_ID",
	AdzunaAppKey:       "ADZUNA_APP_KEY",
	JoobleKey:          "JOOBLE_KEY",
	AlertsIMAPPassword: "ALERTS_IMAP_PASSWORD",
}

// Accounts lists the keychain accounts the engine reads.
func Accounts() []string {
	return []string{AdzunaAppID, AdzunaAppKey, JoobleKey, AlertsIMAPPassword}
}

// EnvKey returns the environment variable backing account.
func EnvKey(account string) string { return envKeys[account] }

// Lookup returns the keychain value for account, else the value of envKey,
// else "". Keychain errors (no keychain on a server, missing entry) fall
// through to the environment.
func Lookup(account, envKey string) string {
	if strings.TrimSpace(account) != "" {
		v, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if envKey == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(envKey))
}

// Credentials holds every provider secret for one run.
type Credentials struct {
	AdzunaAppID  string
	AdzunaAppKey string
	JoobleKey    string
	IMAPPassword string
}

func Load() Credentials {
	get := func(account string) string { return Lookup(account, envKeys[account]) }
	return Credentials{
		AdzunaAppID:  get(AdzunaAppID),
		AdzunaAppKey: get(AdzunaAppKey),
		JoobleKey:    get(JoobleKey),
		IMAPPassword: get(AlertsIMAPPassword),
	}
}

func Set(account, value string) error {
	if _, ok := envKeys[account]; !ok {
		return errors.New("unknown secret account " + account)
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if _, ok := envKeys[account]; !ok {
		return errors.New("unknown secret account " + account)
	}
	return keyring.Delete(KeyringService, account)
}
