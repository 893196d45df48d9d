// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strconv"
)

// SettingKind describes the value type of a site setting.
type SettingKind int

// Setting kinds
const (
	SettingText SettingKind = iota
	SettingBool
	SettingNumber
	// SettingSecret values are server-only: never returned by the API and
	// never writable through it.
	SettingSecret
)

// Site setting keys
const (
	SettingRegistrationOpen   = "registration_open"
	SettingRecaptchaSiteKey   = "recaptcha_site_key"
	SettingRecaptchaSecretKey = "recaptcha_secret_key"
	SettingStatWeddings       = "stat_weddings"
	SettingStatOrphans        = "stat_orphans"
	SettingStatBeneficiaries  = "stat_beneficiaries"
	SettingStatDonations      = "stat_donations"
)

// SettingRecaptchaEnabled is a derived, read-only key added to public
// settings responses. It is true when a reCAPTCHA secret is configured.
const SettingRecaptchaEnabled = "recaptcha_enabled"

// SettingDef describes one recognised site setting.
type SettingDef struct {
	Key     string
	Kind    SettingKind
	Default string
}

// SettingDefs lists every recognised setting. Unknown keys are rejected.
var SettingDefs = []SettingDef{
	{Key: SettingRegistrationOpen, Kind: SettingBool, Default: "false"},
	{Key: SettingRecaptchaSiteKey, Kind: SettingText, Default: ""},
	{Key: SettingRecaptchaSecretKey, Kind: SettingSecret, Default: ""},
	{Key: SettingStatWeddings, Kind: SettingNumber, Default: "0"},
	{Key: SettingStatOrphans, Kind: SettingNumber, Default: "0"},
	{Key: SettingStatBeneficiaries, Kind: SettingNumber, Default: "0"},
	{Key: SettingStatDonations, Kind: SettingNumber, Default: "0"},
}

// LookupSetting returns the definition for key.
func LookupSetting(key string) (SettingDef, bool) {
	for _, d := range SettingDefs {
		if d.Key == key {
			return d, true
		}
	}
	return SettingDef{}, false
}

// Normalize validates value against the setting kind and returns its
// canonical stored form.
func (d SettingDef) Normalize(value string) (string, error) {
	switch d.Kind {
	case SettingBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%s must be true or false", d.Key)
		}
		return strconv.FormatBool(b), nil
	case SettingNumber:
		if value == "" {
			return "0", nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return "", fmt.Errorf("%s must be a non-negative whole number", d.Key)
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return value, nil
	}
}
