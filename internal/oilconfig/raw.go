// Package oilconfig resolves the effective banner settings from the configuration
// record a page supplies to the consent banner.
//
// The record is loosely typed and comes in several historical shapes. Every accessor
// is total: absent, malformed or oddly shaped values degrade to a documented default
// instead of failing. One piece of state is mutable after resolution, the GDPR
// applicability flag, which downstream logic may override (e.g. after a
// geolocation lookup places the visitor outside the EU).
package oilconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// RawConfig is the page-supplied configuration record.
// Values are whatever the page (or a JSON decoder) put there.
type RawConfig map[string]any

// Recognized configuration keys.
const (
	KeyLocale                          = "locale"
	KeyLocaleURL                       = "locale_url"
	KeyGDPRApplies                     = "gdpr_applies"
	KeyGDPRAppliesGlobally             = "gdpr_applies_globally"
	KeyShowLimitedVendors              = "show_limited_vendors_only"
	KeyPublicPath                      = "publicPath"
	KeyHubPath                         = "hub_path"
	KeyHubLocation                     = "hub_location"
	KeyIABVendorWhitelist              = "iabVendorWhitelist"
	KeyIABVendorBlacklist              = "iabVendorBlacklist"
	KeyIABVendorListURL                = "iab_vendor_list_url"
	KeyDefaultToOptin                  = "default_to_optin"
	KeyAdvancedSettingsPurposesDefault = "advanced_settings_purposes_default"
	KeyCustomPurposes                  = "customPurposes"
	KeyCookieExpireInDays              = "cookie_expires_in_days"
	KeyPOIGroupName                    = "poi_group_name"
	KeyPOIActive                       = "poi_activate_poi"
	KeySubscriberSetCookie             = "poi_subscriber_set_cookie"
	KeyPersistMinimumTracking          = "persist_min_tracking"
	KeyTimeout                         = "timeout"
	KeyTheme                           = "theme"
	KeyPreviewMode                     = "preview_mode"
	KeyInfoBannerOnly                  = "info_banner_only"
)

// ParseRaw decodes a page configuration document. Comments and trailing commas
// are tolerated, numbers are kept as json.Number so integer settings survive intact.
// A JSON null document yields an empty record.
func ParseRaw(data []byte) (RawConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var raw RawConfig
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing page config: %w", err)
	}
	if raw == nil {
		raw = RawConfig{}
	}
	return raw, nil
}

// Clone returns a deep copy of nested maps and slices, so a session can mutate
// its copy without touching the record other sessions were built from.
func (c RawConfig) Clone() RawConfig {
	if c == nil {
		return RawConfig{}
	}
	out := make(RawConfig, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case RawConfig:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
