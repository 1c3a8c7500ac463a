package oilconfig

import (
	"fmt"
	"strings"

	"oil-config/internal/model"
)

// Defaults for settings absent from the record.
const (
	DefaultCookieExpireInDays = 31
	DefaultPOIGroupName       = "default"
	DefaultTimeout            = 60
	DefaultTheme              = "light"

	// HubOrganization is the npm scope the default hub path is published under.
	HubOrganization = "ideasio"
)

// PublicPath returns the configured asset base path with a trailing slash,
// or "" when none is configured.
func (r *Resolver) PublicPath() string {
	return withLock(r, (*Resolver).publicPath)
}

func (r *Resolver) publicPath() string {
	p := lookup(r, KeyPublicPath, "")
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// HubPath returns the configured hub path, or the hub page of the latest release.
func (r *Resolver) HubPath() string {
	return withLock(r, (*Resolver).hubPath)
}

func (r *Resolver) hubPath() string {
	if p := lookup(r, KeyHubPath, ""); p != "" {
		return p
	}
	return fmt.Sprintf("/@%s/oil.js@%s/release/current/hub.html", HubOrganization, r.versions.LatestReleaseVersion())
}

// HubLocation returns the absolute URL of a hub page hosted elsewhere, if any.
func (r *Resolver) HubLocation() string {
	return ValueOf(r, KeyHubLocation, "")
}

// IABVendorWhitelist returns the vendor IDs to restrict the banner to; nil means no filtering.
func (r *Resolver) IABVendorWhitelist() []int {
	return withLock(r, func(r *Resolver) []int { return r.vendorList(KeyIABVendorWhitelist) })
}

// IABVendorBlacklist returns the vendor IDs to hide; nil means no filtering.
func (r *Resolver) IABVendorBlacklist() []int {
	return withLock(r, func(r *Resolver) []int { return r.vendorList(KeyIABVendorBlacklist) })
}

func (r *Resolver) vendorList(key string) []int {
	ids, ok := intList(r.value(key, nil))
	if !ok {
		return nil
	}
	return ids
}

// IABVendorListURL returns an alternative vendor list location, "" for the IAB default.
func (r *Resolver) IABVendorListURL() string {
	return ValueOf(r, KeyIABVendorListURL, "")
}

// CustomPurposes returns the publisher purposes in configured order, never nil.
func (r *Resolver) CustomPurposes() []model.CustomPurpose {
	return withLock(r, (*Resolver).customPurposes)
}

func (r *Resolver) customPurposes() []model.CustomPurpose {
	purposes, ok := purposeList(r.value(KeyCustomPurposes, nil))
	if !ok {
		return []model.CustomPurpose{}
	}
	return purposes
}

// CookieExpireInDays returns the consent cookie lifetime.
func (r *Resolver) CookieExpireInDays() int {
	return ValueOf(r, KeyCookieExpireInDays, DefaultCookieExpireInDays)
}

// DefaultToOptin reports whether purposes start opted in.
func (r *Resolver) DefaultToOptin() bool {
	return ValueOf(r, KeyDefaultToOptin, false)
}

// AdvancedSettingsPurposesDefault reports whether purposes start checked in advanced settings.
func (r *Resolver) AdvancedSettingsPurposesDefault() bool {
	return ValueOf(r, KeyAdvancedSettingsPurposesDefault, false)
}

// POIGroupName returns the group consent is shared within.
func (r *Resolver) POIGroupName() string {
	return ValueOf(r, KeyPOIGroupName, DefaultPOIGroupName)
}

// POIActive reports whether cross-domain (power opt-in) consent is enabled.
func (r *Resolver) POIActive() bool {
	return ValueOf(r, KeyPOIActive, false)
}

// SubscriberSetCookie reports whether the subscriber cookie is written alongside POI consent.
func (r *Resolver) SubscriberSetCookie() bool {
	return ValueOf(r, KeySubscriberSetCookie, true)
}

// PersistMinimumTracking reports whether a minimal opt-out cookie is kept.
func (r *Resolver) PersistMinimumTracking() bool {
	return ValueOf(r, KeyPersistMinimumTracking, true)
}

// ShowLimitedVendors reports whether only the filtered vendor list is shown.
func (r *Resolver) ShowLimitedVendors() bool {
	return ValueOf(r, KeyShowLimitedVendors, false)
}

// Timeout returns the banner auto-hide timeout in seconds.
func (r *Resolver) Timeout() int {
	return ValueOf(r, KeyTimeout, DefaultTimeout)
}

// Theme returns the UI theme name.
func (r *Resolver) Theme() string {
	return ValueOf(r, KeyTheme, DefaultTheme)
}

// PreviewMode reports whether the banner only shows for preview sessions.
func (r *Resolver) PreviewMode() bool {
	return ValueOf(r, KeyPreviewMode, false)
}

// InfoBannerOnly reports whether the banner is informational (no choices).
func (r *Resolver) InfoBannerOnly() bool {
	return ValueOf(r, KeyInfoBannerOnly, false)
}

// Snapshot evaluates every accessor under a single lock.
func (r *Resolver) Snapshot() model.BannerSettings {
	return withLock(r, (*Resolver).snapshot)
}

func (r *Resolver) snapshot() model.BannerSettings {
	variant := r.localeVariantName()
	return model.BannerSettings{
		LocaleVariantName: variant,
		Language:          LanguageFromLocale(variant),
		LocaleURL:         r.resolveLocaleURL(),
		GDPRApplies:       r.gdprAppliesLocked(),

		PublicPath:  r.publicPath(),
		HubPath:     r.hubPath(),
		HubLocation: lookup(r, KeyHubLocation, ""),

		IABVendorWhitelist: r.vendorList(KeyIABVendorWhitelist),
		IABVendorBlacklist: r.vendorList(KeyIABVendorBlacklist),
		IABVendorListURL:   lookup(r, KeyIABVendorListURL, ""),
		ShowLimitedVendors: lookup(r, KeyShowLimitedVendors, false),

		CustomPurposes:                  r.customPurposes(),
		DefaultToOptin:                  lookup(r, KeyDefaultToOptin, false),
		AdvancedSettingsPurposesDefault: lookup(r, KeyAdvancedSettingsPurposesDefault, false),

		CookieExpireInDays:     lookup(r, KeyCookieExpireInDays, DefaultCookieExpireInDays),
		POIGroupName:           lookup(r, KeyPOIGroupName, DefaultPOIGroupName),
		POIActive:              lookup(r, KeyPOIActive, false),
		SubscriberSetCookie:    lookup(r, KeySubscriberSetCookie, true),
		PersistMinimumTracking: lookup(r, KeyPersistMinimumTracking, true),

		Timeout:        lookup(r, KeyTimeout, DefaultTimeout),
		Theme:          lookup(r, KeyTheme, DefaultTheme),
		PreviewMode:    lookup(r, KeyPreviewMode, false),
		InfoBannerOnly: lookup(r, KeyInfoBannerOnly, false),
	}
}
