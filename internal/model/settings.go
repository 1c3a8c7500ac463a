package model

// BannerSettings is the resolved, fully defaulted view of a page configuration.
// Served as JSON to the banner runtime and returned by the MCP tools.
type BannerSettings struct {
	// Locale
	LocaleVariantName string `json:"locale_variant_name"`
	Language          string `json:"language"`
	LocaleURL         string `json:"locale_url,omitempty"`

	// Applicability
	GDPRApplies bool `json:"gdpr_applies"`

	// Paths
	PublicPath  string `json:"public_path,omitempty"`
	HubPath     string `json:"hub_path"`
	HubLocation string `json:"hub_location,omitempty"`

	// Vendor filtering. Nil means no filtering.
	IABVendorWhitelist []int  `json:"iab_vendor_whitelist"`
	IABVendorBlacklist []int  `json:"iab_vendor_blacklist"`
	IABVendorListURL   string `json:"iab_vendor_list_url,omitempty"`
	ShowLimitedVendors bool   `json:"show_limited_vendors_only"`

	// Purposes and opt-in behaviour
	CustomPurposes                  []CustomPurpose `json:"custom_purposes"`
	DefaultToOptin                  bool            `json:"default_to_optin"`
	AdvancedSettingsPurposesDefault bool            `json:"advanced_settings_purposes_default"`

	// Cookie and POI
	CookieExpireInDays     int    `json:"cookie_expires_in_days"`
	POIGroupName           string `json:"poi_group_name"`
	POIActive              bool   `json:"poi_activate_poi"`
	SubscriberSetCookie    bool   `json:"poi_subscriber_set_cookie"`
	PersistMinimumTracking bool   `json:"persist_min_tracking"`

	// UI
	Timeout        int    `json:"timeout"`
	Theme          string `json:"theme"`
	PreviewMode    bool   `json:"preview_mode"`
	InfoBannerOnly bool   `json:"info_banner_only"`
}

// CustomPurpose is a publisher-defined consent purpose shown next to the IAB purposes.
type CustomPurpose struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
