package session

import (
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// ContextHeader is the request header carrying session hints.
const ContextHeader = "Oil-Context"

// ParseContextHeader reads hints from an Oil-Context header value.
// Format: RFC 8941 Dictionary with optional members
//
//	locale="deDE_01"   string
//	gdpr=?0            boolean
//	country=DE         token or string
//
// Unknown members and parameters are ignored. An empty header yields empty hints.
func ParseContextHeader(header string) (Hints, error) {
	var hints Hints

	header = strings.TrimSpace(header)
	if header == "" {
		return hints, nil
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return hints, fmt.Errorf("invalid %s header: %w", ContextHeader, err)
	}

	if v, ok, err := itemValue(dict, "locale"); err != nil {
		return hints, err
	} else if ok {
		s, isString := v.(string)
		if !isString {
			return hints, fmt.Errorf("locale must be a string, got %T", v)
		}
		hints.Locale = strings.TrimSpace(s)
	}

	if v, ok, err := itemValue(dict, "gdpr"); err != nil {
		return hints, err
	} else if ok {
		b, isBool := v.(bool)
		if !isBool {
			return hints, fmt.Errorf("gdpr must be a boolean, got %T", v)
		}
		hints.GDPR = &b
	}

	if v, ok, err := itemValue(dict, "country"); err != nil {
		return hints, err
	} else if ok {
		var country string
		switch c := v.(type) {
		case httpsfv.Token:
			country = string(c)
		case string:
			country = c
		default:
			return hints, fmt.Errorf("country must be a token or string, got %T", v)
		}
		hints.Country = strings.ToUpper(strings.TrimSpace(country))
	}

	return hints, nil
}

func itemValue(dict *httpsfv.Dictionary, key string) (any, bool, error) {
	member, ok := dict.Get(key)
	if !ok {
		return nil, false, nil
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return nil, false, fmt.Errorf("%s value must be an item", key)
	}
	return item.Value, true, nil
}
