// Package clientmeta identifies the calling shopping app from the
// Shop-Client request header and enforces a minimum supported version.
// Old app builds predate the pricing-rule and collection endpoints and
// must be told to upgrade rather than receive shapes they cannot render.
package clientmeta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// ShopClientHeader is the header mobile/web clients send on every request.
// Format (RFC 8941 Dictionary): app="acme-ios", version="2.4.1", platform="ios"
const ShopClientHeader = "Shop-Client"

// ClientInfo describes the calling application.
type ClientInfo struct {
	App      string // application identifier, e.g. "acme-ios"
	Version  string // application version, e.g. "2.4.1"
	Platform string // optional platform hint, e.g. "ios", "android", "web"
}

// ParseShopClientHeader extracts client identity from a Shop-Client header.
//
// Examples:
//   - app="acme-ios", version="2.4.1"            → {App: acme-ios, Version: 2.4.1}
//   - app="acme-web", version="1.0", platform="web" → platform captured too
//
// Returns an error if the header is empty, malformed, or missing the app key.
func ParseShopClientHeader(header string) (*ClientInfo, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, errors.New("empty Shop-Client header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return nil, fmt.Errorf("invalid Shop-Client header: %w", err)
	}

	app, err := stringMember(dict, "app")
	if err != nil {
		return nil, err
	}
	if app == "" {
		return nil, errors.New("app key not found in Shop-Client header")
	}

	version, _ := stringMember(dict, "version")
	platform, _ := stringMember(dict, "platform")

	return &ClientInfo{App: app, Version: version, Platform: platform}, nil
}

// stringMember extracts a string-valued dictionary member.
// A missing key is returned as ("", error); a present non-string value is an error.
func stringMember(dict interface {
	Get(string) (httpsfv.Member, bool)
}, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", fmt.Errorf("%s key not found in Shop-Client header", key)
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}

	s, ok := item.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s value must be a string", key)
	}

	return s, nil
}
