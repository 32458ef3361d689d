// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import "strings"

const (
	PlatformTwitter   = "Twitter"
	PlatformInstagram = "Instagram"
	PlatformTikTok    = "TikTok"
	PlatformGitHub    = "GitHub"
	PlatformMastodon  = "Mastodon"
)

var platformNames = map[string]string{
	"twitter":   PlatformTwitter,
	"x":         PlatformTwitter,
	"instagram": PlatformInstagram,
	"tiktok":    PlatformTikTok,
	"github":    PlatformGitHub,
	"mastodon":  PlatformMastodon,
}

// NormalizePlatform maps user input ("TikTok", "tiktok", "x") onto the
// canonical platform name.
func NormalizePlatform(s string) (string, bool) {
	name, ok := platformNames[strings.ToLower(strings.TrimSpace(s))]
	return name, ok
}
