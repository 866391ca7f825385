package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"

	"github.com/consultly/consultly-backend/internal/models"
)

// ParseUserAgent parses a User-Agent string into the device info recorded
// on booked sessions
func ParseUserAgent(userAgent string) models.JSONB {
	if userAgent == "" {
		return models.JSONB{
			"device_type": "unknown",
			"os":          "Unknown",
			"browser":     "Unknown",
		}
	}

	parser := ua.New(userAgent)
	browser, browserVer := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	return models.JSONB{
		"device_type": deviceType(parser),
		"os":          osName(parser),
		"browser":     browser,
		"browser_ver": browserVer,
		"is_bot":      parser.Bot(),
		"raw":         userAgent,
	}
}

func deviceType(parser *ua.UserAgent) string {
	if parser.Mobile() {
		if isTablet(parser.UA()) {
			return "tablet"
		}
		return "mobile"
	}
	return "desktop"
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, indicator := range []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "nexus 10", "sm-t"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func osName(parser *ua.UserAgent) string {
	info := parser.OSInfo()
	if info.Name == "" {
		return "Unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}
