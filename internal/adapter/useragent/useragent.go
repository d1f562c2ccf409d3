// Package useragent derives the OS name and device kind recorded with every visit.
package useragent

import (
	"strings"

	"github.com/mssola/useragent"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

// Parser extracts visit attributes from User-Agent headers. It never fails:
// attributes it cannot determine fall back to entity.UnknownOS and entity.DeviceDesktop.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the OS name and device kind of ua.
func (p *Parser) Parse(ua string) (osName, deviceKind string) {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return entity.UnknownOS, entity.DeviceDesktop
	}

	parsed := useragent.New(ua)

	osName = parsed.OSInfo().Name
	if osName == "" {
		osName = entity.UnknownOS
	}

	return osName, classifyDevice(parsed, ua)
}

func classifyDevice(parsed *useragent.UserAgent, ua string) string {
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		return entity.DeviceTablet
	// Android tablets omit the "Mobile" token.
	case strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"):
		return entity.DeviceTablet
	case parsed.Mobile():
		return entity.DeviceMobile
	default:
		return entity.DeviceDesktop
	}
}
