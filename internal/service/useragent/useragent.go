package useragent

import (
	ua "github.com/mileusna/useragent"

	"twiller-backend/internal/domain"
)

// Parser classifies a raw User-Agent header. The login gate depends on this
// capability rather than matching strings itself.
type Parser interface {
	Parse(raw string) (browser, os string, device domain.DeviceClass)
}

type UAParser struct{}

func NewParser() UAParser { return UAParser{} }

func (UAParser) Parse(raw string) (string, string, domain.DeviceClass) {
	parsed := ua.Parse(raw)

	browser := parsed.Name
	if browser == "" {
		browser = "Unknown"
	}
	osName := parsed.OS
	if osName == "" {
		osName = "Unknown"
	}

	var device domain.DeviceClass
	switch {
	case parsed.Mobile || parsed.Tablet:
		device = domain.DeviceMobile
	case parsed.Desktop:
		device = domain.DeviceDesktop
	default:
		device = domain.DeviceUnknown
	}

	return browser, osName, device
}
