package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"twiller-backend/internal/domain"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		browser string
		device  domain.DeviceClass
	}{
		{
			name:    "desktop edge",
			raw:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			browser: "Edge",
			device:  domain.DeviceDesktop,
		},
		{
			name:    "desktop chrome",
			raw:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			browser: "Chrome",
			device:  domain.DeviceDesktop,
		},
		{
			name:    "android chrome",
			raw:     "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.43 Mobile Safari/537.36",
			browser: "Chrome",
			device:  domain.DeviceMobile,
		},
		{
			name:    "iphone safari",
			raw:     "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			browser: "Safari",
			device:  domain.DeviceMobile,
		},
		{
			name:    "ipad counts as mobile",
			raw:     "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
			browser: "Safari",
			device:  domain.DeviceMobile,
		},
		{
			name:    "garbage",
			raw:     "definitely-not-a-browser",
			browser: "Unknown",
			device:  domain.DeviceUnknown,
		},
	}

	p := NewParser()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			browser, _, device := p.Parse(tc.raw)
			assert.Equal(t, tc.browser, browser)
			assert.Equal(t, tc.device, device)
		})
	}
}
