package domain

import "time"

type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceDesktop DeviceClass = "desktop"
	DeviceUnknown DeviceClass = "unknown"
)

// ClientInfo is what the gate knows about the request that carried a login
// attempt: the parsed user agent plus the source address.
type ClientInfo struct {
	Browser   string
	OS        string
	Device    DeviceClass
	IP        string
	UserAgent string
}

// LoginHistoryRecord is an immutable audit entry written only after a login
// fully succeeds.
type LoginHistoryRecord struct {
	ID        string      `json:"_id"`
	UserID    string      `json:"userId"`
	Browser   string      `json:"browser"`
	OS        string      `json:"os"`
	Device    DeviceClass `json:"device"`
	IP        string      `json:"ip"`
	LoginTime time.Time   `json:"loginTime"`
}
