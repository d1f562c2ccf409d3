package entity

import "time"

const (
	// UnknownOS is recorded when the operating system cannot be derived from the user agent.
	UnknownOS = "Unknown"

	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
)

// Visit is one recorded redirect of a short link.
type Visit struct {
	Timestamp  time.Time // Timestamp is the moment the redirect was served.
	OSName     string    // OSName is the operating system parsed from the user agent.
	DeviceKind string    // DeviceKind is the device class parsed from the user agent.
}

// NewVisit builds a visit, falling back to defaults for empty attributes.
func NewVisit(ts time.Time, osName, deviceKind string) Visit {
	if osName == "" {
		osName = UnknownOS
	}
	if deviceKind == "" {
		deviceKind = DeviceDesktop
	}

	return Visit{
		Timestamp:  ts,
		OSName:     osName,
		DeviceKind: deviceKind,
	}
}
