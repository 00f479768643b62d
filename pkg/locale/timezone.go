package locale

// Windows time zone names as some SaaS payloads expect them, keyed by IANA id.
var windowsZones = map[string]string{
	"Europe/Brussels":     "Romance Standard Time",
	"Europe/Paris":        "Romance Standard Time",
	"Europe/Madrid":       "Romance Standard Time",
	"Europe/Amsterdam":    "W. Europe Standard Time",
	"Europe/Berlin":       "W. Europe Standard Time",
	"Europe/Luxembourg":   "W. Europe Standard Time",
	"Europe/Rome":         "W. Europe Standard Time",
	"Europe/Warsaw":       "Central European Standard Time",
	"Europe/Bucharest":    "GTB Standard Time",
	"Europe/London":       "GMT Standard Time",
	"America/New_York":    "Eastern Standard Time",
	"America/Mexico_City": "Central Standard Time (Mexico)",
	"UTC":                 "UTC",
}

// WindowsZone maps an IANA zone to its Windows name. Unknown zones are
// returned unchanged so a Windows name passed in stays as it is.
func WindowsZone(iana string) string {
	if name, ok := windowsZones[iana]; ok {
		return name
	}
	return iana
}
