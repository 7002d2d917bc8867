// internal/requestinfo/agent.go
//
// User-Agent parsing.  This is the only file that touches uasurfer types;
// everything else sees Agent.
package requestinfo

import (
	"fmt"
	"strings"

	"github.com/avct/uasurfer"
)

// Agent is the parsed subset of a User-Agent header stored with visits.
type Agent struct {
	Raw            string `json:"raw"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	OSVersion      string `json:"os_version"`
	Device         string `json:"device"`
	IsBot          bool   `json:"is_bot"`
}

// ParseAgent converts a raw header.  An empty header yields an Agent with
// Device "Unknown".
func ParseAgent(raw string) Agent {
	if raw == "" {
		return Agent{Device: "Unknown"}
	}
	u := uasurfer.Parse(raw)

	os := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if os == "MacOSX" {
		os = "macOS"
	}

	return Agent{
		Raw:            raw,
		Browser:        strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		BrowserVersion: dotted(u.Browser.Version),
		OS:             os,
		OSVersion:      dotted(u.OS.Version),
		Device:         device(u.DeviceType),
		IsBot:          u.IsBot(),
	}
}

func device(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceTV:
		return "TV"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	default:
		return "Unknown"
	}
}

// dotted renders 17.0.0 as "17", 17.3.0 as "17.3", and 0.0.0 as "".
func dotted(v uasurfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d", v.Major)
	}
}
