package schema

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Format tags a string schema with a recognized value format.
type Format string

const (
	FormatNone     Format = ""
	FormatUUID     Format = "uuid"
	FormatEmail    Format = "email"
	FormatDateTime Format = "date-time"
	FormatDate     Format = "date"
	FormatURI      Format = "uri"
	FormatIPv4     Format = "ipv4"
	FormatHostname Format = "hostname"
)

// formatPriority orders the detectors: the first match wins during
// detection, and the same order breaks frequency ties during merge.
var formatPriority = [...]Format{
	FormatUUID,
	FormatEmail,
	FormatDateTime,
	FormatDate,
	FormatURI,
	FormatIPv4,
	FormatHostname,
}

var formatDetectors = map[Format]func(string) bool{
	FormatUUID:     isUUID,
	FormatEmail:    isEmail,
	FormatDateTime: isDateTime,
	FormatDate:     isDate,
	FormatURI:      isURI,
	FormatIPv4:     isIPv4,
	FormatHostname: isHostname,
}

// DetectFormat returns the first format whose detector matches value, or
// FormatNone when none match.
func DetectFormat(value string) Format {
	for _, f := range formatPriority {
		if formatDetectors[f](value) {
			return f
		}
	}
	return FormatNone
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func isUUID(value string) bool {
	return uuidPattern.MatchString(value)
}

func isEmail(value string) bool {
	if _, err := mail.ParseAddress(value); err != nil {
		return false
	}
	// Require a dotted domain; mail.ParseAddress accepts bare hosts.
	parts := strings.Split(value, "@")
	if len(parts) != 2 {
		return false
	}
	return strings.Contains(parts[1], ".")
}

func isDateTime(value string) bool {
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func isDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func isURI(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func isIPv4(value string) bool {
	ip := net.ParseIP(value)
	if ip == nil {
		return false
	}
	return ip.To4() != nil
}

// Hostname per RFC 1123, with a dot required so bare words are not
// mistaken for hostnames.
var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func isHostname(value string) bool {
	if len(value) > 253 {
		return false
	}
	if !strings.Contains(value, ".") {
		return false
	}
	return hostnamePattern.MatchString(value)
}
