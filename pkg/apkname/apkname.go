// Package apkname builds the branded suggested filename attached to proxied
// APK downloads. It is a pure string transformation with no I/O and no upstream
// knowledge, so the exact filename surfaced in Content-Disposition headers
// and download manifests can be unit tested in isolation. Keeping it in a
// dedicated package avoids duplicating the sanitization rules between the
// download resolver and the streaming proxy.
package apkname

import (
	"fmt"
	"strings"
	"unicode"
)

// Sanitize makes a string safe for use as a filename component. Letters,
// digits, '.' and '-' are kept; every other rune (path separators, spaces,
// control characters) becomes '_'. Runs of underscores collapse to one and
// leading/trailing underscores are trimmed, so the result is stable under
// repeated application: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// CleanTitle reduces a store listing title to the bare app name by cutting the
// subtitle Play appends after " - " (e.g. "Discord - Talk, Play, Hang Out").
func CleanTitle(title string) string {
	name, _, _ := strings.Cut(title, " - ")
	return strings.TrimSpace(name)
}

// CleanVersion strips the channel suffix some listings embed in the version
// string (e.g. "289.20 - Stable" → "289.20").
func CleanVersion(version string) string {
	v, _, _ := strings.Cut(version, " - ")
	return strings.TrimSpace(v)
}

// Build assembles the suggested filename
// {brand}_{app}_{channel}_{version}.apk, omitting the version part when the
// version string is empty. channelDisplay is the capitalized channel name
// ("Stable", "Beta", "Alpha"). An empty app name falls back to "App" so the
// filename always has four recognisable parts.
func Build(brand, appName, channelDisplay, version string) string {
	appPart := Sanitize(CleanTitle(appName))
	if appPart == "" {
		appPart = "App"
	}

	brandPart := Sanitize(brand)
	channelPart := Sanitize(channelDisplay)

	if version == "" {
		return fmt.Sprintf("%s_%s_%s.apk", brandPart, appPart, channelPart)
	}
	return fmt.Sprintf("%s_%s_%s_%s.apk", brandPart, appPart, channelPart, Sanitize(CleanVersion(version)))
}
