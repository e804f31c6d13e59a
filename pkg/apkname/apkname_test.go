package apkname

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Discord", "Discord"},
		{"keeps dots and dashes", "289.20-rc1", "289.20-rc1"},
		{"spaces become underscores", "Clash of Clans", "Clash_of_Clans"},
		{"path separators stripped", "../../etc/passwd", ".._.._etc_passwd"},
		{"collapses runs", "a   b", "a_b"},
		{"trims edges", " padded ", "padded"},
		{"control characters", "bad\x00\x1fname", "bad_name"},
		{"unicode letters kept", "Cafè", "Cafè"},
		{"empty", "", ""},
		{"only junk", "///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Sanitize must be idempotent: feeding its own output back yields the same
// string, so filenames never drift when re-sanitized along the way.
func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"Discord - Talk, Play, Hang Out",
		"a   b///c",
		"__already__sanitized__",
		"Sniff_Discord_Stable_289.20",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Discord - Talk, Play, Hang Out", "Discord"},
		{"Discord", "Discord"},
		{"  Spotify  ", "Spotify"},
		{"A - B - C", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanTitle(tt.input); got != tt.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"289.20 - Stable", "289.20"},
		{"289.20", "289.20"},
		{" 1.2.3 ", "1.2.3"},
	}
	for _, tt := range tests {
		if got := CleanVersion(tt.input); got != tt.want {
			t.Errorf("CleanVersion(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		brand   string
		app     string
		channel string
		version string
		want    string
	}{
		{
			name:    "discord stable",
			brand:   "Sniff",
			app:     "Discord - Talk, Play, Hang Out",
			channel: "Stable",
			version: "289.20 - Stable",
			want:    "Sniff_Discord_Stable_289.20.apk",
		},
		{
			name:    "no version",
			brand:   "Sniff",
			app:     "Discord",
			channel: "Beta",
			version: "",
			want:    "Sniff_Discord_Beta.apk",
		},
		{
			name:    "empty app name falls back",
			brand:   "Sniff",
			app:     "",
			channel: "Alpha",
			version: "1.0",
			want:    "Sniff_App_Alpha_1.0.apk",
		},
		{
			name:    "spaces in app name",
			brand:   "Sniff",
			app:     "Clash of Clans",
			channel: "Stable",
			version: "16.137.13",
			want:    "Sniff_Clash_of_Clans_Stable_16.137.13.apk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.brand, tt.app, tt.channel, tt.version)
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}
