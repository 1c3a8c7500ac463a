package release

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"v1.2.3", "1.2.3"},
		{" v1.2 ", "1.2.0"},
		{"1.2.3+build.7", "1.2.3"},
		{"1.2.3-rc.1", "1.2.3-rc.1"},
		{"latest", "latest"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{"ordered", []string{"1.0.0", "1.1.0", "1.2.3"}, "1.2.3"},
		{"unordered with prefix", []string{"v1.10.0", "1.9.9", "v1.2.0"}, "1.10.0"},
		{"prerelease skipped", []string{"1.2.3", "1.3.0-beta.1"}, "1.2.3"},
		{"garbage skipped", []string{"nope", "1.0.1"}, "1.0.1"},
		{"nothing stable", []string{"2.0.0-rc.1", "x"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Newest(tt.versions); got != tt.want {
				t.Errorf("Newest(%v) = %q, want %q", tt.versions, got, tt.want)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	if got := Static("1.2.3").LatestReleaseVersion(); got != "1.2.3" {
		t.Errorf("LatestReleaseVersion() = %q, want 1.2.3", got)
	}
}
