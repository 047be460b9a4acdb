// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/mstarongithub/line/palette"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config invalid: %s", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
line_height = 12
border_width = 2
fullscreen_exit_only = true
mixer_element = "PCM Playback Volume"

[palette]
focused = "#3b82f6"
off = "5000, 5000, 5000"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Writing config: %s", err)
	}

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if conf.LineHeight != 12 || conf.BorderWidth != 2 {
		t.Errorf("Got height %d border %d", conf.LineHeight, conf.BorderWidth)
	}
	if !conf.FullscreenExitOnly {
		t.Error("fullscreen_exit_only not applied")
	}
	if conf.MixerElement != "PCM Playback Volume" {
		t.Errorf("Mixer element is %q", conf.MixerElement)
	}
	// Keys missing from the file keep their defaults
	if conf.LogLevel != "info" || conf.StartType != START_NONE {
		t.Errorf("Defaults lost: log level %q, start type %d", conf.LogLevel, conf.StartType)
	}

	pal, err := conf.ResolvePalette()
	if err != nil {
		t.Fatalf("ResolvePalette failed: %s", err)
	}
	if want := (palette.RGB{R: 0x3b * 257, G: 0x82 * 257, B: 0xf6 * 257}); pal[palette.Focused] != want {
		t.Errorf("Focused is %s, expected %s", pal[palette.Focused], want)
	}
	if want := (palette.RGB{R: 5000, G: 5000, B: 5000}); pal[palette.Off] != want {
		t.Errorf("Off is %s, expected %s", pal[palette.Off], want)
	}
	if pal[palette.Urgent] != palette.Default()[palette.Urgent] {
		t.Errorf("Urgent changed to %s", pal[palette.Urgent])
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Expected an error for a missing explicit config file")
	}
}

func TestLoadEnvironment(t *testing.T) {
	// Registered first so it runs after the variables are restored
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LINE_HEIGHT", "20")
	t.Setenv("LINE_FULLSCREEN_EXIT_ONLY", "true")
	t.Setenv("LINE_PALETTE", "urgent:#ff8800")
	xdg.Reload()

	conf, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if conf.LineHeight != 20 {
		t.Errorf("Line height %d, expected 20", conf.LineHeight)
	}
	if !conf.FullscreenExitOnly {
		t.Error("LINE_FULLSCREEN_EXIT_ONLY not applied")
	}
	pal, err := conf.ResolvePalette()
	if err != nil {
		t.Fatalf("ResolvePalette failed: %s", err)
	}
	if want := (palette.RGB{R: 65535, G: 0x88 * 257, B: 0}); pal[palette.Urgent] != want {
		t.Errorf("Urgent is %s, expected %s", pal[palette.Urgent], want)
	}
}

func TestValidate(t *testing.T) {
	cmd := ""
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero height", func(c *Config) { c.LineHeight = 0 }},
		{"negative border", func(c *Config) { c.BorderWidth = -1 }},
		{"bad start type", func(c *Config) { c.StartType = StartType(9) }},
		{"single command without command", func(c *Config) { c.StartType = START_SINGLE_COMMAND; c.StartCommand = &cmd }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"unknown colour", func(c *Config) { c.Palette["mauve"] = "#ffffff" }},
		{"bad colour value", func(c *Config) { c.Palette["urgent"] = "red" }},
		{"empty mixer element", func(c *Config) { c.MixerElement = "" }},
	}
	for _, tt := range tests {
		conf := Default()
		tt.modify(conf)
		if err := conf.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", tt.name)
		}
	}
}

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in   string
		want palette.RGB
	}{
		{"#ff0000", palette.RGB{R: 65535}},
		{"#000000", palette.RGB{}},
		{"65535,0,0", palette.RGB{R: 65535}},
		{" 40000, 40000 , 40000 ", palette.RGB{R: 40000, G: 40000, B: 40000}},
	}
	for _, tt := range tests {
		got, err := ParseRGB(tt.in)
		if err != nil {
			t.Errorf("ParseRGB(%q) failed: %s", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRGB(%q) = %s, expected %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "#ff", "1,2", "1,2,3,4", "70000,0,0", "a,b,c"} {
		if _, err := ParseRGB(bad); err == nil {
			t.Errorf("ParseRGB(%q) should fail", bad)
		}
	}
}
