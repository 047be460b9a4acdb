// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mstarongithub/line/palette"
	"github.com/mstarongithub/line/util"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

type StartType int

const (
	// Tells line to start a repl in parallel for inspecting it
	START_REPL = StartType(iota)
	// Tells line to execute a specific repl command on startup
	START_SINGLE_COMMAND
	// Tells line to start without any console
	START_NONE
)

// Relative to the XDG config directories
const DefaultPath = "line/config.toml"

// Prefix of all environment overrides, e.g. LINE_HEIGHT
const EnvPrefix = "LINE"

type Config struct {
	StartType StartType `envconfig:"START_TYPE" toml:"start_type"`
	// What command to execute on start. Only matters if StartType is set to START_SINGLE_COMMAND
	StartCommand *string `envconfig:"START_COMMAND" toml:"start_command,omitempty"`

	// Height of every line window in pixels
	LineHeight int `envconfig:"HEIGHT" toml:"line_height"`
	// Gap between two workspace slots in pixels
	BorderWidth int `envconfig:"BORDER_WIDTH" toml:"border_width"`
	// Logical colour name -> "#rrggbb" or "r,g,b" with 16 bit components.
	// Entries override the default palette. From the environment only hex works
	// (LINE_PALETTE=urgent:#ff0000,off:#202020) and it replaces the file's entries.
	Palette map[string]string `envconfig:"PALETTE" toml:"palette"`

	// Window manager socket. Empty means ask i3 (or $SWAYSOCK)
	IPCSocket string `envconfig:"IPC_SOCKET" toml:"ipc_socket"`
	// Card and element the volume is read from
	MixerCard    int    `envconfig:"MIXER_CARD" toml:"mixer_card"`
	MixerElement string `envconfig:"MIXER_ELEMENT" toml:"mixer_element"`

	// Only redraw when a window leaves fullscreen instead of on every toggle
	FullscreenExitOnly bool `envconfig:"FULLSCREEN_EXIT_ONLY" toml:"fullscreen_exit_only"`

	LogLevel string `envconfig:"LOG_LEVEL" toml:"log_level"`
}

// Mirror of Config with pointers, so that keys missing from the file keep their defaults
type fileConfig struct {
	StartType          *int              `toml:"start_type"`
	StartCommand       *string           `toml:"start_command"`
	LineHeight         *int              `toml:"line_height"`
	BorderWidth        *int              `toml:"border_width"`
	Palette            map[string]string `toml:"palette"`
	IPCSocket          *string           `toml:"ipc_socket"`
	MixerCard          *int              `toml:"mixer_card"`
	MixerElement       *string           `toml:"mixer_element"`
	FullscreenExitOnly *bool             `toml:"fullscreen_exit_only"`
	LogLevel           *string           `toml:"log_level"`
}

func Default() *Config {
	return &Config{
		StartType:    START_NONE,
		LineHeight:   8,
		BorderWidth:  0,
		Palette:      map[string]string{},
		MixerCard:    0,
		MixerElement: "Master Playback Volume",
		LogLevel:     "info",
	}
}

// Load builds the config from defaults, the file at path and the environment.
// With an empty path the XDG config dirs are searched and a missing file is fine.
func Load(path string) (*Config, error) {
	conf := Default()

	if path == "" {
		if found, err := xdg.SearchConfigFile(DefaultPath); err == nil {
			path = found
		} else {
			logrus.WithField("file", DefaultPath).Debugln("No config file found, using defaults")
		}
	}
	if path != "" {
		if err := conf.loadFile(path); err != nil {
			return nil, err
		}
		logrus.WithField("file", path).Debugln("Loaded config file")
	}

	if err := envconfig.Process(EnvPrefix, conf); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	var file fileConfig
	if err := toml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	if file.StartType != nil {
		conf.StartType = StartType(*file.StartType)
	}
	if file.StartCommand != nil {
		conf.StartCommand = file.StartCommand
	}
	if file.LineHeight != nil {
		conf.LineHeight = *file.LineHeight
	}
	if file.BorderWidth != nil {
		conf.BorderWidth = *file.BorderWidth
	}
	for name, value := range file.Palette {
		conf.Palette[name] = value
	}
	if file.IPCSocket != nil {
		conf.IPCSocket = *file.IPCSocket
	}
	if file.MixerCard != nil {
		conf.MixerCard = *file.MixerCard
	}
	if file.MixerElement != nil {
		conf.MixerElement = *file.MixerElement
	}
	if file.FullscreenExitOnly != nil {
		conf.FullscreenExitOnly = *file.FullscreenExitOnly
	}
	if file.LogLevel != nil {
		conf.LogLevel = *file.LogLevel
	}
	return nil
}

func (conf *Config) Validate() error {
	if conf.StartType < START_REPL || conf.StartType > START_NONE {
		return fmt.Errorf("invalid start type %d", conf.StartType)
	}
	if conf.StartType == START_SINGLE_COMMAND && (conf.StartCommand == nil || *conf.StartCommand == "") {
		return fmt.Errorf("start type %d needs a start command", conf.StartType)
	}
	if conf.LineHeight <= 0 {
		return fmt.Errorf("line height must be positive, got %d", conf.LineHeight)
	}
	if conf.BorderWidth < 0 {
		return fmt.Errorf("border width must not be negative, got %d", conf.BorderWidth)
	}
	if conf.MixerCard < 0 {
		return fmt.Errorf("invalid mixer card %d", conf.MixerCard)
	}
	if conf.MixerElement == "" {
		return fmt.Errorf("mixer element must not be empty")
	}
	if _, err := logrus.ParseLevel(conf.LogLevel); err != nil {
		return err
	}
	if _, err := conf.ResolvePalette(); err != nil {
		return err
	}
	return nil
}

// ResolvePalette applies the configured colours on top of the default palette
func (conf *Config) ResolvePalette() (palette.Palette, error) {
	pal := palette.Default()
	for name, value := range conf.Palette {
		c, err := palette.ParseColor(strings.ToLower(name))
		if err != nil {
			return nil, err
		}
		rgb, err := ParseRGB(value)
		if err != nil {
			return nil, fmt.Errorf("colour %s: %w", name, err)
		}
		pal[c] = rgb
	}
	return pal, nil
}

// ParseRGB reads "#rrggbb" or "r,g,b" with 16 bit components
func ParseRGB(value string) (palette.RGB, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "#") {
		c, err := colorful.Hex(value)
		if err != nil {
			return palette.RGB{}, fmt.Errorf("invalid hex colour %q: %w", value, err)
		}
		r, g, b := c.RGB255()
		// 0xff * 257 = 0xffff
		return palette.RGB{R: uint16(r) * 257, G: uint16(g) * 257, B: uint16(b) * 257}, nil
	}

	parts := util.SplitTrim(value, ",")
	var rs, gs, bs string
	if len(parts) != 3 || util.Unpack(parts, &rs, &gs, &bs) != 3 {
		return palette.RGB{}, fmt.Errorf("expected \"r,g,b\" or \"#rrggbb\", got %q", value)
	}
	components := [3]uint16{}
	for i, s := range []string{rs, gs, bs} {
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return palette.RGB{}, fmt.Errorf("invalid component %q in %q: %w", s, value, err)
		}
		components[i] = uint16(v)
	}
	return palette.RGB{R: components[0], G: components[1], B: components[2]}, nil
}
