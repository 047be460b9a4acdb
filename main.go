// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"fmt"

	"github.com/mstarongithub/line/config"
	"github.com/sirupsen/logrus"
)

var (
	configPath *string = flag.String(
		"config",
		"",
		"Path to the config file. Default is $XDG_CONFIG_HOME/"+config.DefaultPath,
	)
	toolMode *bool = flag.Bool(
		"tool",
		false,
		"Start as a tool instead of drawing the line",
	)
	help *bool = flag.Bool(
		"help",
		false,
		"Show the help message (the one for tool mode if -tool is set)",
	)
)

func main() {
	flag.Parse()
	if *help && !*toolMode {
		mainHelpMessage()
		return
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("loading config")
	}
	setupLogging(conf)
	logrus.WithField("config", fmt.Sprintf("%+v", *conf)).Debugln("Config loaded")

	if *toolMode {
		utilMain(conf)
	} else {
		lineMain(conf)
	}
}

// Level was checked by config validation already
func setupLogging(conf *config.Config) {
	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func mainHelpMessage() {
	fmt.Println("---- Help message for line ----")
	fmt.Println("\nline draws a thin strip per monitor showing i3 workspaces and the audio volume")
	fmt.Println("\nGeneral flags:")
	fmt.Println("\t-config: Path to the config file. Default is $XDG_CONFIG_HOME/" + config.DefaultPath)
	fmt.Println("\t-tool: Start as a tool instead of drawing the line")
	fmt.Println("\t-help: Show this help message (or the one for tool mode if -tool is set)")
	fmt.Println("\nEvery config value can be overridden from the environment, e.g.")
	fmt.Println("\t" + config.EnvPrefix + "_HEIGHT=4 " + config.EnvPrefix + "_LOG_LEVEL=debug line")
}
