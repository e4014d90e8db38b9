package main

import (
	"github.com/OpenPeeDeeP/xdg"
	flags "github.com/jessevdk/go-flags"
)

// configName is the INI file searched for in the XDG config dirs.
const configName = "config.ini"

// findConfig returns path, or the first config.ini found in the XDG config
// dirs. It returns "" when there is nothing to load.
func findConfig(path string) string {
	if path != "" {
		return path
	}
	return xdg.New("vipnode", "jsonrpc").QueryConfig(configName)
}

// loadConfig fills the options of parser from the INI config file named by
// --config in args, or found in the XDG config dirs. Sections are named after
// subcommands, e.g. [serve]. Flags parsed afterwards override the file.
func loadConfig(parser *flags.Parser, args []string) error {
	var pre struct {
		Config string `long:"config"`
	}
	preParser := flags.NewParser(&pre, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return err
	}

	path := findConfig(pre.Config)
	if path == "" {
		return nil
	}
	logger.Debugf("Loading config: %s", path)
	return flags.NewIniParser(parser).ParseFile(path)
}
