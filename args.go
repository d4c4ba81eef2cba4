package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Args are command line arguments.
type Args struct {
	ConfigFile string
	ServerName string
}

// getArgs parses command line flags. A configuration file is optional: with
// none given the server runs with built-in defaults (see defaultConfig).
func getArgs() (*Args, error) {
	configFile := flag.String("conf", "", "Configuration file (optional).")
	serverName := flag.String(
		"server-name",
		"",
		"Server name. Overrides server-name from config.",
	)

	flag.Parse()

	configPath := *configFile
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("unable to determine path to the configuration file: %s", err)
		}
		configPath = abs
	}

	return &Args{
		ConfigFile: configPath,
		ServerName: *serverName,
	}, nil
}

func printUsage(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)                           // nolint: gas
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s <arguments>\n", os.Args[0]) // nolint: gas
	flag.PrintDefaults()
}
