// Package config reads the server's simple key = value configuration file
// format.
package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadStringMap reads a config file and returns its keys and values as
// strings.
//
// Syntax: "key = value" lines. A line is a comment if it begins with '#'
// (leading whitespace tolerated). Trailing '#' comments are not supported.
// Keys are case insensitive and must be unique within the file.
func ReadStringMap(path string) (map[string]string, error) {
	if len(path) == 0 {
		return nil, errors.New("config path may not be blank")
	}

	fi, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open config file")
	}
	defer func() { _ = fi.Close() }()

	result := make(map[string]string)

	scanner := bufio.NewScanner(fi)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		if key == "" {
			return nil, errors.New("config key length is 0")
		}

		if _, exists := result[key]; exists {
			return nil, errors.Errorf("config key defined twice: %s", key)
		}

		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	return result, nil
}
