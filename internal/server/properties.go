package server

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxPort is the highest valid TCP port.
const MaxPort = 65535

var portLine = regexp.MustCompile(`(?m)^server-port=(\d+)[ \t]*$`)

// ValidatePort checks that port is usable as a server listen port.
func ValidatePort(port int) error {
	if port < 1 || port > MaxPort {
		return fmt.Errorf("port %d out of range 1-%d", port, MaxPort)
	}
	return nil
}

// ReplacePort substitutes the value of the server-port line in a
// properties file, preserving all surrounding content. It is an error if
// the file has no server-port line.
func ReplacePort(content string, port int) (string, error) {
	if err := ValidatePort(port); err != nil {
		return "", err
	}

	loc := portLine.FindStringIndex(content)
	if loc == nil {
		return "", fmt.Errorf("no server-port line found")
	}

	replaced := false
	out := portLine.ReplaceAllStringFunc(content, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		return fmt.Sprintf("server-port=%d", port)
	})
	return out, nil
}

// ReadPort extracts the server-port value from a properties file.
func ReadPort(content string) (int, error) {
	m := portLine.FindStringSubmatch(content)
	if m == nil {
		return 0, fmt.Errorf("no server-port line found")
	}
	port, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("malformed server-port value %q", m[1])
	}
	return port, nil
}

// ReadBool extracts a boolean key=value entry from a properties file.
func ReadBool(content, key string) (bool, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(k) != key {
			continue
		}
		return strconv.ParseBool(strings.TrimSpace(v))
	}
	return false, fmt.Errorf("no %s line found", key)
}

// DefaultProperties renders the initial server.properties written on
// install.
func DefaultProperties(port int) string {
	lines := []string{
		"# Minecraft server properties",
		"# Generated by quarry",
		fmt.Sprintf("server-port=%d", port),
		"motd=A Quarry Server",
		"max-players=20",
		"gamemode=survival",
		"difficulty=normal",
		"level-name=world",
		"online-mode=true",
		"pvp=true",
		"view-distance=10",
		"enable-command-block=false",
	}
	return strings.Join(lines, "\n") + "\n"
}
