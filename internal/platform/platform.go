// Package platform describes the host and loads project rules for the
// system prompt.
package platform

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Describe returns the host block given to the model.
func Describe() string {
	return describe(runtime.GOOS, runtime.GOARCH)
}

func describe(goos, goarch string) string {
	return fmt.Sprintf("<platform>\nsystem/OS name: %s\narch: %s\n</platform>", osName(goos), machine(goos, goarch))
}

func osName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	}
	if goos == "" {
		return ""
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}

// machine reports the architecture the way uname -m does.
func machine(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "386":
		return "i386"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		return "arm64"
	}
	return goarch
}

// UserRules wraps the contents of the rules file in <user_rules> tags. It
// returns "" when the file is missing or blank.
func UserRules(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read rules %s: %w", path, err)
	}
	rules := strings.TrimSpace(string(data))
	if rules == "" {
		return "", nil
	}
	return "<user_rules>\n" + rules + "\n</user_rules>", nil
}

// SystemRules joins the platform block and the user rules from rulesFile.
func SystemRules(rulesFile string) (string, error) {
	rules := Describe()
	user, err := UserRules(rulesFile)
	if err != nil {
		return rules, err
	}
	if user != "" {
		rules += "\n" + user
	}
	return rules, nil
}
