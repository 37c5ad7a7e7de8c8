package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// projectTypePatterns maps marker files to a project type and the include
// glob recommended for it.
var projectTypePatterns = []struct {
	Marker  string
	Name    string
	Include string
}{
	{Marker: "go.mod", Name: "Go", Include: "**/*.go"},
	{Marker: "pom.xml", Name: "Java (Maven)", Include: "**/*.java"},
	{Marker: "build.gradle", Name: "Java (Gradle)", Include: "**/*.java"},
	{Marker: "build.xml", Name: "Java (Ant)", Include: "**/*.java"},
}

// detectProjectType checks dir for well-known project markers.
func detectProjectType(dir string) (name string, include string) {
	for _, p := range projectTypePatterns {
		if _, err := os.Stat(filepath.Join(dir, p.Marker)); err == nil {
			return p.Name, p.Include
		}
	}
	return "", "**"
}

// RunWizard asks for the main settings interactively, saves them to path
// and returns the resulting Config.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to callscope! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	projType, defaultInclude := detectProjectType(".")
	if projType != "" {
		fmt.Printf("Detected project type: %s\n\n", projType)
	}

	includePrompt := promptui.Prompt{
		Label:   "Include patterns (comma-separated globs)",
		Default: defaultInclude,
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	cfg.Analysis.Include = splitAndTrim(includeStr)

	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if extra := splitAndTrim(excludeStr); len(extra) > 0 {
		cfg.Analysis.Exclude = append(append([]string{}, DefaultExcludes...), extra...)
	}

	actionsPrompt := promptui.Select{
		Label: "Java call sources",
		Items: []string{
			"Action classes only (Struts style)",
			"All classes",
		},
	}
	actionsIdx, _, err := actionsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("call sources: %w", err)
	}
	cfg.Analysis.ActionsOnly = actionsIdx == 0

	blacklistPrompt := promptui.Prompt{
		Label:   "Blacklist file (one method name per line, optional)",
		Default: "",
	}
	if cfg.Analysis.BlacklistFile, err = blacklistPrompt.Run(); err != nil {
		return nil, fmt.Errorf("blacklist file: %w", err)
	}

	portPrompt := promptui.Prompt{
		Label:    "API server port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
