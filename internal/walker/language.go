package walker

import (
	"path/filepath"
	"strings"
)

// Language is a source language an analyzer understands.
type Language string

const (
	Unknown Language = ""
	Java    Language = "Java"
	Go      Language = "Go"
)

var extensionToLanguage = map[string]Language{
	".java": Java,
	".go":   Go,
}

// DetectLanguage returns the language for filename by extension, or Unknown.
func DetectLanguage(filename string) Language {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return extensionToLanguage[ext]
}
