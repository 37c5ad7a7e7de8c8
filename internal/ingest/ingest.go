// Package ingest decodes call graph documents and blacklist uploads.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/ziadkadry99/callscope/internal/graph"
)

// InvalidStructureMessage is the user-facing text for a document that parses
// but lacks the nodes or links arrays.
const InvalidStructureMessage = "Invalid JSON structure"

var (
	// ErrInvalidStructure means the document is missing "nodes" or "links".
	ErrInvalidStructure = errors.New("invalid json structure: nodes and links are required")
	// ErrEmptyBlacklist means an uploaded blacklist has no method names.
	ErrEmptyBlacklist = errors.New("blacklist contains no method names")
)

// document mirrors the wire format. Pointers distinguish a missing array
// from an empty one. Extra keys such as packages or classes are ignored.
type document struct {
	Nodes *[]graph.Node `json:"nodes"`
	Links *[]graph.Edge `json:"links"`
}

// DecodeGraph reads a {nodes, links} document.
func DecodeGraph(r io.Reader) (*graph.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	return ParseGraph(data)
}

// ParseGraph is DecodeGraph over an in-memory document.
func ParseGraph(data []byte) (*graph.Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding graph: %w", err)
	}
	if doc.Nodes == nil || doc.Links == nil {
		return nil, ErrInvalidStructure
	}
	return graph.New(*doc.Nodes, *doc.Links), nil
}

// LoadFile decodes a graph from a local JSON file.
func LoadFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph file: %w", err)
	}
	defer f.Close()

	g, err := DecodeGraph(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ParseBlacklist reads one method name per line. Lines are trimmed; blank
// lines and lines starting with '#' are skipped.
func ParseBlacklist(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading blacklist: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrEmptyBlacklist
	}
	return names, nil
}

// LoadBlacklistFile reads a blacklist from disk.
func LoadBlacklistFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening blacklist: %w", err)
	}
	defer f.Close()
	return ParseBlacklist(f)
}
