package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the serialized graph encodings
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // Directed-graph JSON export
	FormatMsgpack            // Same structure, msgpack encoded
)

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// FormatInfo contains metadata about a graph file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "json",
		Extensions:  []string{".json"},
		MinSize:     2, // "{}"
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "msgpack",
		Extensions:  []string{".msgpack", ".mpk", ".bin"},
		MinSize:     1,
	},
}

// FormatFromExtension maps a file name to its format without touching disk.
func FormatFromExtension(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect graph format for file %s", filename)
}

// DetectFileFormat detects the format of an existing file and checks its size.
func DetectFileFormat(filename string) (FileFormat, error) {
	format, err := FormatFromExtension(filename)
	if err != nil {
		return FormatUnknown, err
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return FormatUnknown, err
	}
	return format, nil
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory, expected a graph file", filename)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	log.Debugf("Graph file %s validated as %s", filename, formatInfo.Description)
	return nil
}
