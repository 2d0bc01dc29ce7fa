package parser

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// LogPattern matches the file names that carry assistant activity:
// free text debug logs and structured session logs.
const LogPattern = "*.{txt,jsonl,json}"

// TreePattern matches log files at any depth below a directory.
const TreePattern = "**/" + LogPattern

// IsLogFile reports whether path has one of the recognised extensions.
func IsLogFile(path string) bool {
	ok, err := doublestar.Match(LogPattern, filepath.Base(path))
	return err == nil && ok
}
