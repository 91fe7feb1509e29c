package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/benchtable/schema"
)

// Color variables for console output.
var (
	CorrectColor = color.New(color.FgGreen)            // CorrectColor marks verified results.
	WrongColor   = color.New(color.FgRed, color.Bold)  // WrongColor marks incorrect results.
	OtherColor   = color.New(color.FgYellow)           // OtherColor marks unknown results and errors.
	MissingColor = color.New(color.FgHiBlack)          // MissingColor marks tasks a run-set did not contain.
	HeaderColor  = color.New(color.FgCyan, color.Bold) // HeaderColor marks head and footer labels.
)

// CategoryColor returns the console color of a result category.
func CategoryColor(category schema.Category) *color.Color {
	switch category {
	case schema.CategoryCorrect:
		return CorrectColor
	case schema.CategoryWrong:
		return WrongColor
	case schema.CategoryMissing:
		return MissingColor
	default:
		return OtherColor
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path or "-" selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" || filePath == StdoutPath {
		return os.Stdout, nil
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(filePath)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for generation history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".benchtable_history.db"
	}
	return filepath.Join(homeDir, ".benchtable_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
