// Package verdict classifies tool statuses and scores task outcomes against
// the expected verdict encoded in a task's file name.
package verdict

import (
	"path/filepath"
	"strings"

	"github.com/huangsam/benchtable/schema"
)

// Score values for a task outcome.
const (
	ScoreCorrectTrue  = 2
	ScoreCorrectFalse = 1
	ScoreWrongFalse   = -16
	ScoreWrongTrue    = -32
	ScoreUnknown      = 0
)

// PropMemSafety is the aggregated memory-safety property.
const PropMemSafety = "valid-memsafety"

// memSafetySubProperties are the file markers that imply a violation of PropMemSafety.
var memSafetySubProperties = []string{"valid-deref", "valid-free", "valid-memtrack"}

// Classify maps a raw status string onto its result class.
func Classify(status string) schema.ResultClass {
	switch {
	case status == "":
		return schema.ResultClassError
	case status == schema.StatusUnknown:
		return schema.ResultClassUnknown
	case status == schema.StatusTrue:
		return schema.ResultClassTrue
	case status == schema.StatusFalse || strings.HasPrefix(status, schema.StatusFalse+"("):
		return schema.ResultClassFalse
	default:
		return schema.ResultClassError
	}
}

// SatisfiesFileProperty reports whether the task file is expected to satisfy
// all of the given properties. It returns nil when the file name does not
// tell.
func SatisfiesFileProperty(filename string, properties []string) *bool {
	if len(properties) == 0 {
		return nil
	}
	base := filepath.Base(filename)

	allTrue := true
	for _, prop := range properties {
		if expectsViolation(base, prop) {
			return boolPtr(false)
		}
		if !strings.Contains(base, "_true-"+prop) {
			allTrue = false
		}
	}
	if allTrue {
		return boolPtr(true)
	}
	return nil
}

func expectsViolation(base, prop string) bool {
	if strings.Contains(base, "_false-"+prop) {
		return true
	}
	if prop == PropMemSafety {
		for _, sub := range memSafetySubProperties {
			if strings.Contains(base, "_false-"+sub) {
				return true
			}
		}
	}
	return false
}

// ScoreForTask computes the score of one outcome. Only correct and wrong
// outcomes of tasks with a known expected verdict are scored.
func ScoreForTask(filename string, properties []string, category schema.Category) int {
	if category != schema.CategoryCorrect && category != schema.CategoryWrong {
		return ScoreUnknown
	}
	expected := SatisfiesFileProperty(filename, properties)
	if expected == nil {
		return ScoreUnknown
	}
	correct := category == schema.CategoryCorrect
	switch {
	case *expected && correct:
		return ScoreCorrectTrue
	case *expected:
		return ScoreWrongFalse
	case correct:
		return ScoreCorrectFalse
	default:
		return ScoreWrongTrue
	}
}

func boolPtr(b bool) *bool {
	return &b
}
