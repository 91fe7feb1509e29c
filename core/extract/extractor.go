package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/huangsam/benchtable/internal/contract"
	"go.uber.org/zap"
)

// ValueExtractor pulls a value for a patterned column out of a task's log lines.
type ValueExtractor interface {
	ValueFromOutput(lines []string, identifier string) (string, bool)
}

// Kind names a ValueExtractor implementation.
type Kind string

// All extractor kinds supported.
const (
	KindNone   Kind = "none"
	KindBase   Kind = "base"
	KindPrefix Kind = "prefix"
	KindRegex  Kind = "regex"
)

// ValidKinds lists all valid extractor kinds.
var ValidKinds = map[Kind]struct{}{
	KindNone:   {},
	KindBase:   {},
	KindPrefix: {},
	KindRegex:  {},
}

// Unavailable is returned for tool modules that cannot be loaded. It never
// yields a value.
var Unavailable ValueExtractor = noExtractor{}

// NewExtractor returns the extractor implementing kind.
func NewExtractor(kind Kind) (ValueExtractor, error) {
	switch kind {
	case KindNone:
		return Unavailable, nil
	case KindBase:
		return baseExtractor{}, nil
	case KindPrefix:
		return prefixExtractor{}, nil
	case KindRegex:
		return &regexExtractor{patterns: make(map[string]*regexp.Regexp)}, nil
	default:
		return nil, fmt.Errorf("unknown extractor kind '%s' (valid kinds: %s)", kind, strings.Join(kindNames(), ", "))
	}
}

func kindNames() []string {
	names := make([]string, 0, len(ValidKinds))
	for k := range ValidKinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

type noExtractor struct{}

func (noExtractor) ValueFromOutput([]string, string) (string, bool) {
	return "", false
}

// baseExtractor serves tool adapters that report everything through the result file.
type baseExtractor struct{}

func (baseExtractor) ValueFromOutput([]string, string) (string, bool) {
	return "", false
}

// prefixExtractor reads "identifier: value (details)" lines.
type prefixExtractor struct{}

func (prefixExtractor) ValueFromOutput(lines []string, identifier string) (string, bool) {
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimLeft(line, " \t\r\n\f\v"), identifier) {
			continue
		}
		start := strings.Index(line, ":") + 1
		rest := line[start:]
		if end := strings.Index(rest, "("); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// regexExtractor treats the identifier as a regular expression.
type regexExtractor struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

func (r *regexExtractor) compile(identifier string) *regexp.Regexp {
	r.mu.Lock()
	defer r.mu.Unlock()
	if re, ok := r.patterns[identifier]; ok {
		return re
	}
	re, err := regexp.Compile(identifier)
	if err != nil {
		contract.Logger().Warn("Invalid column pattern, cannot extract values from log files",
			zap.String("pattern", identifier), zap.Error(err))
	}
	r.patterns[identifier] = re
	return re
}

func (r *regexExtractor) ValueFromOutput(lines []string, identifier string) (string, bool) {
	re := r.compile(identifier)
	if re == nil {
		return "", false
	}
	for _, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return strings.TrimSpace(m[1]), true
		}
		return strings.TrimSpace(m[0]), true
	}
	return "", false
}
