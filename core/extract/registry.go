package extract

import (
	"fmt"
	"sync"

	"github.com/huangsam/benchtable/internal/contract"
)

// knownModules maps the tool modules recorded in result files onto extractor kinds.
var knownModules = map[string]Kind{
	"benchexec.tools.cpachecker": KindPrefix,
	"benchexec.tools.fusebmc":    KindBase,
	"benchexec.tools.witch":      KindBase,
}

// Registry resolves tool modules to extractors. Every module is resolved at
// most once; failures are remembered as Unavailable.
type Registry struct {
	mu      sync.Mutex
	modules map[string]Kind
	loaded  map[string]ValueExtractor
}

// NewRegistry creates a registry that knows the built-in tool modules plus
// the given aliases (tool module -> extractor kind).
func NewRegistry(aliases map[string]string) (*Registry, error) {
	modules := make(map[string]Kind, len(knownModules)+len(aliases))
	for m, k := range knownModules {
		modules[m] = k
	}
	for m, k := range aliases {
		kind := Kind(k)
		if _, ok := ValidKinds[kind]; !ok {
			return nil, fmt.Errorf("invalid extractor kind '%s' for tool module '%s'", k, m)
		}
		modules[m] = kind
	}
	return &Registry{
		modules: modules,
		loaded:  make(map[string]ValueExtractor),
	}, nil
}

// Load returns the extractor for toolModule. runSetName is only used to
// explain why no extractor is available.
func (r *Registry) Load(toolModule, runSetName string) ValueExtractor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.loaded[toolModule]; ok {
		return e
	}
	e := r.resolve(toolModule, runSetName)
	r.loaded[toolModule] = e
	return e
}

func (r *Registry) resolve(toolModule, runSetName string) ValueExtractor {
	log := contract.Logger().Sugar()
	if toolModule == "" {
		log.Warnf(`Cannot extract values from log files for benchmark results %s (missing attribute "toolmodule" on tag "result").`, runSetName)
		return Unavailable
	}
	kind, ok := r.modules[toolModule]
	if !ok {
		log.Warnf(`Missing module "%s", cannot extract values from log files.`, toolModule)
		return Unavailable
	}
	e, err := NewExtractor(kind)
	if err != nil {
		log.Warnw("Cannot load value extractor", "module", toolModule, "error", err)
		return Unavailable
	}
	log.Debugw("Loaded value extractor", "module", toolModule, "kind", kind)
	return e
}
