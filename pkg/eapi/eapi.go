// Package eapi is the static EAPI registry from spec.md §4.E: an ordered,
// immutable mapping from EAPI name to a record of feature flags, phases,
// and metadata keys. Records are interned at package init so equality is a
// pointer comparison, per spec.md §9 ("Interning / sharing").
package eapi

import (
	"embed"
	"sort"

	"gopkg.in/yaml.v3"

	"pkgcraft/pkg/perr"
)

//go:embed eapis.yaml
var eapisFS embed.FS

// Feature is one EAPI-gated grammar or behavior switch.
type Feature string

const (
	Blockers        Feature = "blockers"
	SlotDeps        Feature = "slot_deps"
	SlotOps         Feature = "slot_ops"
	Subslots        Feature = "subslots"
	UseDeps         Feature = "use_deps"
	UseDepDefaults  Feature = "use_dep_defaults"
	RepoIds         Feature = "repo_ids"
	NonfatalDie     Feature = "nonfatal_die"
	DosymRelative   Feature = "dosym_relative"
)

// EAPI is an immutable capability record. Never constructed directly by
// callers; obtain one via Get.
type EAPI struct {
	name             string
	features         map[Feature]bool
	phases           []string
	mandatoryKeys    []string
	optionalKeys     []string
	depKeys          map[string]bool
	incrementalKeys  map[string]bool
	archiveFormats   []string
}

func (e *EAPI) Name() string { return e.name }

// Has reports whether f is enabled for this EAPI.
func (e *EAPI) Has(f Feature) bool { return e.features[f] }

// Phases returns the ordered phase-function sequence for this EAPI.
func (e *EAPI) Phases() []string { return append([]string(nil), e.phases...) }

// MetadataKeys returns mandatory_keys ∪ optional_keys.
func (e *EAPI) MetadataKeys() []string {
	out := append([]string(nil), e.mandatoryKeys...)
	out = append(out, e.optionalKeys...)
	return out
}

func (e *EAPI) MandatoryKeys() []string { return append([]string(nil), e.mandatoryKeys...) }
func (e *EAPI) OptionalKeys() []string  { return append([]string(nil), e.optionalKeys...) }

// IsDepKey reports whether key is dependency-valued under this EAPI.
func (e *EAPI) IsDepKey(key string) bool { return e.depKeys[key] }

// IsIncremental reports whether key accumulates across eclass inheritance.
func (e *EAPI) IsIncremental(key string) bool { return e.incrementalKeys[key] }

// ArchiveFormats returns the set of source-archive extensions this EAPI's
// shell command profile recognizes (e.g. for `unpack`). Opaque beyond that;
// the command implementations themselves live in the external interpreter
// service (spec.md §6).
func (e *EAPI) ArchiveFormats() []string { return append([]string(nil), e.archiveFormats...) }

type yamlEAPI struct {
	Name             string   `yaml:"name"`
	Features         []string `yaml:"features"`
	Phases           []string `yaml:"phases"`
	MandatoryKeys    []string `yaml:"mandatory_keys"`
	OptionalKeys     []string `yaml:"optional_keys"`
	DepKeys          []string `yaml:"dep_keys"`
	IncrementalKeys  []string `yaml:"incremental_keys"`
	ArchiveFormats   []string `yaml:"archive_formats"`
}

type yamlDoc struct {
	EAPIs []yamlEAPI `yaml:"eapis"`
}

var registry map[string]*EAPI
var ordered []string

func init() {
	data, err := eapisFS.ReadFile("eapis.yaml")
	if err != nil {
		panic("eapi: embedded eapis.yaml missing: " + err.Error())
	}
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		panic("eapi: malformed eapis.yaml: " + err.Error())
	}

	registry = make(map[string]*EAPI, len(doc.EAPIs))
	for _, y := range doc.EAPIs {
		e := &EAPI{
			name:            y.Name,
			features:        make(map[Feature]bool, len(y.Features)),
			phases:          y.Phases,
			mandatoryKeys:   y.MandatoryKeys,
			optionalKeys:    y.OptionalKeys,
			depKeys:         toSet(y.DepKeys),
			incrementalKeys: toSet(y.IncrementalKeys),
			archiveFormats:  y.ArchiveFormats,
		}
		for _, f := range y.Features {
			e.features[Feature(f)] = true
		}
		registry[y.Name] = e
		ordered = append(ordered, y.Name)
	}
	sort.Strings(ordered)
}

func toSet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// Get looks up an EAPI by name, returning a stable, interned pointer.
// Unknown names fail with perr.InvalidValue.
func Get(name string) (*EAPI, error) {
	e, ok := registry[name]
	if !ok {
		return nil, perr.NewInvalidValue("unknown EAPI %q", name)
	}
	return e, nil
}

// MustGet is Get, panicking on an unknown name. Only for package-init-time
// constants within this module, never for parsing untrusted input.
func MustGet(name string) *EAPI {
	e, err := Get(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Names returns every registered EAPI name, sorted.
func Names() []string { return append([]string(nil), ordered...) }

// Latest returns the highest-numbered official EAPI ("8").
func Latest() *EAPI { return MustGet("8") }
