// Package scenario defines the declarative test-layer format.
//
// A scenario is the test layer of the discipline: it names actions and
// sequences them - no branching, no assertions of its own beyond
// declarative expectations over the verification ledger.
//
// Scenarios are YAML:
//
//	name: device_upgrade_timeout
//	description: "Activation timeout is attributed to activate_device"
//	packs:
//	  - packs/devices.cue
//	run_token: "test-run-0001"
//	backend:
//	  kind: scripted
//	  script:
//	    - op: post
//	      observe: {status: 201, json: {id: "d-1", name: "iPhone 15"}}
//	    - op: post
//	      fault: {kind: TIMEOUT, message: "deadline exceeded"}
//	steps:
//	  - invoke: perform_device_upgrade
//	    args: {base_url: "http://sut", device_id: "d-0"}
//	assertions:
//	  - type: failure_path
//	    path: [perform_device_upgrade, activate_device]
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend kinds.
const (
	BackendScripted = "scripted"
	BackendHTTP     = "http"
)

// Scenario declares one test run.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Packs lists CUE action-pack paths, relative to the scenario file.
	Packs []string `yaml:"packs"`

	// RunToken optionally fixes the run token for deterministic golden
	// comparison. Empty means a generated UUIDv7.
	RunToken string `yaml:"run_token,omitempty"`

	// Backend selects and configures the physical backend for the run.
	Backend Backend `yaml:"backend"`

	// Steps is the declarative flow: named actions in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the resulting verification ledger.
	Assertions []Assertion `yaml:"assertions"`
}

// Backend configures the run's physical layer.
type Backend struct {
	// Kind is "scripted" or "http".
	Kind string `yaml:"kind"`

	// BaseURL applies to the http backend only; scenarios may reference
	// it from step args instead of hardcoding hosts in packs.
	BaseURL string `yaml:"base_url,omitempty"`

	// Script holds one-shot scripted responses, consumed in order per
	// operation name. Scripted backend only.
	Script []ScriptEntry `yaml:"script,omitempty"`

	// Stubs holds standing responses per operation name, used after the
	// script queue for that operation is exhausted.
	Stubs map[string]map[string]any `yaml:"stubs,omitempty"`
}

// ScriptEntry is one stubbed backend interaction: an observation or a
// transport fault, never both.
type ScriptEntry struct {
	Op      string         `yaml:"op"`
	Observe map[string]any `yaml:"observe,omitempty"`
	Fault   *FaultSpec     `yaml:"fault,omitempty"`
}

// FaultSpec declares a scripted transport fault.
type FaultSpec struct {
	// Kind is a physical.FaultKind name: CONNECTION, TIMEOUT,
	// NOT_FOUND, CANCELED, PROTOCOL.
	Kind    string `yaml:"kind"`
	Message string `yaml:"message,omitempty"`
}

// Step invokes one named action with domain-meaningful arguments.
// Args are seeded into run state before the invocation so data-driven
// actions can reference them as ${key} templates.
type Step struct {
	Invoke string         `yaml:"invoke"`
	Args   map[string]any `yaml:"args,omitempty"`
}

// Assertion validates the ledger or the final failure attribution.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action names the atomic involved (ledger_contains, ledger_count,
	// first_failure).
	Action string `yaml:"action,omitempty"`

	// Outcome optionally narrows ledger_contains / first_failure:
	// "success", "failure", or "aborted".
	Outcome string `yaml:"outcome,omitempty"`

	// Claim optionally narrows ledger_contains to an exact claim.
	Claim string `yaml:"claim,omitempty"`

	// DetailKind optionally narrows first_failure: "verification",
	// "transport", or "aborted".
	DetailKind string `yaml:"detail_kind,omitempty"`

	// Count is the expected number of entries (ledger_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected relative order of entries (ledger_order).
	Actions []string `yaml:"actions,omitempty"`

	// Path is the expected attribution chain, outermost composite to
	// failing atomic (failure_path).
	Path []string `yaml:"path,omitempty"`
}

// Assertion type constants.
const (
	AssertLedgerContains = "ledger_contains"
	AssertLedgerOrder    = "ledger_order"
	AssertLedgerCount    = "ledger_count"
	AssertFirstFailure   = "first_failure"
	AssertFailurePath    = "failure_path"
)

// Load reads and parses a scenario YAML file. Pack paths are resolved
// relative to the scenario file. Returns an error for missing files,
// malformed YAML, unknown fields (typos), or missing required fields.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject unknown fields
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, packPath := range s.Packs {
		if !filepath.IsAbs(packPath) {
			s.Packs[i] = filepath.Join(base, packPath)
		}
	}

	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Validate checks that required fields are present and coherent.
func Validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	switch s.Backend.Kind {
	case BackendScripted:
		for i, entry := range s.Backend.Script {
			if entry.Op == "" {
				return fmt.Errorf("backend.script[%d]: op is required", i)
			}
			if entry.Observe != nil && entry.Fault != nil {
				return fmt.Errorf("backend.script[%d]: observe and fault are mutually exclusive", i)
			}
			if entry.Observe == nil && entry.Fault == nil {
				return fmt.Errorf("backend.script[%d]: observe or fault is required", i)
			}
			if entry.Fault != nil && entry.Fault.Kind == "" {
				return fmt.Errorf("backend.script[%d].fault: kind is required", i)
			}
		}
	case BackendHTTP:
		if len(s.Backend.Script) > 0 || len(s.Backend.Stubs) > 0 {
			return fmt.Errorf("backend: script/stubs apply to the scripted kind only")
		}
	case "":
		return fmt.Errorf("backend.kind is required")
	default:
		return fmt.Errorf("backend.kind: unknown kind %q", s.Backend.Kind)
	}

	for _, packPath := range s.Packs {
		if _, err := os.Stat(packPath); os.IsNotExist(err) {
			return fmt.Errorf("pack file not found: %s", packPath)
		}
	}

	for i, step := range s.Steps {
		if step.Invoke == "" {
			return fmt.Errorf("steps[%d]: invoke is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	switch a.Type {
	case AssertLedgerContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for ledger_contains", index)
		}
	case AssertLedgerOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for ledger_order", index)
		}
	case AssertLedgerCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for ledger_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for ledger_count", index)
		}
	case AssertFirstFailure:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for first_failure", index)
		}
	case AssertFailurePath:
		if len(a.Path) == 0 {
			return fmt.Errorf("assertions[%d]: path is required for failure_path", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
