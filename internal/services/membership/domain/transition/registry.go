package transition

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
)

var (
	// ErrKindRequired indicates a definition without a command kind.
	ErrKindRequired = errors.New("command kind is required")
	// ErrCheckRequired indicates a definition without state rules.
	ErrCheckRequired = errors.New("definition check is required")
	// ErrSignersRequired indicates a definition without a signer policy.
	ErrSignersRequired = errors.New("definition signer policy is required")
)

// Definition binds a command kind to its state rules and signer policy.
type Definition struct {
	Kind command.Kind
	// Check runs the command's state rules after the common checks pass.
	Check func(Request) *command.Rejection
	// Signers returns the exact signer policy. It is only called once Check
	// has passed, so it may rely on the states Check requires.
	Signers func(Request) SignerPolicy
}

// Registry maps command kinds to their definitions.
type Registry struct {
	definitions map[command.Kind]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[command.Kind]Definition)}
}

// CoreDefinitions returns the definitions of every membership command.
func CoreDefinitions() []Definition {
	return []Definition{
		requestDefinition(),
		onboardDefinition(),
		activateDefinition(),
		suspendDefinition(),
		revokeDefinition(),
		modifyRolesDefinition(),
		modifyBusinessIdentityDefinition(),
		modifyParticipantsDefinition(),
	}
}

// NewCoreRegistry returns a registry holding CoreDefinitions.
func NewCoreRegistry() (*Registry, error) {
	registry := NewRegistry()
	for _, def := range CoreDefinitions() {
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a definition to the registry.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Kind = command.Kind(strings.TrimSpace(string(def.Kind)))
	if def.Kind == "" {
		return ErrKindRequired
	}
	if def.Check == nil {
		return fmt.Errorf("%w: %s", ErrCheckRequired, def.Kind)
	}
	if def.Signers == nil {
		return fmt.Errorf("%w: %s", ErrSignersRequired, def.Kind)
	}
	if r.definitions == nil {
		r.definitions = make(map[command.Kind]Definition)
	}
	if _, exists := r.definitions[def.Kind]; exists {
		return fmt.Errorf("command kind already registered: %s", def.Kind)
	}
	r.definitions[def.Kind] = def
	return nil
}

// Definition returns the definition for a command kind.
func (r *Registry) Definition(kind command.Kind) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.definitions[kind]
	return def, ok
}

// Kinds returns the registered command kinds in sorted order.
func (r *Registry) Kinds() []command.Kind {
	if r == nil || len(r.definitions) == 0 {
		return nil
	}
	kinds := make([]command.Kind, 0, len(r.definitions))
	for kind := range r.definitions {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i] < kinds[j]
	})
	return kinds
}
