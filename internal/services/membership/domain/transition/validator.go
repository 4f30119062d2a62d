package transition

import (
	"errors"

	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
)

// ErrRegistryRequired indicates a validator built without definitions.
var ErrRegistryRequired = errors.New("transition registry is required")

// Validator dispatches transition requests to their command definitions.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	registry *Registry
}

// NewValidator returns a validator over the given registry.
func NewValidator(registry *Registry) (*Validator, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	return &Validator{registry: registry}, nil
}

// NewCoreValidator returns a validator for every membership command.
func NewCoreValidator() *Validator {
	registry, err := NewCoreRegistry()
	if err != nil {
		// Core definitions are static; a failure here is a programming error.
		panic(err)
	}
	return &Validator{registry: registry}
}

var coreValidator = NewCoreValidator()

// Validate checks req with the core validator.
func Validate(req Request) command.Decision {
	return coreValidator.Validate(req)
}

// Validate returns an accepting decision or the first violated rule.
func (v *Validator) Validate(req Request) command.Decision {
	if req.Command == nil {
		return command.Reject(*reject(CodeUnsupportedCommand, "command is required"))
	}
	var registry *Registry
	if v != nil {
		registry = v.registry
	}
	def, ok := registry.Definition(req.Command.Kind())
	if !ok {
		return command.Reject(*reject(CodeUnsupportedCommand, "command kind "+string(req.Command.Kind())+" is not supported"))
	}
	if rejection := checkCommon(req); rejection != nil {
		return command.Reject(*rejection)
	}
	if rejection := def.Check(req); rejection != nil {
		return command.Reject(*rejection)
	}
	if rejection := def.Signers(req).evaluate(req.declaredSigners()); rejection != nil {
		return command.Reject(*rejection)
	}
	return command.Accept()
}
