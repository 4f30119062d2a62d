// Package validate checks one membership transition document from the command line.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	entrypoint "github.com/louisbranch/business-network/internal/platform/cmd"
	"github.com/louisbranch/business-network/internal/platform/otel"
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
	"github.com/louisbranch/business-network/internal/services/membership/domain/transition"
	"github.com/louisbranch/business-network/internal/services/membership/ledger"
	"github.com/louisbranch/business-network/internal/services/membership/storage"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// ErrRejected is returned in strict mode when the transition is rejected.
var ErrRejected = errors.New("transition rejected")

// Config holds validate command configuration.
type Config struct {
	// Input is a document path; empty or "-" reads stdin.
	Input  string `env:"BUSINESS_NETWORK_VALIDATE_INPUT"`
	Strict bool   `env:"BUSINESS_NETWORK_VALIDATE_STRICT"`
	Indent bool   `env:"BUSINESS_NETWORK_VALIDATE_INDENT" envDefault:"true"`
}

// ParseConfig parses environment defaults and flag overrides into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Input, "input", cfg.Input, "transition document path (default: stdin)")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "exit non-zero when the transition is rejected")
	fs.BoolVar(&cfg.Indent, "indent", cfg.Indent, "indent the verdict JSON")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Input == "" && fs.NArg() > 0 {
		cfg.Input = fs.Arg(0)
	}
	return cfg, nil
}

// Document is one transition as submitted for validation.
type Document struct {
	Prior    *membership.State  `json:"prior,omitempty"`
	Proposed *membership.State  `json:"proposed,omitempty"`
	Command  command.Envelope   `json:"command"`
	Signers  []membership.Party `json:"signers"`
}

// Verdict is the printed validation result.
type Verdict struct {
	Outcome  storage.Outcome `json:"outcome"`
	Command  command.Kind    `json:"command,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Field    string          `json:"field,omitempty"`
	Message  string          `json:"message,omitempty"`
	GRPCCode string          `json:"grpc_code,omitempty"`
	Status   *StatusInfo     `json:"status,omitempty"`
}

// StatusInfo is the ErrorInfo detail of a rejection's gRPC status.
type StatusInfo struct {
	Reason   string            `json:"reason"`
	Domain   string            `json:"domain"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Run reads the document, validates it, and prints the verdict.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceValidate, func(ctx context.Context) error {
		doc, err := readDocument(cfg.Input, in)
		if err != nil {
			return err
		}
		verdict, err := Evaluate(ctx, transition.NewCoreValidator(), doc)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(out)
		if cfg.Indent {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(verdict); err != nil {
			return fmt.Errorf("write verdict: %w", err)
		}
		if cfg.Strict && verdict.Outcome != storage.OutcomeAccepted {
			return fmt.Errorf("%w: %s", ErrRejected, verdict.Reason)
		}
		return nil
	})
}

// Evaluate validates doc. Unknown and missing command kinds are reported as
// UNSUPPORTED_COMMAND verdicts; malformed commands are errors.
func Evaluate(ctx context.Context, validator *transition.Validator, doc Document) (verdict Verdict, err error) {
	_, span := otel.StartSpan(ctx, "validate.Evaluate",
		attribute.String("membership.command", string(doc.Command.Kind)),
	)
	defer func() { otel.EndSpan(span, err) }()

	var decision command.Decision
	cmd, decodeErr := command.Decode(doc.Command)
	switch {
	case decodeErr == nil, errors.Is(decodeErr, command.ErrKindRequired):
		decision = validator.Validate(transition.Request{
			Prior:    doc.Prior,
			Proposed: doc.Proposed,
			Command:  cmd,
			Signers:  doc.Signers,
		})
	case errors.Is(decodeErr, command.ErrKindUnknown):
		decision = command.Reject(command.Rejection{
			Code:    transition.CodeUnsupportedCommand,
			Message: decodeErr.Error(),
		})
	default:
		return Verdict{}, fmt.Errorf("decode command: %w", decodeErr)
	}

	stored := storage.VerdictFromDecision(decision)
	verdict = Verdict{
		Outcome: stored.Outcome,
		Command: command.Kind(strings.ToLower(strings.TrimSpace(string(doc.Command.Kind)))),
		Reason:  stored.Reason,
		Field:   stored.Field,
		Message: stored.Message,
	}
	if reason, rejected := decision.Reason(); rejected {
		st := status.Convert(ledger.RejectionError(verdict.Command, reason).ToGRPCStatus())
		verdict.GRPCCode = st.Code().String()
		verdict.Status = statusInfo(st)
	}
	span.SetAttributes(attribute.String("membership.outcome", string(verdict.Outcome)))
	return verdict, nil
}

func statusInfo(st *status.Status) *StatusInfo {
	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok {
			return &StatusInfo{Reason: info.GetReason(), Domain: info.GetDomain(), Metadata: info.GetMetadata()}
		}
	}
	return nil
}

func readDocument(path string, stdin io.Reader) (Document, error) {
	var reader io.Reader
	switch path = strings.TrimSpace(path); path {
	case "", "-":
		if stdin == nil {
			return Document{}, errors.New("input is required")
		}
		reader = stdin
	default:
		file, err := os.Open(path)
		if err != nil {
			return Document{}, fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		reader = file
	}
	return DecodeDocument(reader)
}

// DecodeDocument parses a transition document and canonicalizes its states.
func DecodeDocument(reader io.Reader) (Document, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	for name, state := range map[string]*membership.State{"prior": doc.Prior, "proposed": doc.Proposed} {
		if state == nil {
			continue
		}
		if err := canonicalize(state); err != nil {
			return Document{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return doc, nil
}

func canonicalize(state *membership.State) error {
	normalized, ok := membership.NormalizeStatus(string(state.Status))
	if !ok {
		return fmt.Errorf("unknown status %q", state.Status)
	}
	state.Status = normalized
	if len(state.Roles) > 0 {
		roles := slices.Clone(state.Roles)
		slices.Sort(roles)
		state.Roles = slices.Compact(roles)
	}
	return nil
}
