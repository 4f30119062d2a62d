// Package audit lists recorded membership verdicts from a ledger database.
package audit

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	entrypoint "github.com/louisbranch/business-network/internal/platform/cmd"
	"github.com/louisbranch/business-network/internal/services/membership/ledger"
	"github.com/louisbranch/business-network/internal/services/membership/storage"
	"github.com/louisbranch/business-network/internal/services/membership/storage/sqlite"
)

// Config holds audit command configuration.
type Config struct {
	DBPath    string `env:"BUSINESS_NETWORK_AUDIT_DB"        envDefault:"data/ledger.db"`
	Filter    string `env:"BUSINESS_NETWORK_AUDIT_FILTER"`
	PageSize  int    `env:"BUSINESS_NETWORK_AUDIT_PAGE_SIZE" envDefault:"50"`
	PageToken string `env:"BUSINESS_NETWORK_AUDIT_PAGE_TOKEN"`
	// All follows page tokens until the log is exhausted.
	All bool `env:"BUSINESS_NETWORK_AUDIT_ALL"`
}

// ParseConfig parses environment defaults and flag overrides into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "ledger database path")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, `AIP-160 verdict filter, e.g. outcome = "rejected" AND command = "activate"`)
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "verdicts per page")
	fs.StringVar(&cfg.PageToken, "page-token", cfg.PageToken, "page token from a previous listing")
	fs.BoolVar(&cfg.All, "all", cfg.All, "list every page")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run prints verdicts matching the configured filter.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		return errors.New("database path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open ledger database: %w", err)
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAudit, func(ctx context.Context) error {
		store, err := sqlite.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		l, err := ledger.New(ledger.Config{Memberships: store, Verdicts: store})
		if err != nil {
			return err
		}
		return listVerdicts(ctx, l, cfg, out)
	})
}

func listVerdicts(ctx context.Context, l *ledger.Ledger, cfg Config, out io.Writer) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "RECORDED_AT\tMEMBERSHIP\tCOMMAND\tOUTCOME\tREASON\tFIELD\tSIGNERS")

	token := cfg.PageToken
	count := 0
	for {
		page, err := l.Verdicts(ctx, cfg.Filter, cfg.PageSize, token)
		if err != nil {
			return err
		}
		for _, verdict := range page.Verdicts {
			writeVerdict(writer, verdict)
			count++
		}
		token = page.NextPageToken
		if !cfg.All || token == "" {
			break
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write verdicts: %w", err)
	}
	fmt.Fprintf(out, "%d verdict(s)\n", count)
	if token != "" {
		fmt.Fprintf(out, "next page token: %s\n", token)
	}
	return nil
}

func writeVerdict(w io.Writer, verdict storage.Verdict) {
	signers := make([]string, 0, len(verdict.Signers))
	for _, signer := range verdict.Signers {
		signers = append(signers, string(signer))
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		verdict.RecordedAt.UTC().Format(time.RFC3339),
		orDash(verdict.MembershipID),
		verdict.Command,
		verdict.Outcome,
		orDash(verdict.Reason),
		orDash(verdict.Field),
		orDash(strings.Join(signers, "; ")),
	)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
