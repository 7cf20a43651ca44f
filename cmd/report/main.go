// Command report builds an analytics report from a ticket export file and
// prints it as JSON.
//
//	report --input tickets.json --technician "Ana Souza" --as-of 2024-06-30
//	report --input - --team --store redis --redis-url redis://localhost:6379/0
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/lorrc/service-desk-analytics/internal/adapters/secondary/memory"
	"github.com/lorrc/service-desk-analytics/internal/adapters/secondary/redis"
	"github.com/lorrc/service-desk-analytics/internal/config"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
	"github.com/lorrc/service-desk-analytics/internal/core/services"
	"github.com/lorrc/service-desk-analytics/internal/infrastructure/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "report:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	input       string
	technician  string
	team        bool
	asOf        string
	from        string
	to          string
	categories  []string
	priorities  []string
	statuses    []string
	improvement float64
	policyFile  string
	store       string
	redisURL    string
	redisPrefix string
	workers     int
	preview     bool
	pretty      bool
	logLevel    string
}

func parseFlags(args []string, stderr io.Writer) (*options, *pflag.FlagSet, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.input, "input", "i", "", `ticket export in JSON; "-" reads stdin`)
	fs.StringVarP(&opts.technician, "technician", "t", "", "build the report for this technician")
	fs.BoolVar(&opts.team, "team", false, "build the team overview instead of a technician report")
	fs.StringVar(&opts.asOf, "as-of", "", "reference date (YYYY-MM-DD or RFC 3339); defaults to now")
	fs.StringVar(&opts.from, "from", "", "only tickets opened on or after this date")
	fs.StringVar(&opts.to, "to", "", "only tickets opened on or before this date")
	fs.StringSliceVar(&opts.categories, "category", nil, "only these categories (repeatable)")
	fs.StringSliceVar(&opts.priorities, "priority", nil, "only these priorities: LOW, MEDIUM, HIGH, CRITICAL")
	fs.StringSliceVar(&opts.statuses, "status", nil, "only these statuses: NEW, IN_PROGRESS, PENDING, SOLVED, CLOSED")
	fs.Float64Var(&opts.improvement, "improvement", 0, "compliance improvement in percentage points; derived from history when unset")
	fs.StringVar(&opts.policyFile, "policy", "", "YAML file overriding the default thresholds")
	fs.StringVar(&opts.store, "store", config.StorageMemory, "profile store: memory or redis")
	fs.StringVar(&opts.redisURL, "redis-url", "localhost:6379", "redis address or URL when --store=redis")
	fs.StringVar(&opts.redisPrefix, "redis-prefix", "analytics:", "redis key prefix")
	fs.IntVar(&opts.workers, "workers", 4, "concurrent technicians in a team report")
	fs.BoolVar(&opts.preview, "preview", false, "compute XP and badges without saving them to the profile store")
	fs.BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	switch {
	case opts.input == "":
		return nil, nil, errors.New("--input is required")
	case opts.team && opts.technician != "":
		return nil, nil, errors.New("--team and --technician are mutually exclusive")
	case !opts.team && strings.TrimSpace(opts.technician) == "":
		return nil, nil, errors.New("one of --technician or --team is required")
	}
	return opts, fs, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(logging.Config{
		Level:        opts.logLevel,
		Format:       "text",
		Output:       stderr,
		ServiceName:  "service-desk-report",
		PolicySource: opts.policyFile,
	})

	policy, err := config.LoadPolicy(opts.policyFile)
	if err != nil {
		return err
	}

	tickets, err := readTickets(opts.input, stdin)
	if err != nil {
		return err
	}

	filter, err := buildFilter(opts)
	if err != nil {
		return err
	}
	asOf, err := parseDate("as-of", opts.asOf)
	if err != nil {
		return err
	}

	kv, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	gamification := services.NewGamificationService(services.NewProfileStore(kv), nil, policy, logger)
	reports := services.NewReportService(services.ReportDependencies{
		Gamification: gamification,
		Settings:     services.NewSettingsService(kv),
	}, services.ReportOptions{
		Policy:     policy,
		MaxWorkers: opts.workers,
	}, logger)

	var result any
	if opts.team {
		result, err = reports.BuildTeamReport(ctx, ports.TeamReportParams{
			Tickets:      tickets,
			TrustTickets: !opts.preview,
			Filter:       filter,
			AsOf:         derefTime(asOf),
		})
	} else {
		params := ports.TechnicianReportParams{
			Technician:   opts.technician,
			Tickets:      tickets,
			TrustTickets: !opts.preview,
			Filter:       filter,
			AsOf:         derefTime(asOf),
		}
		if fs.Changed("improvement") {
			params.ImprovementPP = &opts.improvement
		}
		result, err = reports.BuildTechnicianReport(ctx, params)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

// readTickets accepts a bare JSON array or an object with a "tickets" array.
func readTickets(path string, stdin io.Reader) ([]domain.RawTicket, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Tickets []domain.RawTicket `json:"tickets"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		return wrapped.Tickets, nil
	}

	var tickets []domain.RawTicket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return tickets, nil
}

func buildFilter(opts *options) (*domain.TicketFilter, error) {
	from, err := parseDate("from", opts.from)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("to", opts.to)
	if err != nil {
		return nil, err
	}

	filter := &domain.TicketFilter{
		From:       from,
		To:         to,
		Categories: opts.categories,
	}
	for _, p := range opts.priorities {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToUpper(p)))
	}
	for _, s := range opts.statuses {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(s)))
	}

	if filter.IsEmpty() {
		return nil, nil
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return filter, nil
}

func parseDate(flag, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("--%s: %q is not a YYYY-MM-DD date or RFC 3339 timestamp", flag, raw)
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func openStore(ctx context.Context, opts *options) (ports.KeyValueStore, func(), error) {
	switch opts.store {
	case config.StorageMemory:
		return memory.NewKeyValueStore(), func() {}, nil
	case config.StorageRedis:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := redis.Connect(connectCtx, opts.redisURL)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewKeyValueStore(client, opts.redisPrefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("--store: unsupported backend %q", opts.store)
	}
}
