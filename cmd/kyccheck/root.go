package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"kycgate/internal/kyc/config"
	"kycgate/internal/kyc/contract"
	kychandler "kycgate/internal/kyc/handler"
	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/service"
	"kycgate/internal/platform/logger"
	"kycgate/pkg/platform/httputil"
	"kycgate/pkg/requestcontext"
)

// Exit codes.
const (
	exitAccepted    = 0
	exitError       = 1
	exitNotAccepted = 2
)

const (
	formatJSON = "json"
	formatText = "text"
	stdinName  = "-"
)

// errNotAccepted marks a completed run where some document was not accepted.
var errNotAccepted = errors.New("one or more documents were not accepted")

type options struct {
	configFile string
	threshold  float64
	minAge     int
	maxAge     int
	today      string
	format     string
	logLevel   string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return exitAccepted
	case errors.Is(err, errNotAccepted):
		return exitNotAccepted
	default:
		fmt.Fprintln(stderr, "kyccheck:", err)
		return exitError
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "kyccheck [flags] [FILE...]",
		Short: "Verify KYC document extractions and print verdicts",
		Long: "kyccheck runs each extraction through normalization, validation and the\n" +
			"rule engine and prints the verdicts. A file holds one extraction object or\n" +
			"an array of them. With no files, or with \"-\", input is read from stdin.\n\n" +
			"Exit status is 0 when every document is accepted, 2 when any is rejected\n" +
			"or needs review, and 1 on error.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "YAML file with verification settings")
	flags.Float64Var(&opts.threshold, "threshold", 0, "confidence threshold in [0,1] (overrides config)")
	flags.IntVar(&opts.minAge, "min-age", 0, "minimum holder age in years (overrides config)")
	flags.IntVar(&opts.maxAge, "max-age", 0, "maximum holder age in years (overrides config)")
	flags.StringVar(&opts.today, "today", "", "evaluation date as YYYY-MM-DD (default: current UTC date)")
	flags.StringVarP(&opts.format, "format", "f", formatJSON, "output format: json or text")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	return cmd
}

func check(cmd *cobra.Command, opts *options, paths []string) error {
	if opts.format != formatJSON && opts.format != formatText {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.today != "" {
		day, err := time.Parse(time.DateOnly, opts.today)
		if err != nil {
			return fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", opts.today)
		}
		ctx = requestcontext.WithTime(ctx, day)
	}

	contracts, err := contract.Load()
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		paths = []string{stdinName}
	}
	stdinArgs := 0
	for _, path := range paths {
		if path == stdinName {
			stdinArgs++
		}
	}
	if stdinArgs > 1 {
		return errors.New(`stdin ("-") may be given only once`)
	}
	var docs []service.Document
	for _, path := range paths {
		fileDocs, err := readDocuments(cmd.InOrStdin(), contracts, path)
		if err != nil {
			return err
		}
		docs = append(docs, fileDocs...)
	}

	svc, err := service.New(cfg,
		service.WithLogger(logger.New(cmd.ErrOrStderr(), formatText, logger.ParseLevel(opts.logLevel))),
	)
	if err != nil {
		return err
	}
	result, err := svc.VerifyBatch(ctx, docs)
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), opts.format, result); err != nil {
		return err
	}
	if result.Summary.Accepted != result.Summary.Total {
		return errNotAccepted
	}
	return nil
}

// buildConfig layers explicitly set flags over the config file, or over the
// defaults when no file is given.
func buildConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		loaded, err := config.LoadFile(opts.configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.ConfidenceThreshold = opts.threshold
	}
	if flags.Changed("min-age") {
		cfg.MinAge = opts.minAge
	}
	if flags.Changed("max-age") {
		cfg.MaxAge = opts.maxAge
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// readDocuments loads one extraction file. A single object is identified by
// the file name; array items are identified as name#index.
func readDocuments(stdin io.Reader, contracts *contract.Contracts, path string) ([]service.Document, error) {
	var (
		data []byte
		err  error
		name string
	)
	if path == stdinName {
		name = "stdin"
		data, err = io.ReadAll(stdin)
	} else {
		name = filepath.Base(path)
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := contracts.Validate(contract.KindExtractionFile, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var payload any
	if err := httputil.Decode(data, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch v := payload.(type) {
	case map[string]any:
		return []service.Document{{ID: name, Extraction: models.RawExtraction(v)}}, nil
	case []any:
		docs := make([]service.Document, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: item %d is not an object", path, i)
			}
			docs = append(docs, service.Document{
				ID:         fmt.Sprintf("%s#%d", name, i),
				Extraction: models.RawExtraction(obj),
			})
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("%s: expected an object or an array of objects", path)
	}
}

func writeReport(w io.Writer, format string, result *service.BatchResult) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(kychandler.FromBatchResult(result))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tTYPE\tNAME\tDECISION\tCONFIDENCE\tISSUES")
	for _, row := range result.Summary.Rows {
		confidence := "-"
		if row.Confidence != nil {
			confidence = fmt.Sprintf("%.2f (%s)", *row.Confidence, row.ConfidenceBand)
		}
		name := row.FullName
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			row.DocumentID, row.DocumentType, name, row.Decision, confidence, row.Issues)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range result.Results {
		for _, reason := range r.Verdict.Reasons {
			fmt.Fprintf(w, "%s: %s\n", r.DocumentID, reason)
		}
	}
	s := result.Summary
	_, err := fmt.Fprintf(w, "total=%d accepted=%d rejected=%d review=%d\n",
		s.Total, s.Accepted, s.Rejected, s.Review)
	return err
}
