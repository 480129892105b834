package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FranksOps/scout/internal/config"
	"github.com/FranksOps/scout/internal/enrich"
	"github.com/FranksOps/scout/internal/export"
	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/pipeline"
	"github.com/FranksOps/scout/internal/query"
	"github.com/FranksOps/scout/internal/report"
	"github.com/FranksOps/scout/internal/results"
	"github.com/FranksOps/scout/internal/scraper"
	"github.com/FranksOps/scout/internal/serp"
	"github.com/FranksOps/scout/pkg/proxy"
	"github.com/FranksOps/scout/pkg/useragent"
)

const (
	defaultResults = 30
	minResults     = 1
	maxResults     = 100
)

type searchOpts struct {
	keywords   string
	site       string
	results    int
	format     string
	output     string
	reportFmt  string
	reportFile string
}

func newSearchCmd(a *app) *cobra.Command {
	o := &searchOpts{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search keywords, enrich every hit and export the table",
		Example: `  scout search -k "shop, exercise" --site facebook.com -n 30
  scout search -k "ร้านกาแฟ" --format excel -o cafes.xlsx --report html --report-file report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), a, o, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.keywords, "keywords", "k", "", "comma-separated keywords")
	f.StringVar(&o.site, "site", string(query.SiteAll), "restrict to a site: all, facebook.com, instagram.com, x.com")
	f.IntVarP(&o.results, "results", "n", defaultResults, fmt.Sprintf("number of results (%d-%d)", minResults, maxResults))
	f.StringVar(&o.format, "format", string(export.FormatCSV), "export format: csv or excel")
	f.StringVarP(&o.output, "output", "o", "", "export file (default search_results.csv or search_results.xlsx)")
	f.StringVar(&o.reportFmt, "report", "text", "run summary format: text, json, html or none")
	f.StringVar(&o.reportFile, "report-file", "", "write the run summary to a file instead of stdout")

	f.Int("metrics-port", 0, "serve Prometheus metrics on this port (0 disables)")
	f.Duration("fetch-timeout", scraper.DefaultTimeout, "timeout per result page")
	f.Duration("search-timeout", serp.DefaultTimeout, "timeout per search API call")
	f.String("fingerprint", string(fingerprint.ProfileGo), "TLS fingerprint: "+strings.Join(fingerprint.Profiles(), ", "))
	f.String("proxy-file", "", "file with one proxy URL per line")
	f.StringSlice("user-agent", nil, "User-Agent to rotate through (repeatable)")
	f.String("language", serp.DefaultLanguage, "search interface language")
	f.Bool("respect-robots", false, "skip result pages that robots.txt disallows")

	_ = cmd.MarkFlagRequired("keywords")

	for flag, key := range map[string]string{
		"metrics-port":   "metrics_port",
		"fetch-timeout":  "fetch.timeout",
		"search-timeout": "search.timeout",
		"fingerprint":    "fetch.fingerprint",
		"proxy-file":     "fetch.proxy_file",
		"user-agent":     "fetch.user_agents",
		"language":       "search.language",
		"respect-robots": "fetch.respect_robots",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}

	return cmd
}

func runSearch(ctx context.Context, a *app, o *searchOpts, stdout io.Writer) error {
	site, err := query.ParseSite(o.site)
	if err != nil {
		return err
	}
	q := query.Parse(o.keywords, site)
	if err := q.Validate(); err != nil {
		return fmt.Errorf("please enter at least one keyword: %w", err)
	}
	if o.results < minResults || o.results > maxResults {
		return fmt.Errorf("--results must be between %d and %d, got %d", minResults, maxResults, o.results)
	}
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if o.reportFmt != "none" && o.reportFmt != "text" && o.reportFmt != "json" && o.reportFmt != "html" {
		return fmt.Errorf("unknown report format %q", o.reportFmt)
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.Start(cfg.MetricsPort, a.logger)
		defer func() { _ = srv.Stop(context.Background()) }()
		a.logger.Info("metrics server started", "port", cfg.MetricsPort)
	}

	provider, err := serp.NewGoogleCSE(serp.GoogleConfig{
		APIKey:   cfg.GoogleAPIKey,
		EngineID: cfg.GoogleCSEID,
		Endpoint: cfg.Search.Endpoint,
		Language: cfg.Search.Language,
		PageSize: cfg.Search.PageSize,
		Timeout:  cfg.Search.Timeout,
	}, a.logger)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg.Fetch, a.logger)
	if err != nil {
		return err
	}

	a.logger.Debug("page fetcher ready", "timeout", fetcher.Timeout(), "fingerprint", cfg.Fetch.Fingerprint)

	enricher := enrich.New(fetcher, a.logger)
	if cfg.Fetch.RespectRobots {
		enricher.WithRobots(scraper.NewRobotsPolicy(fetcher, cfg.Fetch.RobotsAgent, a.logger))
	}

	p := pipeline.Pipeline{
		SERPProvider: provider,
		Enricher:     enricher,
		Logger:       a.logger,
		OnEntry:      func(e results.Entry) { printEntry(stdout, e) },
	}

	set, runErr := p.Run(ctx, q, o.results)
	if set == nil {
		return runErr
	}

	if runErr == nil {
		// the text summary on stdout carries the same line
		if o.reportFmt != "text" || o.reportFile != "" {
			fmt.Fprintf(stdout, "Found %d results (search engine reports %s)\n", set.Len(), set.ReportedTotal)
		}

		out := o.output
		if out == "" {
			out = format.FileName()
		}
		if err := writeExport(out, format, set.Entries); err != nil {
			return err
		}
		a.logger.Info("results exported", "file", out, "format", format, "content_type", format.ContentType(), "rows", set.Len())
	}

	if err := writeReport(stdout, o, set); err != nil {
		return err
	}
	return runErr
}

func newFetcher(fc config.FetchConfig, logger *slog.Logger) (*scraper.Fetcher, error) {
	profile, err := fingerprint.ParseProfile(fc.Fingerprint)
	if err != nil {
		return nil, err
	}

	uaPool := useragent.NewPool(fc.UserAgents)
	if fc.RandomUserAgent {
		uaPool = useragent.NewRandomPool(fc.UserAgents)
	}

	var proxyPool *proxy.Pool
	if fc.ProxyFile != "" {
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.LoadFile(fc.ProxyFile); err != nil {
			return nil, fmt.Errorf("load proxies: %w", err)
		}
		logger.Info("proxies loaded", "count", proxyPool.Len())
	}

	return scraper.NewFetcher(scraper.FetchConfig{
		Timeout:        fc.Timeout,
		MaxRedirects:   fc.MaxRedirects,
		MaxBodyBytes:   fc.MaxBodyBytes,
		AcceptLanguage: fc.AcceptLanguage,
		UseCookieJar:   fc.CookieJar,
		ProxyPool:      proxyPool,
		UAPool:         uaPool,
		Fingerprint:    profile,
	})
}

func printEntry(w io.Writer, e results.Entry) {
	fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n\n", e.No, e.Title, e.URL, e.Content)
}

func writeExport(path string, format export.Format, entries []results.Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()
	return export.Write(f, format, entries)
}

func writeReport(stdout io.Writer, o *searchOpts, set *results.Set) (err error) {
	if o.reportFmt == "none" {
		return nil
	}

	w := stdout
	if o.reportFile != "" {
		f, ferr := os.Create(o.reportFile)
		if ferr != nil {
			return fmt.Errorf("create report file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close report file: %w", cerr)
			}
		}()
		w = f
	}

	summary := report.GenerateSummary(set)
	switch o.reportFmt {
	case "json":
		return report.WriteJSON(w, summary)
	case "html":
		return report.WriteHTML(w, summary, set.Entries)
	default:
		return report.WriteText(w, summary)
	}
}
