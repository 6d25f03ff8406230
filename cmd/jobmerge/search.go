package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/service"
)

// searchFlags are shared by search and browse.
type searchFlags struct {
	keyword       string
	location      string
	jobType       string
	scope         string
	page          int
	limit         int
	includeRemote bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.keyword, "keyword", "k", "", "match title, description or company name")
	fs.StringVarP(&f.location, "location", "l", "", "match job or company location")
	fs.StringVarP(&f.jobType, "job-type", "t", "", "match job type (e.g. full-time, remote)")
	fs.StringVarP(&f.scope, "scope", "s", "all", "database, external or all")
	fs.IntVarP(&f.page, "page", "p", model.DefaultPage, "page number")
	fs.IntVar(&f.limit, "limit", model.DefaultPageSize, "page size")
	fs.BoolVar(&f.includeRemote, "remote", model.NewSearchRequest().IncludeRemote, "include remote-only boards (--remote=false to skip them)")
}

// request validates the flags the same way the HTTP API validates a query.
func (f *searchFlags) request(page int) (model.SearchRequest, error) {
	q := url.Values{}
	q.Set("keyword", f.keyword)
	q.Set("location", f.location)
	q.Set("jobType", f.jobType)
	q.Set("scope", f.scope)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(f.limit))
	q.Set("includeRemote", strconv.FormatBool(f.includeRemote))
	return service.ParseSearchRequest(q)
}

var (
	searchOpts searchFlags
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one merged search and print the page",
	Long:  "Runs the same merged search as GET /api/v1/mixed-jobs/mixed and prints a table, or the API envelope with --json.",
	RunE:  runSearch,
}

func init() {
	searchOpts.register(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the API response envelope as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	req, err := searchOpts.request(searchOpts.page)
	if err != nil {
		return err
	}

	// Logs go to stderr so the printed page stays clean.
	logger := setupLoggerTo(os.Stderr, debug)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.svc.Search(ctx, req)
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(service.PagedEnvelope(resp))
	}
	printJobs(resp)
	return nil
}

func printJobs(resp service.Response) {
	r := resp.Result
	fmt.Printf("%-40s %-25s %-20s %-10s %s\n", "Title", "Company", "Location", "Source", "Posted")
	fmt.Println(strings.Repeat("─", 110))
	for _, j := range r.Jobs {
		fmt.Printf("%-40s %-25s %-20s %-10s %s\n",
			truncate(j.Title, 40),
			truncate(j.Company.Name, 25),
			truncate(j.Location, 20),
			j.Source,
			posted(j.CreatedAt),
		)
	}
	cached := ""
	if resp.Cached {
		cached = " (cached)"
	}
	fmt.Printf("\nPage %d of %d, %d jobs total%s\n", r.Page, max(r.TotalPages, 1), r.TotalCount, cached)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func posted(t time.Time) string {
	if t.Unix() == 0 {
		return "-"
	}
	return t.Format("2006-01-02")
}
