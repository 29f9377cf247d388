// ABOUTME: Data subcommands: list, show, export, activity and reset against the configured store
// ABOUTME: They drive the same CRUD engine as the web pages, so query flags mean the same thing

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/config"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/crud"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/dashboard"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/i18n"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/mockdata"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/remote"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/server"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/storage"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/store"
)

// cellWidth truncates table cells.
const cellWidth = 32

// dataSession is an opened store plus what engines need around it.
type dataSession struct {
	store    store.Store
	storage  *storage.Adapter
	remote   *remote.Client
	registry *entity.Registry
}

func (c *cli) openData(ctx context.Context) (*dataSession, error) {
	s, err := server.OpenStore(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	ds := &dataSession{
		store:    s,
		storage:  storage.New(s),
		registry: entity.NewRegistry(),
	}
	if c.cfg.Data.Mode == config.ModeRemote {
		ds.remote = server.NewRemote(c.cfg)
		if err := ds.remote.CheckSources(c.cfg.Data.SourceNames()); err != nil {
			ds.Close()
			return nil, fmt.Errorf("configuring data sources: %w", err)
		}
	}
	return ds, nil
}

func (ds *dataSession) Close() error {
	if ds.remote != nil {
		ds.remote.Close()
	}
	return ds.store.Close()
}

// engine initializes a CRUD engine for kind with the configured mode.
func (c *cli) engine(ctx context.Context, ds *dataSession, kind entity.Kind) *crud.Engine {
	var rf crud.Remote
	if ds.remote != nil {
		rf = ds.remote
	}
	e := crud.New(crud.Deps{
		Storage:   ds.storage,
		Generator: mockdata.New(),
		Remote:    rf,
		Registry:  ds.registry,
		Logger:    c.logger,
	})
	e.Initialize(ctx, kind, crud.Config{
		Remote:       ds.remote != nil,
		Source:       c.cfg.Data.Source,
		Sources:      c.cfg.Data.SourceNames(),
		ItemsPerPage: c.cfg.Data.ItemsPerPage,
		Language:     language.Make(c.cfg.I18n.DefaultLanguage),
	})
	return e
}

// applyQuery sets the query state from params and, in remote mode, sends
// the search term to the source.
func (c *cli) applyQuery(ctx context.Context, e *crud.Engine, params url.Values) {
	e.ApplyParams(params, "")
	if err := e.SearchRemote(ctx); err != nil {
		c.logger.Warn("remote search failed", "kind", e.Kind(), "error", err)
	}
}

// queryFlags are the list and export query options.
type queryFlags struct {
	page    int
	limit   int
	search  string
	sort    string
	desc    bool
	filters []string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&q.page, "page", "p", 0, "page number")
	flags.IntVarP(&q.limit, "limit", "n", 0, "items per page (default data.items_per_page)")
	flags.StringVarP(&q.search, "search", "q", "", "search term")
	flags.StringVarP(&q.sort, "sort", "s", "", "sort field (dotted paths allowed)")
	flags.BoolVar(&q.desc, "desc", false, "sort descending")
	flags.StringArrayVarP(&q.filters, "filter", "f", nil, "field=value filter, repeatable")
}

// values encodes the flags as query parameters for crud.ApplyParams.
func (q *queryFlags) values() (url.Values, error) {
	v := url.Values{}
	if q.page > 0 {
		v.Set(crud.ParamPage, strconv.Itoa(q.page))
	}
	if q.limit > 0 {
		v.Set(crud.ParamLimit, strconv.Itoa(q.limit))
	}
	if q.search != "" {
		v.Set(crud.ParamQuery, q.search)
	}
	if q.sort != "" || q.desc {
		sortField := q.sort
		if sortField == "" {
			sortField = "id"
		}
		v.Set(crud.ParamSort, sortField)
		if q.desc {
			v.Set(crud.ParamOrder, "desc")
		} else {
			v.Set(crud.ParamOrder, "asc")
		}
	}
	for _, f := range q.filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, want field=value", f)
		}
		v.Set(key, value)
	}
	return v, nil
}

func (c *cli) listCmd() *cobra.Command {
	var q queryFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List one page of records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := entity.ParseKind(args[0])
			if err != nil {
				return err
			}
			params, err := q.values()
			if err != nil {
				return err
			}

			ds, err := c.openData(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			e := c.engine(cmd.Context(), ds, kind)
			c.applyQuery(cmd.Context(), e, params)
			page := e.Page()

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			c.printTable(e.Descriptor(), page)
			return nil
		},
	}
	q.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the page as JSON")
	return cmd
}

func (c *cli) printTable(desc *entity.Descriptor, page crud.Page) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(c.out)
	cyan.Fprintf(c.out, "  %s\n", desc.Plural)

	if len(page.Items) == 0 {
		fmt.Fprintln(c.out, "  (no records)")
		return
	}

	columns := desc.Columns
	if len(columns) == 0 {
		columns = []entity.Column{{Label: "ID", Keys: []string{"id"}}}
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	var header, rule []string
	for _, col := range columns {
		header = append(header, strings.ToUpper(col.Label))
		rule = append(rule, strings.Repeat("-", utf8.RuneCountInString(col.Label)))
	}
	fmt.Fprintln(w, "  "+strings.Join(header, "\t"))
	fmt.Fprintln(w, "  "+strings.Join(rule, "\t"))
	for _, r := range page.Items {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = truncate(desc.Cell(col, r), cellWidth)
		}
		fmt.Fprintln(w, "  "+strings.Join(cells, "\t"))
	}
	w.Flush()

	p := page.Pagination
	color.New(color.FgHiBlack).Fprintf(c.out, "\n  %d-%d of %d, page %d/%d\n",
		p.StartIndex, p.EndIndex, p.TotalItems, p.CurrentPage, p.TotalPages)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Print one record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := entity.ParseKind(args[0])
			if err != nil {
				return err
			}
			ds, err := c.openData(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			e := c.engine(cmd.Context(), ds, kind)
			id := entity.CanonicalID(args[1])
			rec, ok := e.Find(cmd.Context(), id)
			if !ok {
				return fmt.Errorf("%s %s: %w", kind, id, crud.ErrNotFound)
			}

			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var q queryFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Export one page of records as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := entity.ParseKind(args[0])
			if err != nil {
				return err
			}
			params, err := q.values()
			if err != nil {
				return err
			}

			ds, err := c.openData(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			e := c.engine(cmd.Context(), ds, kind)
			c.applyQuery(cmd.Context(), e, params)
			export, err := e.ExportCurrentPageCSV()
			if err != nil {
				if errors.Is(err, crud.ErrEmptyPage) {
					return errors.New("nothing to export: the page is empty")
				}
				return err
			}

			if output == "-" {
				_, err := c.out.Write(export.Data)
				return err
			}
			if output == "" {
				output = export.Filename
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := os.WriteFile(output, export.Data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			color.New(color.FgGreen).Fprintf(c.out, "✓ Exported %d rows to %s\n", len(e.Page().Items), output)
			return nil
		},
	}
	q.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default <kind>_export_<date>.csv)")
	return cmd
}

func (c *cli) activityCmd() *cobra.Command {
	var lang string
	var clearLog bool

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the recent activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := c.openData(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			if clearLog {
				if err := ds.storage.ClearActivities(cmd.Context()); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintln(c.out, "✓ Activity log cleared")
				return nil
			}

			bundle, err := i18n.Load()
			if err != nil {
				return fmt.Errorf("loading translations: %w", err)
			}
			if lang == "" {
				lang = c.cfg.I18n.DefaultLanguage
			}
			lang = bundle.Normalize(lang)

			items := dashboard.New(ds.storage, bundle).Recent(cmd.Context(), lang)
			if len(items) == 0 {
				fmt.Fprintln(c.out, bundle.T(lang, "dashboard.noActivity"))
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			for _, it := range items {
				fmt.Fprintf(w, "  %s\t%s\t%s\n",
					color.HiBlackString(it.Ago), it.Title, truncate(it.Description, 60))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language for relative times (default i18n.default_language)")
	cmd.Flags().BoolVar(&clearLog, "clear", false, "empty the activity log")
	return cmd
}

func (c *cli) resetCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset [kind]",
		Short: "Drop stored snapshots so the next load regenerates mock data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("pass exactly one of <kind> or --all")
			}

			ds, err := c.openData(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			var kinds []entity.Kind
			if all {
				kinds, err = ds.storage.StoredKinds(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing stored kinds: %w", err)
				}
			} else {
				kind, err := entity.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []entity.Kind{kind}
			}

			green := color.New(color.FgGreen)
			for _, k := range kinds {
				if err := ds.storage.Clear(cmd.Context(), k); err != nil {
					return err
				}
				green.Fprintf(c.out, "✓ Reset %s\n", k)
			}
			if len(kinds) == 0 {
				fmt.Fprintln(c.out, "Nothing stored.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "reset every stored kind")
	return cmd
}
