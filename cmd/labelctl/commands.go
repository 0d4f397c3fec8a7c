package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"candle-labels/internal/auth"
	"candle-labels/internal/catalog"
	"candle-labels/internal/label"
	"candle-labels/internal/model"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var user, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Log in with the operator account and keep the access token for later commands.

The password is read from --password, then ` + envPassword + `, then the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(envPassword)
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			resp, err := a.client.Login(ctx, user, password)
			if err != nil {
				return err
			}
			if err := a.saveToken(resp.AccessToken); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (token valid for %ds)\n", user, resp.ExpiresIn)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "admin", "Operator login")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Operator password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.clearToken()
		},
	}
}

func (a *app) candlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candles",
		Short: "Browse the catalogue and change copy counts",
	}

	var (
		search   string
		category int64
		all      bool
		sortBy   string
		desc     bool
		skip     int
		limit    int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List candles in catalogue order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.CandleFilter{Search: search, SortBy: sortBy, Skip: skip, Limit: limit}
			if desc {
				filter.SortOrder = model.SortDesc
			}
			if category > 0 {
				filter.CategoryID = &category
			}
			if !all {
				active := true
				filter.IsActive = &active
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			view := catalog.New(a.client, a.logger)
			defer view.Close()
			if err := view.Load(ctx, filter); err != nil {
				return err
			}
			return writeCandles(cmd.OutOrStdout(), view.Candles())
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "Match name, tagline or description")
	list.Flags().Int64Var(&category, "category", 0, "Only candles in this category id")
	list.Flags().BoolVar(&all, "all", false, "Include inactive candles")
	list.Flags().StringVar(&sortBy, "sort", model.SortBySequence, "Sort key: sequence_number, name, created_at or updated_at")
	list.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	list.Flags().IntVar(&skip, "skip", 0, "Skip this many candles")
	list.Flags().IntVar(&limit, "limit", 0, "Show at most this many candles (0 lists all)")

	qty := &cobra.Command{
		Use:   "qty <id> <quantity>",
		Short: "Set the number of label copies for a candle (1-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, n, err := parseIDAndInt(args)
			if err != nil {
				return err
			}
			return a.changeQuantity(cmd, id, func(ctx context.Context, v *catalog.View) (int, error) {
				return v.SetQuantity(ctx, id, n)
			})
		},
	}

	adjust := &cobra.Command{
		Use:   "adjust <id> <delta>",
		Short: "Add or remove label copies for a candle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, delta, err := parseIDAndInt(args)
			if err != nil {
				return err
			}
			return a.changeQuantity(cmd, id, func(ctx context.Context, v *catalog.View) (int, error) {
				return v.AdjustQuantity(ctx, id, delta)
			})
		},
	}
	// negative deltas are arguments, not flags
	adjust.Flags().SetInterspersed(false)

	cmd.AddCommand(list, qty, adjust)
	return cmd
}

func (a *app) changeQuantity(cmd *cobra.Command, id int64, change func(context.Context, *catalog.View) (int, error)) error {
	ctx, cancel := a.ctx(cmd)
	defer cancel()

	view := catalog.New(a.client, a.logger)
	defer view.Close()
	if err := view.Load(ctx, model.CandleFilter{}); err != nil {
		return err
	}

	shown, err := change(ctx, view)
	if err != nil {
		return err
	}

	c, _ := view.Candle(id)
	fmt.Fprintf(cmd.OutOrStdout(), "#%d %s: %d\n", c.SequenceNumber, c.Name, shown)
	return nil
}

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			categories, err := a.client.Categories(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, c := range categories {
				fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			c, err := a.client.CreateCategory(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %d %s\n", c.ID, c.Name)
			return nil
		},
	}

	cmd.AddCommand(add)
	return cmd
}

func (a *app) setsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Saved label selections",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved label sets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			sets, err := a.client.LabelSets(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCREATED")
			for _, s := range sets {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Name, s.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}

	var (
		description string
		ids         []int64
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Save a selection of candles under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			set, err := a.client.CreateLabelSet(ctx, &model.LabelSetRequest{
				Name:        args[0],
				Description: description,
				CandleIDs:   ids,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created label set %d with %d candles\n", set.ID, len(set.CandleIDs))
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "Free-form description")
	create.Flags().Int64SliceVar(&ids, "ids", nil, "Candle ids in print order")
	_ = create.MarkFlagRequired("ids")

	var opts printOptions
	printSet := &cobra.Command{
		Use:   "print <id>",
		Short: "Render the label sheet for a saved set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cast.ToInt64E(args[0])
			if err != nil {
				return fmt.Errorf("invalid label set id %q", args[0])
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			sheet, err := a.client.GenerateLabelSet(ctx, id, &label.Request{PrintType: opts.printType})
			if err != nil {
				return err
			}
			return opts.write(cmd, sheet.Filename, sheet.HTML)
		},
	}
	opts.register(printSet)

	cmd.AddCommand(list, create, printSet)
	return cmd
}

func (a *app) printCmd() *cobra.Command {
	var (
		opts printOptions
		ids  []int64
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Render a label sheet for the selected candles",
		Long: `Render a printable label sheet. Each candle yields as many labels as its
quantity, six per A4 page, in catalogue order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			filter := model.CandleFilter{}
			if all {
				active := true
				filter.IsActive = &active
			}

			view := catalog.New(a.client, a.logger)
			defer view.Close()
			if err := view.Load(ctx, filter); err != nil {
				return err
			}

			if all {
				view.SelectAll()
			}
			for _, id := range ids {
				if err := view.Select(id, true); err != nil {
					return fmt.Errorf("candle %d: %w", id, err)
				}
			}

			sheet, err := view.Generate(ctx, catalog.GenerateOptions{PrintType: opts.printType, Download: true})
			if err != nil {
				return err
			}
			return opts.write(cmd, sheet.Filename, sheet.HTML)
		},
	}

	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Candle ids to print")
	cmd.Flags().BoolVar(&all, "all", false, "Print every active candle")
	opts.register(cmd)
	return cmd
}

type printOptions struct {
	printType string
	out       string
}

func (o *printOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.printType, "type", "t", label.PrintLabels, "Print type: full, labels or instructions")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Output file or directory (default: server-suggested name, '-' for stdout)")
}

func (o *printOptions) write(cmd *cobra.Command, filename string, html []byte) error {
	if o.out == "-" {
		_, err := cmd.OutOrStdout().Write(html)
		return err
	}

	path := o.out
	if path == "" {
		path = filename
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, filename)
	}

	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("failed to write label sheet: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|file.json>",
		Short: "Bulk import candles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			result, err := a.client.ImportCandles(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d of %d\n", result.Imported, result.Total)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}
}

func (a *app) templateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Download the CSV import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if out == "-" {
				return a.client.WriteTemplate(ctx, cmd.OutOrStdout())
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create template file: %w", err)
			}
			if err := a.client.WriteTemplate(ctx, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write template file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "candles_template.csv", "Output file, '-' for stdout")
	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <logo|qr> <file>",
		Short: "Upload a logo or QR image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer f.Close()

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			result, err := a.client.Upload(ctx, args[0], filepath.Base(args[1]), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.URL)
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		// no server or token needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", auth.DefaultBcryptCost, "bcrypt cost")
	return cmd
}

func writeCandles(w io.Writer, candles []model.Candle) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNO\tNAME\tCATEGORY\tQTY\tACTIVE")
	for _, c := range candles {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%t\n",
			c.ID, c.SequenceNumber, c.Name, c.CategoryName("-"), c.Quantity, c.IsActive)
	}
	return tw.Flush()
}

func parseIDAndInt(args []string) (int64, int, error) {
	id, err := cast.ToInt64E(args[0])
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid candle id %q", args[0])
	}
	n, err := cast.ToIntE(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", args[1])
	}
	return id, n, nil
}
