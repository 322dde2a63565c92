package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/3leaps/jxfetch/internal/check"
	"github.com/3leaps/jxfetch/internal/config"
	"github.com/3leaps/jxfetch/internal/constant"
	"github.com/3leaps/jxfetch/internal/journal"
	"github.com/3leaps/jxfetch/internal/model"
	"github.com/3leaps/jxfetch/internal/platform"
	"github.com/3leaps/jxfetch/internal/store"
	"github.com/3leaps/jxfetch/internal/verify"
	"github.com/3leaps/jxfetch/pkg/update"
)

const pathAnnotation = "jxfetch/path"

func markPaths(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = cmd.Flags().SetAnnotation(name, pathAnnotation, []string{"true"})
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jxfetch",
		Short:         "Track and pin jextract early-access builds",
		Long:          "jxfetch discovers the newest jextract build for a JDK major version and pins it in a version file.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "project config file (default: "+config.ProjectConfigName+" in the working directory or a parent)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(
		a.checkCommand(),
		a.resolveCommand(),
		a.urlCommand(),
		a.generateCommand(),
		a.historyCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) checkCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fetch the listing and pin the newest compatible build",
		Long: `Fetch the jextract listing, pick the first build for the toolchain major
version and pin it when nothing is pinned yet or it is newer than the pin.

Network failures are reported but never fail the command; the pin is kept.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings(cmd, map[string]string{
				"major": config.KeyMajor,
				"url":   config.KeyListingURL,
				"store": config.KeyStorePath,
			})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client := a.listingClient(s)

			c := &check.Checker{
				Fetcher: client,
				Store:   store.File{Path: s.StorePath},
				Log:     a.log.WithField("store", s.StorePath),
				DryRun:  dryRun,
			}
			if s.MinisignKey != "" {
				c.Verifier = &verify.Listing{PublicKeyPath: s.MinisignKey, Fetcher: client}
			}
			if s.JournalPath != "" {
				j, err := journal.Open(ctx, s.JournalPath)
				if err != nil {
					a.log.WithError(err).Warn("Decision journal unavailable; continuing without it")
				} else {
					defer func() {
						_ = j.Close()
					}()
					c.Journal = j
				}
			}

			res, err := c.CheckForUpdate(ctx, s.ListingURL, s.Major)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res, dryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve the decision without writing the version file")
	cmd.Flags().Int("major", 0, "toolchain major version (overrides "+config.KeyMajor+")")
	cmd.Flags().String("url", "", "listing URL (overrides "+config.KeyListingURL+")")
	cmd.Flags().String("store", "", "version file (overrides "+config.KeyStorePath+")")
	markPaths(cmd, "store")
	return cmd
}

func printResult(w io.Writer, res check.Result, dryRun bool) {
	switch {
	case res.Skipped:
		fmt.Fprintf(w, "skipped: %v\n", res.FetchErr)
	case dryRun && res.Decision.ShouldUpdate:
		fmt.Fprintf(w, "would pin: %s (%s)\n", res.Decision.Chosen.Raw, res.Decision.Reason)
	default:
		fmt.Fprintln(w, update.DescribeDecision(res.Decision, res.Stored))
	}
}

func (a *app) resolveCommand() *cobra.Command {
	var (
		listingFile string
		stored      string
	)
	cmd := &cobra.Command{
		Use:   "resolve --listing-file FILE",
		Short: "Decide offline from a saved listing page",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings(cmd, map[string]string{"major": config.KeyMajor})
			if err != nil {
				return err
			}
			text, err := readListing(listingFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("stored") {
				if stored, _, err = store.Read(s.StorePath); err != nil {
					return err
				}
			}

			d := update.Resolve(text, s.Major, stored)
			chosen := ""
			if d.Chosen != nil {
				chosen = d.Chosen.Raw
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reason=%s update=%t chosen=%s\n", d.Reason, d.ShouldUpdate, chosen)
			a.log.WithField("reason", d.Reason).Debug(update.DescribeDecision(d, stored))
			return nil
		},
	}
	cmd.Flags().StringVar(&listingFile, "listing-file", "", "saved listing page, - for stdin")
	cmd.Flags().StringVar(&stored, "stored", "", "pinned value to compare against (default: the version file)")
	cmd.Flags().Int("major", 0, "toolchain major version (overrides "+config.KeyMajor+")")
	_ = cmd.MarkFlagRequired("listing-file")
	return cmd
}

func readListing(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read listing from stdin: %w", err)
		}
		return string(data), nil
	}
	// #nosec G304 -- user-supplied listing file
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read listing: %w", err)
	}
	return string(data), nil
}

// pinnedVersion returns the explicit version or the pinned one.
func pinnedVersion(s model.Settings, explicit string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, nil
	}
	v, ok, err := store.Read(s.StorePath)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return "", fmt.Errorf("no jextract version pinned in %s; run jxfetch check first", s.StorePath)
	}
	return v, nil
}

func (a *app) urlCommand() *cobra.Command {
	var (
		platformID string
		ver        string
		showCache  bool
	)
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the download URL of the pinned build",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings(cmd, map[string]string{"store": config.KeyStorePath, "cache-dir": config.KeyCacheDir})
			if err != nil {
				return err
			}
			p, err := resolvePlatform(platformID)
			if err != nil {
				return usageError{err}
			}
			v, err := pinnedVersion(s, ver)
			if err != nil {
				return err
			}
			u, err := platform.DownloadURL(v, p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, u)
			if !showCache {
				return nil
			}

			dir := platform.ToolDir(s.CacheDir, v)
			fmt.Fprintf(out, "cache: %s\n", dir)
			if exe, ok := platform.FindExecutable(dir, p); ok {
				fmt.Fprintf(out, "executable: %s\n", exe)
			}
			if platform.NoExec(s.CacheDir) {
				a.log.WithField("dir", s.CacheDir).Warn("Cache directory is on a noexec mount; jextract will not be runnable from it")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&platformID, "platform", "", "platform id (default: this host), one of "+platformList())
	cmd.Flags().StringVar(&ver, "version", "", "jextract version (default: the pinned version)")
	cmd.Flags().BoolVar(&showCache, "cache", false, "also print the local cache directory of the build")
	cmd.Flags().String("store", "", "version file (overrides "+config.KeyStorePath+")")
	cmd.Flags().String("cache-dir", "", "tool cache root (overrides "+config.KeyCacheDir+")")
	markPaths(cmd, "store", "cache-dir")
	return cmd
}

func resolvePlatform(id string) (model.Platform, error) {
	if id == "" {
		return platform.Current()
	}
	return platform.Parse(id)
}

func platformList() string {
	ids := make([]string, 0, len(model.Platforms))
	for _, p := range model.Platforms {
		ids = append(ids, string(p))
	}
	return strings.Join(ids, ", ")
}

func (a *app) generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a Go file declaring the pinned version as a constant",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings(cmd, map[string]string{
				"output":  config.KeyGenerateOutput,
				"package": config.KeyGeneratePackage,
				"store":   config.KeyStorePath,
			})
			if err != nil {
				return err
			}
			v, err := pinnedVersion(s, "")
			if err != nil {
				return err
			}
			if err := constant.WriteFile(s.GenerateOutput, s.GeneratePkg, v); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"file": s.GenerateOutput, "version": v}).Info("Wrote " + constant.Name)
			fmt.Fprintln(cmd.OutOrStdout(), s.GenerateOutput)
			return nil
		},
	}
	cmd.Flags().String("output", "", "output file (overrides "+config.KeyGenerateOutput+")")
	cmd.Flags().String("package", "", "Go package name (overrides "+config.KeyGeneratePackage+")")
	cmd.Flags().String("store", "", "version file (overrides "+config.KeyStorePath+")")
	markPaths(cmd, "output", "store")
	return cmd
}

var errNoJournal = errors.New(config.KeyJournalPath + " is not configured")

func (a *app) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent update checks from the decision journal",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings(cmd, map[string]string{"journal": config.KeyJournalPath})
			if err != nil {
				return err
			}
			if s.JournalPath == "" {
				return errNoJournal
			}
			j, err := journal.Open(cmd.Context(), s.JournalPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = j.Close()
			}()

			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show, 0 for all")
	cmd.Flags().String("journal", "", "journal database (overrides "+config.KeyJournalPath+")")
	markPaths(cmd, "journal")
	return cmd
}

func printHistory(w io.Writer, entries []journal.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMAJOR\tSTORED\tCHOSEN\tOUTCOME")
	for _, e := range entries {
		outcome := e.Reason
		switch {
		case e.Skipped:
			outcome = "skipped: " + e.Error
		case e.Updated:
			outcome += " (pinned)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			e.CheckedAt.Local().Format(time.DateTime), e.Major, dash(e.Stored), dash(e.Chosen), outcome)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number and exit",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jxfetch %s\n", version)
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return usageError{fmt.Errorf("%s accepts no arguments, got %q", cmd.CommandPath(), args)}
	}
	return nil
}
