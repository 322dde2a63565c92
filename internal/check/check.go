// Package check runs one update check: fetch the listing, resolve a decision
// against the pinned version and persist it.
package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/3leaps/jxfetch/internal/host/listing"
	"github.com/3leaps/jxfetch/internal/journal"
	"github.com/3leaps/jxfetch/pkg/update"
)

// Fetcher retrieves the listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Store holds the pinned version.
type Store interface {
	Read() (string, bool, error)
	Write(raw string) error
}

// Verifier authenticates listing content before it is trusted.
type Verifier interface {
	Verify(ctx context.Context, url string, content []byte) error
}

// Recorder keeps a history of checks.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Checker wires the collaborators of an update check. Verifier and Journal
// are optional.
type Checker struct {
	Fetcher  Fetcher
	Store    Store
	Verifier Verifier
	Journal  Recorder
	Log      logrus.FieldLogger
	DryRun   bool
}

// Result describes what one check did.
type Result struct {
	Decision update.Decision
	Stored   string // pinned value before the check
	Written  bool
	Skipped  bool  // listing unavailable or unverified, nothing decided
	FetchErr error // set when Skipped
}

// CheckForUpdate resolves the first listing build for targetMajor against the
// pinned version and pins it when it is an update.
//
// Listing failures are logged and reported through Result.Skipped; the
// returned error is reserved for version file I/O.
func (c *Checker) CheckForUpdate(ctx context.Context, listingURL string, targetMajor int) (Result, error) {
	log := c.logger().WithFields(logrus.Fields{"url": listingURL, "major": targetMajor})

	stored, _, err := c.Store.Read()
	if err != nil {
		return Result{}, err
	}
	res := Result{Stored: stored}

	text, err := c.fetch(ctx, listingURL)
	if err != nil {
		res.Skipped = true
		res.FetchErr = err
		fields := logrus.Fields{"error": err}
		var netErr *listing.NetworkError
		if errors.As(err, &netErr) {
			fields["timeout"] = netErr.Timeout()
			if netErr.StatusCode != 0 {
				fields["status"] = netErr.StatusCode
			}
		}
		log.WithFields(fields).Warn("Could not check for jextract updates; keeping pinned version")
		c.record(ctx, log, listingURL, targetMajor, res)
		return res, nil
	}

	res.Decision = update.Resolve(text, targetMajor, stored)
	d := res.Decision
	log = log.WithFields(logrus.Fields{"stored": stored, "reason": d.Reason})
	if d.Chosen != nil {
		log = log.WithField("chosen", d.Chosen.Raw)
	}

	switch {
	case d.ShouldUpdate && c.DryRun:
		log.Infof("Dry run, not writing: %s", update.DescribeDecision(d, stored))
	case d.ShouldUpdate:
		if err := c.Store.Write(d.Chosen.Raw); err != nil {
			c.record(ctx, log, listingURL, targetMajor, res)
			return res, fmt.Errorf("pin %s: %w", d.Chosen.Raw, err)
		}
		res.Written = true
		log.Info(update.DescribeDecision(d, stored))
	case d.Reason.IsWarning():
		log.Warn(update.DescribeDecision(d, stored))
	default:
		log.Info(update.DescribeDecision(d, stored))
	}

	c.record(ctx, log, listingURL, targetMajor, res)
	return res, nil
}

func (c *Checker) fetch(ctx context.Context, url string) (string, error) {
	text, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if c.Verifier != nil {
		if err := c.Verifier.Verify(ctx, url, []byte(text)); err != nil {
			return "", err
		}
	}
	return text, nil
}

func (c *Checker) record(ctx context.Context, log logrus.FieldLogger, url string, major int, res Result) {
	if c.Journal == nil {
		return
	}
	e := journal.Entry{
		ListingURL: url,
		Major:      major,
		Stored:     res.Stored,
		Reason:     string(res.Decision.Reason),
		Updated:    res.Written,
		Skipped:    res.Skipped,
	}
	if res.Decision.Chosen != nil {
		e.Chosen = res.Decision.Chosen.Raw
	}
	if res.FetchErr != nil {
		e.Error = res.FetchErr.Error()
	}
	if err := c.Journal.Record(ctx, e); err != nil {
		log.WithError(err).Warn("Could not record check in journal")
	}
}

func (c *Checker) logger() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
