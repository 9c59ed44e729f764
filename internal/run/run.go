// Package run wires one end-to-end pipeline: input selection,
// credentials, session, attribute reconciliation, row processing,
// teardown. Strictly sequential, one pass, no retries. Preflight gates
// run in the command layer, before any file is touched.
package run

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vmattr/internal/audit"
	"vmattr/internal/config"
	"vmattr/internal/credentials"
	"vmattr/internal/input"
	"vmattr/internal/vsphere"
)

// Options are the command-line inputs of a run.
type Options struct {
	Server    string
	Report    bool
	InputPath string
}

// Execute performs one run. Fatal errors (selection, parse,
// credentials, connect) are returned after being logged; row- and
// attribute-level failures only show up in the audit trail.
func Execute(ctx context.Context, cfg *config.Config, opts Options) error {
	inputPath, err := selectInput(opts.InputPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(inputPath)

	log, err := audit.New(dir, cfg.Core.LogPrefix)
	if err != nil {
		return err
	}
	defer log.Close()

	mode := "apply"
	if opts.Report {
		mode = "report"
	}
	log.Log("Starting run %s against %s (mode: %s, input: %s)", uuid.NewString(), opts.Server, mode, inputPath)

	table, err := input.Load(inputPath, cfg.Core.KeyColumn)
	if err != nil {
		log.Error("%v", err)
		return err
	}
	log.Log("Loaded %d rows and %d attribute columns from %s", len(table.Rows), len(table.Attributes), filepath.Base(inputPath))

	cred, err := credentials.Load(filepath.Join(dir, cfg.Core.CredentialFile), os.Getenv(cfg.Core.CredentialKeyEnv))
	if err != nil {
		log.Error("%v", err)
		return err
	}

	sess, err := vsphere.Connect(ctx, opts.Server, cred, cfg.Provider.Insecure, cfg.Provider.Datacenter)
	if err != nil {
		log.Error("%v", err)
		return err
	}
	log.Log("Connected to %s as %s", opts.Server, cred.Username)

	defer func() {
		if opts.Report {
			// The original tool left the session open in report mode;
			// treated as an oversight, disconnect happens in both modes.
			log.Log("Report: session teardown is not suppressed, disconnecting.")
		}
		if err := sess.Disconnect(ctx); err != nil {
			log.Error("%v", err)
			return
		}
		log.Log("Disconnected from %s", opts.Server)
	}()

	api := vsphere.NewAPI(sess)

	defs, err := vsphere.NewReconciler(api, log, opts.Report).Ensure(ctx, table.Attributes)
	if err != nil {
		log.Error("%v", err)
		return err
	}

	summary := vsphere.NewProcessor(api, defs, log, opts.Report).Run(ctx, table)
	log.Log("Run complete: %d applied, %d unchanged, %d reported, %d rows skipped, %d rows failed.",
		summary.Applied, summary.Unchanged, summary.Reported, summary.Skipped, summary.Failed)

	return nil
}

// selectInput resolves the input table path: an explicit --input path
// when given, the interactive picker otherwise.
func selectInput(path string) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to determine working directory")
		}
		picked, err := input.Pick(cwd)
		if err != nil {
			return "", err
		}
		path = picked
	}

	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return "", errors.Errorf("input file %s is not a CSV file", path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrapf(err, "input file %s is not readable", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve input file path")
	}
	return abs, nil
}
