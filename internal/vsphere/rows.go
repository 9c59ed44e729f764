package vsphere

import (
	"context"

	"github.com/pkg/errors"

	"vmattr/internal/audit"
	"vmattr/internal/input"
)

// RowOutcome tags what happened to one input row. Skip-and-continue
// decisions are data the caller can inspect, not control flow.
type RowOutcome int

const (
	// RowProcessed means every attribute of the row was compared.
	RowProcessed RowOutcome = iota
	// RowSkippedEmptyKey means the key column was empty or missing.
	RowSkippedEmptyKey
	// RowVMNotFound means the named VM does not exist on the server.
	RowVMNotFound
	// RowFailed means a remote call failed; remaining row work was skipped.
	RowFailed
)

// RowResult is the outcome of one row plus its per-attribute tallies.
type RowResult struct {
	Key       string
	Outcome   RowOutcome
	Applied   int
	Unchanged int
	Reported  int
	Err       error
}

// Summary aggregates a whole run.
type Summary struct {
	Applied   int
	Unchanged int
	Reported  int
	Skipped   int
	Failed    int
}

// Processor applies (or reports) the desired attribute values of every
// input row against the server.
type Processor struct {
	api    API
	defs   *Definitions
	log    *audit.Logger
	report bool
}

// NewProcessor returns a processor over the definitions the reconciler
// produced. With report set, no value is written.
func NewProcessor(api API, defs *Definitions, log *audit.Logger, report bool) *Processor {
	return &Processor{api: api, defs: defs, log: log, report: report}
}

// Run walks the table in file order. One row's failure never aborts the
// batch; every outcome lands in the summary and the audit log.
func (p *Processor) Run(ctx context.Context, table *input.Table) Summary {
	var summary Summary
	for i := range table.Rows {
		result := p.ProcessRow(ctx, table, i)
		summary.Applied += result.Applied
		summary.Unchanged += result.Unchanged
		summary.Reported += result.Reported
		switch result.Outcome {
		case RowSkippedEmptyKey, RowVMNotFound:
			summary.Skipped++
		case RowFailed:
			summary.Failed++
		}
	}
	return summary
}

// ProcessRow handles the table row at index and returns its tagged result.
func (p *Processor) ProcessRow(ctx context.Context, table *input.Table, index int) RowResult {
	row := table.Rows[index]
	key := table.Key(row)

	if key == "" {
		p.log.Error("Skipping row %d: column '%s' is empty.", index+1, table.KeyColumn)
		return RowResult{Outcome: RowSkippedEmptyKey}
	}

	vm, err := p.api.FindVM(ctx, key)
	if err != nil {
		if errors.Is(err, ErrVMNotFound) {
			p.log.Log("VM '%s' not found, skipping row.", key)
			return RowResult{Key: key, Outcome: RowVMNotFound}
		}
		p.log.Error("Failed to process VM '%s': %v", key, err)
		return RowResult{Key: key, Outcome: RowFailed, Err: err}
	}

	current, err := p.api.AnnotationValues(ctx, vm)
	if err != nil {
		p.log.Error("Failed to process VM '%s': %v", key, err)
		return RowResult{Key: key, Outcome: RowFailed, Err: err}
	}

	result := RowResult{Key: key, Outcome: RowProcessed}
	for _, attr := range table.Attributes {
		desired := row[attr]

		fieldKey, defined := p.defs.Key(attr)
		currentValue := ""
		if defined {
			currentValue = current[fieldKey]
		}

		if desired == currentValue {
			p.log.Log("VM '%s' already has custom attribute '%s' set to '%s'.", key, attr, desired)
			result.Unchanged++
			continue
		}

		if p.report {
			p.log.Log("Report: Custom attribute '%s' would be set to '%s' for VM '%s'.", attr, desired, key)
			result.Reported++
			continue
		}

		if !defined {
			err := errors.Errorf("custom attribute '%s' is not defined on the server", attr)
			p.log.Error("Failed to process VM '%s': %v", key, err)
			result.Outcome = RowFailed
			result.Err = err
			return result
		}

		if err := p.api.SetAnnotation(ctx, vm, fieldKey, desired); err != nil {
			p.log.Error("Failed to process VM '%s': %v", key, err)
			result.Outcome = RowFailed
			result.Err = err
			return result
		}
		p.log.Log("Set custom attribute '%s' to '%s' for VM '%s'.", attr, desired, key)
		result.Applied++
	}

	return result
}
