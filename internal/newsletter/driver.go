package newsletter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mathblog/internal/domain"
)

// RunOutcome is the per-record result of a RunDue pass.
type RunOutcome struct {
	SendID         uuid.UUID `json:"id"`
	RecipientCount int       `json:"recipient_count"`
	DeadLettered   bool      `json:"dead_lettered,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// OK reports whether the record was processed without error.
func (o RunOutcome) OK() bool {
	return o.Error == ""
}

// Driver processes past-due scheduled sends. Failures do not poison the pass:
// each record's outcome is collected independently, and a record that keeps
// failing is dead-lettered once it exhausts its attempt budget instead of
// being silently marked sent.
type Driver struct {
	processor *Processor
	sends     SendStore
	cfg       Config
	log       *slog.Logger
}

// NewDriver wires the scheduled-send driver.
func NewDriver(processor *Processor, sends SendStore, cfg Config, log *slog.Logger) *Driver {
	return &Driver{processor: processor, sends: sends, cfg: cfg.withDefaults(), log: log}
}

// RunDue processes every unsent scheduled record whose scheduled time has
// passed. The returned slice has one entry per record; the error is reserved
// for failures of the pass itself (e.g. the due query).
func (d *Driver) RunDue(ctx context.Context, now time.Time) ([]RunOutcome, error) {
	ids, err := d.sends.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	outcomes := make([]RunOutcome, 0, len(ids))
	for _, id := range ids {
		outcomes = append(outcomes, d.runOne(ctx, id))
	}
	return outcomes, nil
}

func (d *Driver) runOne(ctx context.Context, id uuid.UUID) RunOutcome {
	result, err := d.processor.Process(ctx, id)
	if err == nil {
		return RunOutcome{SendID: id, RecipientCount: result.RecipientCount}
	}

	outcome := RunOutcome{SendID: id, Error: err.Error()}
	d.log.Warn("scheduled send failed",
		slog.String("send_id", id.String()),
		slog.String("error", err.Error()))

	// A concurrent claim keeps its own attempt accounting.
	if errors.Is(err, ErrAlreadyProcessing) {
		return outcome
	}

	send, getErr := d.sends.Get(ctx, id)
	if getErr != nil {
		if !errors.Is(getErr, domain.ErrNotFound) {
			d.log.Error("failed to reload send after failure",
				slog.String("send_id", id.String()),
				slog.String("error", getErr.Error()))
		}
		return outcome
	}

	if !send.Terminal() && send.Attempts >= d.cfg.MaxAttempts {
		if failErr := d.sends.MarkFailed(ctx, id); failErr != nil {
			d.log.Error("failed to dead-letter send",
				slog.String("send_id", id.String()),
				slog.String("error", failErr.Error()))
			return outcome
		}
		outcome.DeadLettered = true
		d.log.Error("scheduled send dead-lettered after repeated failures",
			slog.String("send_id", id.String()),
			slog.Int("attempts", send.Attempts))
	}
	return outcome
}
