package store

import (
	"context"

	"github.com/google/uuid"

	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/gateway"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

// SummaryAPI reads the dashboard aggregate.
type SummaryAPI interface {
	DashboardSummary(ctx context.Context, r models.DateRange) (models.DashboardSummary, error)
}

// Dashboard holds the read-only summary. It is replaced on every fetch
// and never edited locally.
type Dashboard struct {
	tree   *state.Tree
	api    SummaryAPI
	logger logging.Logger
}

func NewDashboard(tree *state.Tree, summaryAPI SummaryAPI, logger logging.Logger) *Dashboard {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Dashboard{tree: tree, api: summaryAPI, logger: logger.WithField(logging.FieldStore, "dashboard")}
}

// State returns the dashboard slot.
func (d *Dashboard) State() state.DashboardState {
	return d.tree.GetState().Dashboard
}

// SetDateRange selects the range for later fetches.
func (d *Dashboard) SetDateRange(r models.DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	d.tree.Dispatch(state.NewAction("dashboard/setDateRange", func(s state.State) state.State {
		s.Dashboard.DateRange = r
		return s
	}))
	return nil
}

// FetchSummary loads the summary for r.
func (d *Dashboard) FetchSummary(ctx context.Context, r models.DateRange) error {
	o := op{id: uuid.NewString(), seq: d.tree.NextSeq()}
	d.tree.Dispatch(state.NewAction("dashboard/fetchSummary/pending", func(s state.State) state.State {
		s.Dashboard.Ops = s.Dashboard.Ops.Begin(o.id, o.seq)
		return s
	}))

	summary, err := d.api.DashboardSummary(gateway.WithOperationID(ctx, o.id), r)
	if err != nil {
		msg := apierror.Message(err, "Failed to fetch dashboard summary")
		d.tree.Dispatch(state.NewAction("dashboard/fetchSummary/rejected", func(s state.State) state.State {
			s.Dashboard.Ops = s.Dashboard.Ops.Settle(o.id, o.seq, msg)
			return s
		}))
		d.logger.WithError(err).Warn("Failed to fetch dashboard summary")
		return err
	}

	applied := true
	d.tree.Dispatch(state.NewAction("dashboard/fetchSummary/fulfilled", func(s state.State) state.State {
		s.Dashboard, applied = s.Dashboard.SetSummary(summary, r, o.seq)
		s.Dashboard.Ops = s.Dashboard.Ops.Settle(o.id, o.seq, "")
		return s
	}))
	if !applied {
		d.logger.Debug("Dropped summary older than the one shown", logging.F(logging.FieldOperationID, o.id))
	}
	return nil
}
