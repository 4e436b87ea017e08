// Package ledger hosts the workspace service. It keeps one in-memory ledger
// per workspace as the runtime authority, serializes writers through a
// workspace mutex plus a Redis lock, persists every change as a single
// transaction, and fans committed changes out to Kafka, the equity cache,
// and metrics.
package ledger

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/fairslice/pie/internal/repositories/activity"
	"github.com/fairslice/pie/internal/repositories/contribution"
	"github.com/fairslice/pie/internal/repositories/contributor"
	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/equity"
	"github.com/fairslice/pie/pkg/ledger"
	"github.com/fairslice/pie/pkg/metrics"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/tracing"
	"github.com/fairslice/pie/pkg/vesting"
	"github.com/pkg/errors"
)

// WorkspaceLocker serializes mutations to one workspace across instances.
type WorkspaceLocker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, timeout time.Duration, fn func() error) error
}

// ActivityEmitter publishes committed activity events to downstream consumers.
type ActivityEmitter interface {
	EmitActivity(ctx context.Context, workspaceID string, event *models.ActivityEvent) error
}

// EquityCache holds computed equity reports between mutations.
type EquityCache interface {
	Get(ctx context.Context, workspaceID string) (*models.EquityReport, error)
	Set(ctx context.Context, workspaceID string, report *models.EquityReport) error
	Invalidate(ctx context.Context, workspaceID string) error
}

// workspaceState is one workspace's resident ledger. The mutex is the single
// logical writer; hydrated tracks whether the ledger mirrors the database.
type workspaceState struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	hydrated bool
}

// Service owns every workspace ledger resident in this instance.
type Service struct {
	logger           ectologger.Logger
	db               database.DB
	contributorRepo  contributor.ContributorRepository
	contributionRepo contribution.ContributionRepository
	activityRepo     activity.ActivityRepository
	locker           WorkspaceLocker
	emitter          ActivityEmitter
	cache            EquityCache
	lockTTL          time.Duration
	lockTimeout      time.Duration

	mu         sync.Mutex
	workspaces map[string]*workspaceState
}

// NewService creates the workspace service.
func NewService(
	logger ectologger.Logger,
	db database.DB,
	contributorRepo contributor.ContributorRepository,
	contributionRepo contribution.ContributionRepository,
	activityRepo activity.ActivityRepository,
	locker WorkspaceLocker,
	emitter ActivityEmitter,
	equityCache EquityCache,
	lockTTL time.Duration,
	lockTimeout time.Duration,
) *Service {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Service{
		logger:           logger,
		db:               db,
		contributorRepo:  contributorRepo,
		contributionRepo: contributionRepo,
		activityRepo:     activityRepo,
		locker:           locker,
		emitter:          emitter,
		cache:            equityCache,
		lockTTL:          lockTTL,
		lockTimeout:      lockTimeout,
		workspaces:       make(map[string]*workspaceState),
	}
}

// workspace returns the state entry for the workspace, creating an empty one
// on first access. Hydration happens later under the workspace mutex.
func (s *Service) workspace(workspaceID string) *workspaceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[workspaceID]
	if !ok {
		ws = &workspaceState{ledger: ledger.NewLedger()}
		s.workspaces[workspaceID] = ws
	}
	return ws
}

// withWorkspace runs fn holding the workspace mutex, hydrating from the
// database first when this instance has no resident copy.
func (s *Service) withWorkspace(ctx context.Context, workspaceID string, fn func(ws *workspaceState) error) error {
	ws := s.workspace(workspaceID)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.hydrated {
		if err := s.hydrate(ctx, workspaceID, ws); err != nil {
			return err
		}
	}
	return fn(ws)
}

// hydrate rebuilds the resident ledger from the database, all lifecycle
// states included so soft deleted records stay restorable.
func (s *Service) hydrate(ctx context.Context, workspaceID string, ws *workspaceState) error {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.hydrate")
	defer span.End()

	start := time.Now()
	snapshot, err := s.loadSnapshot(ctx, workspaceID)
	if err != nil {
		metrics.RecordHydration("error", time.Since(start).Seconds())
		return err
	}

	ws.ledger.Hydrate(snapshot)
	ws.hydrated = true
	metrics.RecordHydration("success", time.Since(start).Seconds())
	metrics.WorkspacesResident.Inc()

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"workspace_id":  workspaceID,
		"contributors":  len(snapshot.Contributors),
		"contributions": len(snapshot.Contributions),
	}).Info("hydrated workspace ledger")
	return nil
}

func (s *Service) loadSnapshot(ctx context.Context, workspaceID string) (*models.WorkspaceSnapshot, error) {
	contributors, err := s.contributorRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	contributions, err := s.contributionRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	events, err := s.activityRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return &models.WorkspaceSnapshot{
		Contributors:  contributors,
		Contributions: contributions,
		Activity:      events,
	}, nil
}

// discard drops the resident copy so the next access rebuilds it from the
// database. The caller holds ws.mu.
func (s *Service) discard(ws *workspaceState) {
	if ws.hydrated {
		metrics.WorkspacesResident.Dec()
	}
	ws.ledger.Reset()
	ws.hydrated = false
}

// mutate applies one ledger mutation under both locks and persists the
// resulting change in a single transaction. When the database refuses the
// change the resident ledger is discarded, so memory never drifts from
// durable state.
func (s *Service) mutate(ctx context.Context, workspaceID, operation string, apply func(led *ledger.Ledger) (*ledger.Change, error)) (*ledger.Change, error) {
	start := time.Now()
	var change *ledger.Change
	err := s.locker.WithLock(ctx, workspaceID, s.lockTTL, s.lockTimeout, func() error {
		return s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
			applied, err := apply(ws.ledger)
			if err != nil {
				return err
			}
			if err := s.persistChange(ctx, workspaceID, applied); err != nil {
				s.discard(ws)
				return err
			}
			change = applied
			return nil
		})
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordMutation(workspaceID, operation, status, time.Since(start).Seconds())

	if err != nil {
		return nil, mapLedgerError(err)
	}

	s.afterCommit(ctx, workspaceID, change)
	return change, nil
}

// persistChange writes every record the change touched plus its activity
// event inside one transaction. Cascade sweeps land atomically or not at all.
func (s *Service) persistChange(ctx context.Context, workspaceID string, change *ledger.Change) error {
	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if change.Contributor != nil {
		if err := s.contributorRepo.Upsert(ctx, workspaceID, change.Contributor); err != nil {
			return err
		}
	}
	if len(change.Contributions) > 0 {
		if err := s.contributionRepo.UpsertBatch(ctx, workspaceID, change.Contributions); err != nil {
			return err
		}
	}
	if change.Event != nil {
		if err := s.activityRepo.Insert(ctx, workspaceID, change.Event); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// afterCommit fans a committed change out to the collaborators that only see
// durable state. Nothing here can fail the mutation.
func (s *Service) afterCommit(ctx context.Context, workspaceID string, change *ledger.Change) {
	if change.Event != nil {
		metrics.RecordActivityEvent(string(change.Event.Action), string(change.Event.TargetKind))
		if change.Event.CascadeCount != nil {
			metrics.RecordCascade(*change.Event.CascadeCount)
		}
		// the emitter logs and counts its own publish failures
		_ = s.emitter.EmitActivity(ctx, workspaceID, change.Event)
	}
	// the cache logs its own failures; a stale entry only lives until its TTL
	_ = s.cache.Invalidate(ctx, workspaceID)
}

// mapLedgerError translates ledger sentinels into HTTP errors. Errors that
// are already HTTP shaped, such as repository failures, pass through as is.
func mapLedgerError(err error) error {
	if err == nil || httperror.IsHTTPError(err) {
		return err
	}
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return httperror.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrAlreadyDeleted), errors.Is(err, ledger.ErrNotDeleted):
		return httperror.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrValueNotPositive),
		errors.Is(err, ledger.ErrHourlyRateRequired),
		errors.Is(err, ledger.ErrContributorRequired),
		errors.Is(err, ledger.ErrContributorImmutable),
		errors.Is(err, ledger.ErrUnknownContributionType),
		errors.Is(err, ledger.ErrVestingInvalid):
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}

// CreateContributor adds a founder or team member to the workspace pie.
func (s *Service) CreateContributor(ctx context.Context, workspaceID string, req models.CreateContributorRequest) (*models.Contributor, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.CreateContributor")
	defer span.End()

	change, err := s.mutate(ctx, workspaceID, "contributor.create", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.AddContributor(req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"workspace_id":   workspaceID,
		"contributor_id": change.Contributor.ID,
		"name":           change.Contributor.Name,
	}).Info("created contributor")
	return change.Contributor, nil
}

// UpdateContributor applies a partial patch to an active contributor. Rate
// changes only price future contributions; recorded slices keep their value.
func (s *Service) UpdateContributor(ctx context.Context, workspaceID, id string, req models.UpdateContributorRequest) (*models.Contributor, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.UpdateContributor")
	defer span.End()

	change, err := s.mutate(ctx, workspaceID, "contributor.update", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.UpdateContributor(id, req)
	})
	if err != nil {
		return nil, err
	}
	return change.Contributor, nil
}

// DeleteContributor soft deletes the contributor and cascades over its active
// contributions. The whole sweep commits as one transaction and produces one
// activity event.
func (s *Service) DeleteContributor(ctx context.Context, workspaceID, id string) (*ledger.Change, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.DeleteContributor")
	defer span.End()

	change, err := s.mutate(ctx, workspaceID, "contributor.delete", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.RemoveContributor(id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"workspace_id":   workspaceID,
		"contributor_id": id,
		"cascade_count":  *change.Event.CascadeCount,
	}).Info("deleted contributor")
	return change, nil
}

// RestoreContributor revives the contributor together with the contributions
// its deletion swept. Independently deleted contributions stay deleted.
func (s *Service) RestoreContributor(ctx context.Context, workspaceID, id string) (*ledger.Change, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.RestoreContributor")
	defer span.End()

	change, err := s.mutate(ctx, workspaceID, "contributor.restore", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.RestoreContributor(id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"workspace_id":   workspaceID,
		"contributor_id": id,
		"cascade_count":  *change.Event.CascadeCount,
	}).Info("restored contributor")
	return change, nil
}

// GetContributor returns the contributor in any lifecycle state.
func (s *Service) GetContributor(ctx context.Context, workspaceID, id string) (*models.Contributor, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.GetContributor")
	defer span.End()

	var item *models.Contributor
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		var err error
		item, err = ws.ledger.GetContributor(id)
		return err
	})
	return item, mapLedgerError(err)
}

// ListContributors returns active contributors, or soft deleted ones when
// deleted is set. Insertion order is preserved.
func (s *Service) ListContributors(ctx context.Context, workspaceID string, deleted bool) ([]*models.Contributor, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.ListContributors")
	defer span.End()

	var items []*models.Contributor
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		if deleted {
			items = ws.ledger.GetDeletedContributors()
		} else {
			items = ws.ledger.GetActiveContributors()
		}
		return nil
	})
	return items, err
}

// CreateContribution prices the contribution into slices and records it
// against its active owner.
func (s *Service) CreateContribution(ctx context.Context, workspaceID string, req models.CreateContributionRequest) (*models.Contribution, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.CreateContribution")
	defer span.End()

	change, err := s.mutate(ctx, workspaceID, "contribution.create", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.AddContribution(req)
	})
	if err != nil {
		return nil, err
	}

	created := change.Contributions[0]
	metrics.RecordContribution(workspaceID, string(created.Type))
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"workspace_id":    workspaceID,
		"contribution_id": created.ID,
		"contributor_id":  created.ContributorID,
		"type":            created.Type,
		"slices":          created.Slices,
	}).Info("recorded contribution")
	return created, nil
}

// UpdateContribution applies a partial patch and reprices the slices from the
// resulting values. Ownership is immutable.
func (s *Service) UpdateContribution(ctx context.Context, workspaceID, id string, req models.UpdateContributionRequest) (*models.Contribution, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.UpdateContribution")
	defer span.End()

	change, err := s.mutate(ctx, workspaceID, "contribution.update", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.UpdateContribution(id, req)
	})
	if err != nil {
		return nil, err
	}
	return change.Contributions[0], nil
}

// DeleteContribution soft deletes one contribution directly, without a
// cascade tag, so a later contributor restore leaves it deleted.
func (s *Service) DeleteContribution(ctx context.Context, workspaceID, id string) (*ledger.Change, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.DeleteContribution")
	defer span.End()

	return s.mutate(ctx, workspaceID, "contribution.delete", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.RemoveContribution(id)
	})
}

// RestoreContribution revives one contribution. Its owner must be active so
// restored slices always belong to an active contributor.
func (s *Service) RestoreContribution(ctx context.Context, workspaceID, id string) (*ledger.Change, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.RestoreContribution")
	defer span.End()

	return s.mutate(ctx, workspaceID, "contribution.restore", func(led *ledger.Ledger) (*ledger.Change, error) {
		return led.RestoreContribution(id)
	})
}

// GetContribution returns the contribution in any lifecycle state.
func (s *Service) GetContribution(ctx context.Context, workspaceID, id string) (*models.Contribution, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.GetContribution")
	defer span.End()

	var item *models.Contribution
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		var err error
		item, err = ws.ledger.GetContribution(id)
		return err
	})
	return item, mapLedgerError(err)
}

// ListContributions returns active contributions, or soft deleted ones when
// deleted is set. Insertion order is preserved.
func (s *Service) ListContributions(ctx context.Context, workspaceID string, deleted bool) ([]*models.Contribution, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.ListContributions")
	defer span.End()

	var items []*models.Contribution
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		if deleted {
			items = ws.ledger.GetDeletedContributions()
		} else {
			items = ws.ledger.GetActiveContributions()
		}
		return nil
	})
	return items, err
}

// PreviewContribution calculates the slices a contribution would earn without
// recording anything. Manual entries and suggested values share this path.
func (s *Service) PreviewContribution(ctx context.Context, workspaceID string, req models.PreviewContributionRequest) (*models.ContributionPreview, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.PreviewContribution")
	defer span.End()

	var preview *models.ContributionPreview
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		var err error
		preview, err = ws.ledger.PreviewContribution(req)
		return err
	})
	return preview, mapLedgerError(err)
}

// EquityReport returns the per contributor split of the pie, serving from the
// cache when a mutation has not invalidated it.
func (s *Service) EquityReport(ctx context.Context, workspaceID string) (*models.EquityReport, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.EquityReport")
	defer span.End()

	if report, err := s.cache.Get(ctx, workspaceID); err == nil {
		metrics.RecordEquityCacheLookup("hit")
		return report, nil
	}
	metrics.RecordEquityCacheLookup("miss")

	var report *models.EquityReport
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		contributions := ws.ledger.GetActiveContributions()
		report = &models.EquityReport{
			Contributors: equity.CalculateAll(ws.ledger.GetActiveContributors(), contributions),
			TotalSlices:  equity.TotalSlices(contributions),
			MostRecent:   equity.MostRecent(contributions),
			GeneratedAt:  time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, workspaceID, report); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warnf("failed to cache equity report for workspace %s", workspaceID)
	}
	return report, nil
}

// VestedEquity returns each active contributor's vested position as of the
// given time.
func (s *Service) VestedEquity(ctx context.Context, workspaceID string, asOf time.Time) ([]models.VestedEquity, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.VestedEquity")
	defer span.End()

	var items []models.VestedEquity
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		totals := equity.SlicesByContributor(ws.ledger.GetActiveContributions())
		items = vesting.VestedEquity(ws.ledger.GetActiveContributors(), totals, asOf)
		return nil
	})
	return items, err
}

// VestingSummary returns the company wide vested position as of the given
// time.
func (s *Service) VestingSummary(ctx context.Context, workspaceID string, asOf time.Time) (models.VestingSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.VestingSummary")
	defer span.End()

	var summary models.VestingSummary
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		totals := equity.SlicesByContributor(ws.ledger.GetActiveContributions())
		summary = vesting.Summary(ws.ledger.GetActiveContributors(), totals, asOf)
		return nil
	})
	return summary, err
}

// RecentActivity returns up to limit events, newest first.
func (s *Service) RecentActivity(ctx context.Context, workspaceID string, limit int) ([]*models.ActivityEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.RecentActivity")
	defer span.End()

	var items []*models.ActivityEvent
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		items = ws.ledger.GetRecentActivity(limit)
		return nil
	})
	return items, err
}

// ExportWorkspace returns the full workspace state, soft deleted records and
// activity trail included, suitable for re-import.
func (s *Service) ExportWorkspace(ctx context.Context, workspaceID string) (*models.WorkspaceSnapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.ExportWorkspace")
	defer span.End()

	var snapshot *models.WorkspaceSnapshot
	err := s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
		snapshot = ws.ledger.Snapshot()
		return nil
	})
	return snapshot, err
}

// ImportWorkspace replaces the workspace with the snapshot verbatim. Ids,
// timestamps, and deletion provenance are preserved and no activity events
// are recorded for the load.
func (s *Service) ImportWorkspace(ctx context.Context, workspaceID string, snapshot *models.WorkspaceSnapshot) error {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.ImportWorkspace")
	defer span.End()

	if err := s.replace(ctx, workspaceID, "workspace.import", snapshot); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"workspace_id":  workspaceID,
		"contributors":  len(snapshot.Contributors),
		"contributions": len(snapshot.Contributions),
	}).Info("imported workspace snapshot")
	return nil
}

// ResetWorkspace wipes the workspace: records, activity trail, and cached
// equity.
func (s *Service) ResetWorkspace(ctx context.Context, workspaceID string) error {
	ctx, span := tracing.StartSpan(ctx, "ledger.Service.ResetWorkspace")
	defer span.End()

	if err := s.replace(ctx, workspaceID, "workspace.reset", nil); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"workspace_id": workspaceID,
	}).Info("reset workspace")
	return nil
}

// replace swaps both the durable and the resident copy of the workspace for
// the snapshot. The durable swap commits first; memory only follows a
// successful commit.
func (s *Service) replace(ctx context.Context, workspaceID, operation string, snapshot *models.WorkspaceSnapshot) error {
	start := time.Now()
	err := s.locker.WithLock(ctx, workspaceID, s.lockTTL, s.lockTimeout, func() error {
		return s.withWorkspace(ctx, workspaceID, func(ws *workspaceState) error {
			if err := s.replaceWorkspace(ctx, workspaceID, snapshot); err != nil {
				return err
			}
			ws.ledger.Hydrate(snapshot)
			return nil
		})
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordMutation(workspaceID, operation, status, time.Since(start).Seconds())

	if err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx, workspaceID)
	return nil
}

// replaceWorkspace swaps the durable copy for the snapshot inside one
// transaction so a failed import never leaves a partial workspace.
func (s *Service) replaceWorkspace(ctx context.Context, workspaceID string, snapshot *models.WorkspaceSnapshot) error {
	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.contributionRepo.DeleteByWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	if err := s.contributorRepo.DeleteByWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	if err := s.activityRepo.DeleteByWorkspace(ctx, workspaceID); err != nil {
		return err
	}

	if snapshot != nil {
		if err := s.contributorRepo.UpsertBatch(ctx, workspaceID, snapshot.Contributors); err != nil {
			return err
		}
		if err := s.contributionRepo.UpsertBatch(ctx, workspaceID, snapshot.Contributions); err != nil {
			return err
		}
		if err := s.activityRepo.InsertBatch(ctx, workspaceID, snapshot.Activity); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
