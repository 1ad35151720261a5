package qobuz

//go:generate $MOCKGEN -source=orchestrator.go -destination=mocks/orchestrator_mock.go

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/constants"
	"github.com/oshokin/qobuz-grabber/internal/history"
	"github.com/oshokin/qobuz-grabber/internal/logger"
	"github.com/oshokin/qobuz-grabber/internal/service/delivery"
	"github.com/oshokin/qobuz-grabber/internal/service/notify"
)

// Phases reported with item failures.
const (
	phaseFetchingMetadata = "fetching metadata"
	phaseFetchingContent  = "fetching content"
	phasePreparingFolder  = "preparing folder"
	phaseDownloading      = "downloading track"
	phaseTagging          = "writing metadata tags"
	phaseDelivering       = "delivering"
	phaseArchiving        = "archiving"
)

// Orchestrator acquires and delivers one catalog URL per call.
type Orchestrator interface {
	// Run drives one URL through the state machine and reports the outcome.
	Run(ctx context.Context, url string) *RunReport
}

// OrchestratorDependencies are the collaborators of an Orchestrator.
// History and Statistics are optional.
type OrchestratorDependencies struct {
	// Locator parses catalog URLs.
	Locator Locator
	// Resolver fetches catalog metadata.
	Resolver MetadataResolver
	// Content obtains and downloads track content.
	Content ContentFetcher
	// TagProcessor writes tags and cover art.
	TagProcessor TagProcessor
	// TemplateManager names track files.
	TemplateManager TemplateManager
	// Dispatcher delivers completed artifacts.
	Dispatcher delivery.Dispatcher
	// Notifier reports progress and outcomes to the requester.
	Notifier notify.Notifier
	// History persists runs, a no-op store when nil.
	History history.Store
	// Statistics accumulates session statistics, fresh statistics when nil.
	Statistics *SessionStatistics
}

// OrchestratorImpl implements the Orchestrator interface.
// It holds no run state, so concurrent calls never share records or paths.
type OrchestratorImpl struct {
	cfg  *config.Config
	deps OrchestratorDependencies
	// newRequestID names the staging folder of a run.
	newRequestID func() string
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg *config.Config, deps *OrchestratorDependencies) Orchestrator {
	d := *deps
	if d.History == nil {
		d.History = history.NewNopStore()
	}

	if d.Statistics == nil {
		d.Statistics = NewSessionStatistics()
	}

	return &OrchestratorImpl{
		cfg:          cfg,
		deps:         d,
		newRequestID: uuid.NewString,
	}
}

// run is the state of a single Run call.
type run struct {
	*OrchestratorImpl
	report *RunReport
	paths  *pathBuilder
	plan   DeliveryPlan
	// root is the requested item, nil until it is resolved.
	root *ItemRecord
	// phase is the last non-terminal state, used to describe run failures.
	phase RunState
	// covers caches downloaded cover art by album id; an empty path means none.
	covers map[string]string
}

// phaseError tags an item error with the step that failed.
type phaseError struct {
	phase string
	err   error
}

func (e *phaseError) Error() string {
	return e.phase + ": " + e.err.Error()
}

func (e *phaseError) Unwrap() error {
	return e.err
}

func withPhase(phase string, err error) error {
	return &phaseError{phase: phase, err: err}
}

func phaseOf(err error, fallback string) string {
	var pe *phaseError
	if errors.As(err, &pe) {
		return pe.phase
	}

	return fallback
}

// Run drives one URL through the state machine and reports the outcome.
func (o *OrchestratorImpl) Run(ctx context.Context, url string) *RunReport {
	requestID := o.newRequestID()

	r := &run{
		OrchestratorImpl: o,
		report: &RunReport{
			RequestID: requestID,
			URL:       url,
			StartedAt: time.Now(),
		},
		paths:  newPathBuilder(o.cfg.DownloadBaseDir, requestID, o.cfg.ProviderName, o.cfg.MaxFolderNameLength),
		covers: make(map[string]string),
	}

	logger.Infof(ctx, "Processing %s (request %s)", url, requestID)

	if err := o.deps.History.StartRun(ctx, r.historyRun()); err != nil {
		logger.Warnf(ctx, "Failed to record run start: %v", err)
	}

	err := r.execute(ctx)
	r.finish(ctx, err)

	return r.report
}

func (r *run) execute(ctx context.Context) error {
	r.transition(ctx, RunStateResolving)

	ref, err := r.deps.Locator.Resolve(r.report.URL)
	if err != nil {
		return err
	}

	r.report.Ref = ref
	r.plan = PlanFor(ref.Kind, r.cfg)

	logger.Debugf(ctx, "Run %s resolved %s with plan %+v", r.report.RequestID, ref, r.plan)

	switch ref.Kind {
	case CatalogKindTrack:
		return r.runTrack(ctx, ref.ID)
	case CatalogKindAlbum:
		return r.runAlbum(ctx, ref.ID)
	case CatalogKindArtist, CatalogKindLabel:
		return r.runDiscography(ctx, ref)
	case CatalogKindPlaylist:
		return r.runPlaylist(ctx, ref.ID)
	case CatalogKindUnknown:
		return fmt.Errorf("%w: %s", ErrInvalidReference, r.report.URL)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidReference, r.report.URL)
	}
}

// transition moves the run to state; every transition is logged and recorded.
func (r *run) transition(ctx context.Context, state RunState) {
	from := "start"
	if r.report.State != 0 {
		from = r.report.State.String()
	}

	logger.Debugf(ctx, "Run %s: %s -> %s", r.report.RequestID, from, state)

	r.report.State = state
	r.report.States = append(r.report.States, state)

	if !state.IsTerminal() {
		r.phase = state
	}
}

// resolved records the defining item of the run and announces it.
func (r *run) resolved(ctx context.Context, record *ItemRecord) {
	r.root = record

	if err := r.deps.History.UpdateRun(ctx, r.historyRun()); err != nil {
		logger.Warnf(ctx, "Failed to record resolved run: %v", err)
	}

	if record.Kind == ItemKindTrack {
		return
	}

	record.PosterRef = r.deps.Notifier.Announce(ctx, r.cfg.Requester, &notify.Message{
		Text: fmt.Sprintf("Downloading %s '%s'", r.report.Ref.Kind, record.Title),
	})
}

// progress emits a progress event.
func (r *run) progress(ctx context.Context, index, total int, title string) {
	r.report.Progress = append(r.report.Progress, ProgressEvent{
		Index: index,
		Total: total,
		Title: title,
	})

	r.deps.Notifier.UpdateProgress(ctx, r.cfg.Requester, index, total, title)
}

// recordFailure records a non-fatal failure of item inside parent.
func (r *run) recordFailure(ctx context.Context, parent, item *ItemRecord, fallbackPhase string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	phase := phaseOf(err, fallbackPhase)

	logger.Errorf(ctx, "Failed to process %s of %s at %s: %v", item, parent, phase, err)

	r.report.Failures = append(r.report.Failures, ItemFailure{
		ItemID: item.ID,
		Title:  item.Title,
		Phase:  phase,
		Err:    err,
	})

	errCtx := &ErrorContext{
		Category:       item.Kind,
		ItemID:         item.ID,
		ItemTitle:      item.Title,
		Phase:          phase,
		ParentCategory: parent.Kind,
		ParentID:       parent.ID,
		ParentTitle:    parent.Title,
	}

	if item.Kind == ItemKindAlbum {
		errCtx.ItemURL = albumURL(item.ID)
	}

	r.deps.Statistics.recordError(errCtx, err)
}

// deliver hands source to the dispatcher and keeps the produced links.
func (r *run) deliver(ctx context.Context, source, title string, disableLink bool) error {
	result, err := r.deps.Dispatcher.Deliver(ctx, &delivery.Request{
		SourcePath:  source,
		ScopeRoot:   r.paths.scopeRoot,
		Title:       title,
		DisableLink: disableLink,
	})
	if err != nil {
		return withPhase(phaseDelivering, err)
	}

	logger.Infof(ctx, "Delivered '%s'", title)

	r.report.Results = append(r.report.Results, result)
	r.deps.Statistics.incrementDelivery()

	return nil
}

// finishCollection archives and delivers a fully fetched collection according to plan.
func (r *run) finishCollection(ctx context.Context, record *ItemRecord, plan DeliveryPlan) error {
	if plan.Archive {
		r.transition(ctx, RunStateZipping)

		archivePath, err := zipFolder(ctx, record.FolderPath())
		if err != nil {
			return withPhase(phaseArchiving, err)
		}

		record.SetArchivePath(archivePath)
	}

	if !plan.Final {
		return nil
	}

	r.transition(ctx, RunStateDelivering)

	return r.deliver(ctx, record.DeliveryPath(), record.Title, false)
}

// finish moves the run to its terminal state and reports it.
func (r *run) finish(ctx context.Context, err error) {
	// Reporting must survive a canceled run.
	ctx = context.WithoutCancel(ctx)

	state := RunStateDone
	if err != nil {
		state = RunStateFailed
		r.report.Err = err
	}

	r.transition(ctx, state)
	r.report.FinishedAt = time.Now()

	if cleanupErr := r.deps.Dispatcher.Cleanup(r.paths.coversFolder()); cleanupErr != nil {
		logger.Warnf(ctx, "Failed to remove cover art of run %s: %v", r.report.RequestID, cleanupErr)
	}

	if pruneErr := delivery.PruneEmptyDirs(r.paths.runRoot); pruneErr != nil {
		logger.Warnf(ctx, "Failed to prune staging folder of run %s: %v", r.report.RequestID, pruneErr)
	}

	r.deps.Statistics.recordRun(state)

	if err != nil {
		logger.Errorf(ctx, "Failed to process %s: %v", r.report.URL, err)

		r.deps.Statistics.recordError(r.runErrorContext(), err)
	} else {
		logger.Infof(ctx, "Finished %s with %d link(s) and %d failure(s)",
			r.report.URL, len(r.report.Links()), len(r.report.Failures))
	}

	r.deps.Notifier.Notify(ctx, r.cfg.Requester, r.message())

	if historyErr := r.deps.History.FinishRun(ctx, r.historyRun()); historyErr != nil {
		logger.Warnf(ctx, "Failed to record run result: %v", historyErr)
	}
}

func (r *run) message() *notify.Message {
	msg := &notify.Message{
		Links: r.report.Links(),
		Err:   r.report.Err,
	}

	if r.root != nil {
		msg.ReplyTo = r.root.PosterRef
	}

	switch {
	case r.report.Err != nil:
		msg.Text = "Failed to process " + r.report.URL
	case r.root != nil && len(r.report.Failures) > 0:
		msg.Text = fmt.Sprintf("Finished '%s' with %d failed item(s)", r.root.Title, len(r.report.Failures))
	case r.root != nil:
		msg.Text = fmt.Sprintf("Finished '%s'", r.root.Title)
	default:
		msg.Text = "Finished " + r.report.URL
	}

	return msg
}

func (r *run) runErrorContext() *ErrorContext {
	errCtx := &ErrorContext{
		ItemTitle: r.report.URL,
		ItemURL:   r.report.URL,
		Phase:     r.phase.String(),
	}

	if r.report.Ref != nil {
		errCtx.ItemID = r.report.Ref.ID
		errCtx.Category = itemKindOf(r.report.Ref.Kind)
	}

	if r.root != nil {
		errCtx.ItemTitle = r.root.Title
	}

	return errCtx
}

func (r *run) historyRun() *history.Run {
	record := &history.Run{
		RequestID:  r.report.RequestID,
		URL:        r.report.URL,
		Requester:  r.cfg.Requester,
		Links:      r.report.Links(),
		Failures:   len(r.report.Failures),
		StartedAt:  r.report.StartedAt,
		FinishedAt: r.report.FinishedAt,
	}

	if r.report.State != 0 {
		record.State = r.report.State.String()
	}

	if r.report.Ref != nil {
		record.Kind = r.report.Ref.Kind.String()
		record.RefID = r.report.Ref.ID
	}

	if r.report.Err != nil {
		record.Error = r.report.Err.Error()
	}

	return record
}

// fetchChildren fetches the tracks of a collection one by one.
// A failed child is recorded and the loop continues; it returns the number of completed children.
func (r *run) fetchChildren(
	ctx context.Context,
	parent *ItemRecord,
	folderFor func(track *ItemRecord) string,
	plan DeliveryPlan,
) (int, error) {
	var playlist *ItemRecord
	if parent.Kind == ItemKindPlaylist {
		playlist = parent
	}

	var (
		completed int
		total     = len(parent.Children)
	)

	for i, child := range parent.Children {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return completed, ctx.Err()
		default:
		}

		logger.Infof(ctx, "Downloading %s (%d / %d)", child, i+1, total)

		err := r.fetchTrack(ctx, child, folderFor(child), i+1, playlist)
		if err == nil && plan.PerItem {
			err = r.deliver(ctx, child.FolderPath(), child.Title, plan.DisableItemLinks)
		}

		if err != nil {
			r.deps.Statistics.incrementTrackFailed()
			r.recordFailure(ctx, parent, child, phaseDownloading, err)
		} else {
			completed++
		}

		r.progress(ctx, i+1, total, child.Title)
	}

	return completed, nil
}

// prepareFolder creates a staging folder.
func prepareFolder(path string) error {
	if err := os.MkdirAll(path, constants.DefaultFolderPermissions); err != nil {
		return withPhase(phasePreparingFolder, fmt.Errorf("%w: %w", ErrIO, err))
	}

	return nil
}

func itemKindOf(kind CatalogKind) ItemKind {
	switch kind {
	case CatalogKindTrack:
		return ItemKindTrack
	case CatalogKindAlbum:
		return ItemKindAlbum
	case CatalogKindArtist, CatalogKindLabel:
		return ItemKindArtist
	case CatalogKindPlaylist:
		return ItemKindPlaylist
	case CatalogKindUnknown:
		return 0
	default:
		return 0
	}
}

// albumURL returns a URL the locator resolves to the album.
func albumURL(albumID string) string {
	return "https://play.qobuz.com/album/" + albumID
}
