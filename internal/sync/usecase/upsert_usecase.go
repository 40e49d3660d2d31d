package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/shared/logger"
	"itemsync/internal/shared/metrics"
	"itemsync/internal/shared/utils"
	"itemsync/internal/sync/domain/model"
	"itemsync/internal/sync/domain/repository"

	gocache "github.com/patrickmn/go-cache"
)

const (
	maxNaturalKeyLen = 40

	// The store's search index is eventually consistent: a Find issued right
	// after a Create may miss the new record. References of recent creates
	// are cached so resolve does not trust a stale NotFound.
	defaultResolveCacheTTL = 5 * time.Minute
	resolveCacheSweep      = time.Minute
)

// UpsertUsecase orchestrates one upsert: resolve the natural key, load or
// instantiate, reconcile attributes and lines, save, and on a save-time
// uniqueness conflict retry exactly once as an update.
type UpsertUsecase struct {
	store          repository.RecordStore
	policy         *ReconciliationPolicy
	canonicalizer  *Canonicalizer
	attrReconciler *AttributeReconciler
	lineReconciler *LineReconciler
	recent         *gocache.Cache
	log            logger.Logger
}

// NewUpsertUsecase creates an upsert resolver with the default resolve cache.
func NewUpsertUsecase(store repository.RecordStore, policy *ReconciliationPolicy, log logger.Logger) *UpsertUsecase {
	return NewUpsertUsecaseWithCacheTTL(store, policy, log, defaultResolveCacheTTL)
}

// NewUpsertUsecaseWithCacheTTL creates an upsert resolver with a custom TTL
// for the recent-create cache.
func NewUpsertUsecaseWithCacheTTL(store repository.RecordStore, policy *ReconciliationPolicy, log logger.Logger, cacheTTL time.Duration) *UpsertUsecase {
	return &UpsertUsecase{
		store:          store,
		policy:         policy,
		canonicalizer:  NewCanonicalizer(policy, log),
		attrReconciler: NewAttributeReconciler(policy, log),
		lineReconciler: NewLineReconciler(policy, log),
		recent:         gocache.New(cacheTTL, resolveCacheSweep),
		log:            log.WithComponent("upsert-resolver"),
	}
}

// Upsert runs the full state machine for one request. Validation failures
// return before any store write; any store failure other than a create-path
// uniqueness conflict is terminal.
func (uc *UpsertUsecase) Upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ctx = utils.WithNaturalKey(utils.WithTenantID(ctx, req.Partition), req.NaturalKey)
	log := uc.log.WithContext(ctx)

	canonical, warnings, err := uc.canonicalizer.Canonicalize(req.Attributes)
	if err != nil {
		return nil, err
	}
	if !canonical.Has(AttrUPCCode) {
		return nil, apperrors.NewValidationError("required attribute \"upcCode\" is missing").
			WithDetail("attribute", AttrUPCCode)
	}

	ref, found, err := uc.resolve(ctx, req.Partition, req.NaturalKey, false)
	if err != nil {
		return nil, storeError("resolve", err)
	}

	mode := ModeCreate
	var record *model.Record
	if found {
		mode = ModeUpdate
		record, err = uc.store.Load(ctx, req.Partition, ref)
		if err != nil {
			return nil, storeError("load", err)
		}
	} else {
		record = model.NewRecord(req.Partition, req.NaturalKey)
	}

	uc.reconcile(record, canonical, mode, req.Party)

	operation := model.OperationCreated
	var finalRef model.RecordRef

	if mode == ModeCreate {
		finalRef, err = uc.store.Create(ctx, record)
		switch {
		case err == nil:
			uc.recent.Set(resolveCacheKey(req.Partition, req.NaturalKey), finalRef, gocache.DefaultExpiration)
		case apperrors.IsConflict(err):
			// A concurrent caller created the record between our resolve and
			// this save. Re-query and retry exactly once as an update.
			metrics.ObserveConflictRetry()
			log.Warn("Create lost a uniqueness race; retrying as update")
			finalRef, err = uc.retryAsUpdate(ctx, req, canonical)
			if err != nil {
				return nil, err
			}
			operation = model.OperationUpdated
		default:
			return nil, storeError("create", err)
		}
	} else {
		operation = model.OperationUpdated
		finalRef, err = uc.store.Save(ctx, record)
		if err != nil {
			return nil, storeError("save", err)
		}
	}

	persisted := uc.readBack(ctx, req.Partition, finalRef, record)

	metrics.ObserveUpsert(string(operation), "ok", time.Since(start).Seconds())
	metrics.ObserveAttributeWarnings(len(warnings.Items))
	log.WithFields(map[string]interface{}{
		"record_id": string(finalRef),
		"operation": string(operation),
		"warnings":  len(warnings.Items),
	}).Info("Upsert completed")

	return &UpsertResult{
		RecordID:            finalRef,
		Operation:           operation,
		PersistedAttributes: persisted,
		Warnings:            warnings.Items,
	}, nil
}

// retryAsUpdate is the single automatic retry after a create-path uniqueness
// conflict. The resolve is forced past the recent-create cache because the
// record we collided with is not ours.
func (uc *UpsertUsecase) retryAsUpdate(ctx context.Context, req UpsertRequest, canonical model.CanonicalAttributes) (model.RecordRef, error) {
	ref, found, err := uc.resolve(ctx, req.Partition, req.NaturalKey, true)
	if err != nil {
		return "", storeError("resolve after conflict", err)
	}
	if !found {
		return "", apperrors.NewStoreError("uniqueness conflict reported but no record found for natural key").
			WithDetail("naturalKey", req.NaturalKey)
	}

	record, err := uc.store.Load(ctx, req.Partition, ref)
	if err != nil {
		return "", storeError("load after conflict", err)
	}

	uc.reconcile(record, canonical, ModeUpdate, req.Party)

	savedRef, err := uc.store.Save(ctx, record)
	if err != nil {
		return "", storeError("save after conflict", err)
	}
	return savedRef, nil
}

// resolve looks up the natural key. Multi-match is a store inconsistency:
// the first reference in ascending order wins and the ambiguity is logged,
// but distinct records are never merged here.
func (uc *UpsertUsecase) resolve(ctx context.Context, partition, naturalKey string, force bool) (model.RecordRef, bool, error) {
	if !force {
		if cached, ok := uc.recent.Get(resolveCacheKey(partition, naturalKey)); ok {
			return cached.(model.RecordRef), true, nil
		}
	}

	refs, err := uc.store.Find(ctx, partition, naturalKey)
	if err != nil {
		return "", false, err
	}
	if len(refs) == 0 {
		return "", false, nil
	}
	if len(refs) > 1 {
		sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
		uc.log.WithContext(ctx).WithFields(map[string]interface{}{
			"matches":  len(refs),
			"selected": string(refs[0]),
		}).Warn("Multiple records share one natural key; selecting first by reference order")
	}
	return refs[0], true, nil
}

// reconcile applies both reconcilers to the draft.
func (uc *UpsertUsecase) reconcile(record *model.Record, canonical model.CanonicalAttributes, mode ReconcileMode, party *PartyLine) {
	uc.attrReconciler.Reconcile(record, canonical, mode)

	if party != nil && party.PartyID != "" {
		payload := map[string]interface{}{}
		if party.PartyCode != "" {
			payload["partyCode"] = party.PartyCode
		}
		uc.lineReconciler.Reconcile(record, party.PartyID, payload)
	}
}

// readBack fetches the persisted key attributes so callers can verify the
// write independently of the store's response. A read-back failure degrades
// to the draft's values rather than failing a completed upsert.
func (uc *UpsertUsecase) readBack(ctx context.Context, partition string, ref model.RecordRef, draft *model.Record) map[string]interface{} {
	source := draft
	if loaded, err := uc.store.Load(ctx, partition, ref); err == nil {
		source = loaded
	} else {
		uc.log.WithContext(ctx).Warnf("Read-back failed, reporting draft values: %v", err)
	}

	persisted := map[string]interface{}{
		"naturalKey": source.NaturalKey,
	}
	for _, name := range []string{AttrUPCCode, AttrCrossLinkA, AttrCrossLinkB} {
		if v, ok := source.GetAttribute(name); ok {
			persisted[name] = v
		}
	}
	return persisted
}

func validateRequest(req UpsertRequest) error {
	if req.NaturalKey == "" {
		return apperrors.NewValidationError(apperrors.ErrEmptyNaturalKey.Error()).
			WithDetail("attribute", "naturalKey")
	}
	if len(req.NaturalKey) > maxNaturalKeyLen {
		return apperrors.NewValidationError(
			fmt.Sprintf("natural key exceeds %d characters", maxNaturalKeyLen)).
			WithDetail("attribute", "naturalKey")
	}
	if req.Partition == "" {
		return apperrors.NewValidationError(apperrors.ErrEmptyPartition.Error()).
			WithDetail("attribute", "partition")
	}
	return nil
}

func storeError(op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypeConflict {
		return appErr
	}
	return apperrors.NewStoreError(op + " failed").WithCause(err)
}

func resolveCacheKey(partition, naturalKey string) string {
	return partition + "/" + naturalKey
}
