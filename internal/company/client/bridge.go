package client

import (
	"context"
	"errors"

	"github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoEdit is returned by Submit when the edit slot is closed.
var ErrNoEdit = errors.New("no create or edit in progress")

// Bridge issues remote calls and reconciles their results into a State.
type Bridge struct {
	store  Store
	state  *State
	logger *zap.Logger
}

func NewBridge(store Store, state *State, logger *zap.Logger) *Bridge {
	return &Bridge{
		store:  store,
		state:  state,
		logger: logger.Named("sync_bridge"),
	}
}

func (b *Bridge) State() *State {
	return b.state
}

// Refresh reloads the held set: the current page in remote mode, every
// record in local mode. A response overtaken by a newer Refresh is dropped.
func (b *Bridge) Refresh(ctx context.Context) error {
	seq := b.state.BeginList()

	var (
		page *models.CompanyPage
		err  error
	)
	if b.state.Mode() == ModeLocal {
		var all []models.Company
		if all, err = ListAll(ctx, b.store); err == nil {
			page = &models.CompanyPage{Items: all, TotalCount: len(all)}
		}
	} else {
		page, err = b.store.List(ctx, b.state.Filters())
	}

	if !b.state.FinishList(seq, page, err) {
		b.logger.Debug("Discarded stale list response", zap.Uint64("seq", seq))
		return nil
	}
	if err != nil {
		b.logger.Warn("List failed", zap.Error(err))
	}
	return err
}

// SetFilters applies spec (page reset to 1) and, in remote mode, reloads.
func (b *Bridge) SetFilters(ctx context.Context, spec query.Spec) error {
	b.state.SetFilters(spec)
	return b.reloadRemote(ctx)
}

// ClearFilters resets every filter and, in remote mode, reloads.
func (b *Bridge) ClearFilters(ctx context.Context) error {
	b.state.ClearFilters()
	return b.reloadRemote(ctx)
}

// SetPage moves to page and, in remote mode, reloads.
func (b *Bridge) SetPage(ctx context.Context, page int) error {
	b.state.SetPage(page)
	return b.reloadRemote(ctx)
}

func (b *Bridge) reloadRemote(ctx context.Context) error {
	if b.state.Mode() == ModeLocal {
		return nil
	}
	return b.Refresh(ctx)
}

// Load fetches one record into the detail slot.
func (b *Bridge) Load(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	seq := b.state.BeginDetail()
	c, err := b.store.Get(ctx, id)
	if !b.state.FinishDetail(seq, c, err) {
		b.logger.Debug("Discarded stale detail response", zap.Uint64("seq", seq))
	}
	return c, err
}

// Create opens a create in the edit slot and submits in.
func (b *Bridge) Create(ctx context.Context, in models.CompanyInput) (*models.Company, error) {
	b.state.OpenCreate()
	return b.Submit(ctx, in)
}

// Update opens an edit of target and submits in.
func (b *Bridge) Update(ctx context.Context, target *models.Company, in models.CompanyInput) (*models.Company, error) {
	b.state.OpenEdit(target)
	return b.Submit(ctx, in)
}

// Submit saves in against the open edit slot: a create when the slot has no
// target, otherwise an update of the target.
func (b *Bridge) Submit(ctx context.Context, in models.CompanyInput) (*models.Company, error) {
	slot := b.state.Edit()
	if !slot.Open {
		return nil, ErrNoEdit
	}

	b.state.BeginSave()
	if slot.Target == nil {
		created, err := b.store.Create(ctx, in)
		b.state.FinishCreate(created, err)
		return created, err
	}

	updated, err := b.store.Update(ctx, slot.Target.ID, in)
	b.state.FinishUpdate(updated, err)
	return updated, err
}

// Delete removes id remotely, then from the held set. A record already gone
// remotely counts as deleted.
func (b *Bridge) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := b.store.Delete(ctx, id)
	b.state.FinishDelete(id, err)
	if IsSatisfiedDelete(err) {
		return nil
	}
	b.logger.Warn("Delete failed", zap.String("company_id", id.String()), zap.Error(err))
	return err
}

// Options fetches the suggested categorical values.
func (b *Bridge) Options(ctx context.Context) (models.Options, error) {
	return b.store.Options(ctx)
}
