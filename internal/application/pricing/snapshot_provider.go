package pricing

import (
	"context"
	"fmt"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RuleSnapshotCacheName is the snapshot cache holding pricing rules
const RuleSnapshotCacheName = "pricing_rules"

// SnapshotInvalidator drops a tenant snapshot on this and every other instance
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// SnapshotProvider serves the cached rule snapshot of a tenant
type SnapshotProvider struct {
	commissionRepo pricing.CommissionRuleRepository
	vatRepo        pricing.VatRuleRepository
	shippingRepo   pricing.ShippingRuleRepository
	snapshots      *cache.SnapshotCache[*pricing.RuleSnapshot]
	invalidator    SnapshotInvalidator
	defaults       pricing.Defaults
}

// NewSnapshotProvider creates a new SnapshotProvider. invalidator may be nil
// for single-instance setups.
func NewSnapshotProvider(
	commissionRepo pricing.CommissionRuleRepository,
	vatRepo pricing.VatRuleRepository,
	shippingRepo pricing.ShippingRuleRepository,
	snapshots *cache.SnapshotCache[*pricing.RuleSnapshot],
	invalidator SnapshotInvalidator,
	defaults pricing.Defaults,
) *SnapshotProvider {
	return &SnapshotProvider{
		commissionRepo: commissionRepo,
		vatRepo:        vatRepo,
		shippingRepo:   shippingRepo,
		snapshots:      snapshots,
		invalidator:    invalidator,
		defaults:       defaults,
	}
}

// Snapshot returns the tenant's rules, loading the three rule families in
// parallel on a miss
func (p *SnapshotProvider) Snapshot(ctx context.Context, tenantID uuid.UUID) (*pricing.RuleSnapshot, error) {
	return p.snapshots.Get(ctx, tenantID, func(ctx context.Context) (*pricing.RuleSnapshot, error) {
		var (
			commission []pricing.CommissionRule
			vat        []pricing.VatRule
			shipping   []pricing.ShippingRule
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			commission, err = p.commissionRepo.FindAllForTenant(gctx, tenantID)
			return err
		})
		g.Go(func() (err error) {
			vat, err = p.vatRepo.FindAllForTenant(gctx, tenantID)
			return err
		})
		g.Go(func() (err error) {
			shipping, err = p.shippingRepo.FindAllForTenant(gctx, tenantID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load pricing rules: %w", err)
		}
		return pricing.NewRuleSnapshot(tenantID, p.defaults, commission, vat, shipping), nil
	})
}

// Invalidate drops the tenant's snapshot after a rule write
func (p *SnapshotProvider) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if p.invalidator != nil {
		p.invalidator.Invalidate(ctx, tenantID)
		return
	}
	p.snapshots.Invalidate(tenantID)
}

// Defaults returns the fallback rates
func (p *SnapshotProvider) Defaults() pricing.Defaults {
	return p.defaults
}
