package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderNumberPrefix = "MKT"

// openSubOrderStatuses hold sub-orders that still need work from buyer or seller
var openSubOrderStatuses = []order.Status{
	order.StatusPendingPayment,
	order.StatusPaid,
	order.StatusPreparing,
	order.StatusShipped,
}

// GormOrderRepository implements order.Repository using GORM. Sub-orders
// live in their own table and are always loaded with the parent.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withSubOrders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("SubOrders", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	})
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withSubOrders(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an order by its number within a tenant
func (r *GormOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withSubOrders(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("number = ?", strings.TrimSpace(number)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySubOrderID finds the order owning a sub-order
func (r *GormOrderRepository) FindBySubOrderID(ctx context.Context, tenantID, subOrderID uuid.UUID) (*order.Order, error) {
	sub := r.db.Model(&models.SubOrderModel{}).
		Select("order_id").
		Where("tenant_id = ? AND id = ?", tenantID, subOrderID)
	var model models.OrderModel
	if err := r.withSubOrders(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = (?)", sub).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindForBuyer lists a buyer's orders newest first
func (r *GormOrderRepository) FindForBuyer(ctx context.Context, tenantID, buyerID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("buyer_id = ?", buyerID)
	return r.findPage(ctx, applyOrderFilters(query, filter), filter)
}

// FindAllForTenant lists orders for admins
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Scopes(tenant.TenantScope(tenantID))
	return r.findPage(ctx, applyOrderFilters(query, filter), filter)
}

func applyOrderFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if buyer, ok := filter.Filters["buyer_id"]; ok {
		query = query.Where("buyer_id = ?", buyer)
	}
	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+strings.ToUpper(filter.Search)+"%")
	}
	return query
}

func (r *GormOrderRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) ([]order.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ids []uuid.UUID
	if err := paginate(query, filter, OrderSortFields, "placed_at").Pluck("id", &ids).Error; err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []order.Order{}, total, nil
	}
	var rows []models.OrderModel
	filter = filter.Normalize()
	if err := r.withSubOrders(ctx).
		Where("id IN ?", ids).
		Order(ValidateSortField(filter.OrderBy, OrderSortFields, "placed_at") + " " + ValidateSortOrder(filter.OrderDir)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toOrders(rows), total, nil
}

// FindSubOrdersForSeller lists a seller's sub-orders with their parent context
func (r *GormOrderRepository) FindSubOrdersForSeller(ctx context.Context, tenantID, sellerID uuid.UUID, status *order.Status, filter shared.Filter) ([]order.SubOrderView, int64, error) {
	query := r.db.WithContext(ctx).
		Table("sub_orders").
		Joins("JOIN orders ON orders.id = sub_orders.order_id").
		Scopes(tenant.ScopeOn("sub_orders", tenantID)).
		Where("sub_orders.seller_id = ?", sellerID)
	if status != nil {
		query = query.Where("sub_orders.status = ?", *status)
	}
	if filter.Search != "" {
		query = query.Where("sub_orders.number LIKE ?", "%"+strings.ToUpper(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, SubOrderSortFields, "placed_at")
	var rows []models.SubOrderViewRow
	if err := query.
		Select("sub_orders.*, orders.number AS order_number, orders.buyer_id, orders.currency, orders.shipping_address, orders.placed_at").
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	views := make([]order.SubOrderView, len(rows))
	for i := range rows {
		views[i] = rows[i].ToDomain()
	}
	return views, total, nil
}

// FindUnpaidPlacedBefore returns unpaid orders of every tenant placed before the cutoff
func (r *GormOrderRepository) FindUnpaidPlacedBefore(ctx context.Context, before time.Time, limit int) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := r.withSubOrders(ctx).
		Where("status = ? AND placed_at < ?", order.StatusPendingPayment, before).
		Order("placed_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// CountOpenForUser counts open sub-orders the user takes part in as buyer,
// or as seller when sellerID is set
func (r *GormOrderRepository) CountOpenForUser(ctx context.Context, tenantID, userID uuid.UUID, sellerID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Table("sub_orders").
		Joins("JOIN orders ON orders.id = sub_orders.order_id").
		Scopes(tenant.ScopeOn("sub_orders", tenantID)).
		Where("sub_orders.status IN ?", openSubOrderStatuses)
	if sellerID != nil {
		query = query.Where("orders.buyer_id = ? OR sub_orders.seller_id = ?", userID, *sellerID)
	} else {
		query = query.Where("orders.buyer_id = ?", userID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AnonymizeBuyerAddresses replaces the shipping address of every order of
// the buyer, keeping only the country for tax reporting
func (r *GormOrderRepository) AnonymizeBuyerAddresses(ctx context.Context, tenantID, buyerID uuid.UUID) (int64, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Select("id", "shipping_address").
		Scopes(tenant.Require(tenantID)).
		Where("buyer_id = ?", buyerID).
		Find(&rows).Error; err != nil {
		return 0, err
	}
	var updated int64
	for i := range rows {
		result := r.db.WithContext(ctx).
			Model(&models.OrderModel{}).
			Where("id = ?", rows[i].ID).
			Update("shipping_address", models.AnonymizeAddressColumn(rows[i].AddressJSON))
		if result.Error != nil {
			return updated, result.Error
		}
		updated += result.RowsAffected
	}
	return updated, nil
}

type settlementRow struct {
	SubOrders  int64
	Gross      decimal.Decimal
	Commission decimal.Decimal
	Refunded   decimal.Decimal
	Payout     decimal.Decimal
	Currency   *string
}

// Settlement sums what a seller earned from sub-orders delivered in [from, to).
// Refunds are deducted from the payout.
func (r *GormOrderRepository) Settlement(ctx context.Context, tenantID, sellerID uuid.UUID, from, to time.Time) (*order.Settlement, error) {
	var row settlementRow
	if err := r.db.WithContext(ctx).
		Table("sub_orders").
		Joins("JOIN orders ON orders.id = sub_orders.order_id").
		Select(`COUNT(*) AS sub_orders,
			COALESCE(SUM(sub_orders.total), 0) AS gross,
			COALESCE(SUM(sub_orders.commission), 0) AS commission,
			COALESCE(SUM(sub_orders.refunded_amount), 0) AS refunded,
			COALESCE(SUM(sub_orders.payout), 0) AS payout,
			MIN(orders.currency) AS currency`).
		Scopes(tenant.ScopeOn("sub_orders", tenantID)).
		Where("sub_orders.seller_id = ?", sellerID).
		Where("sub_orders.delivered_at >= ? AND sub_orders.delivered_at < ?", from, to).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	cur := valueobject.EUR
	if row.Currency != nil && *row.Currency != "" {
		cur = valueobject.Currency(*row.Currency)
	}
	if _, err := valueobject.ParseCurrency(string(cur)); err != nil {
		return nil, err
	}
	amount := func(d decimal.Decimal) valueobject.Money {
		m, _ := valueobject.NewMoney(d, cur)
		return m
	}
	return &order.Settlement{
		SellerID:   sellerID,
		From:       from,
		To:         to,
		Currency:   cur,
		SubOrders:  row.SubOrders,
		Gross:      amount(row.Gross),
		Commission: amount(row.Commission),
		Refunded:   amount(row.Refunded),
		Payout:     amount(row.Payout.Sub(row.Refunded)),
	}, nil
}

// GenerateOrderNumber returns the next MKT-YYYYMMDD-NNNNN number of the day.
// A concurrent duplicate is rejected by the unique index on (tenant_id, number).
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", orderNumberPrefix, at.UTC().Format("20060102"))
	var last []string
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("number LIKE ?", prefix+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &last).Error; err != nil {
		return "", err
	}
	next := 1
	if len(last) > 0 {
		seq, err := strconv.Atoi(strings.TrimPrefix(last[0], prefix))
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", last[0], err)
		}
		next = seq + 1
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

// Save creates or updates an order with its sub-orders
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(o)
		if err := saveUpsert(tx, model, o); err != nil {
			return err
		}
		return saveSubOrders(tx, model.SubOrders)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(o)
		if err := saveVersioned(tx, model, o.ID, o); err != nil {
			return err
		}
		return saveSubOrders(tx, model.SubOrders)
	})
}

func saveSubOrders(tx *gorm.DB, subs []models.SubOrderModel) error {
	if len(subs) == 0 {
		return nil
	}
	return translateError(tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&subs).Error)
}

func toOrders(rows []models.OrderModel) []order.Order {
	out := make([]order.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
