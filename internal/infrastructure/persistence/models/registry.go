package models

// AllModels lists every persistence model in dependency order, for AutoMigrate
func AllModels() []any {
	return []any{
		&TenantModel{},
		&UserModel{},
		&CategoryModel{},
		&SellerModel{},
		&ProductModel{},
		&CommissionRuleModel{},
		&VatRuleModel{},
		&ShippingRuleModel{},
		&PromotionModel{},
		&CartModel{},
		&OrderModel{},
		&SubOrderModel{},
		&PaymentModel{},
		&ReturnModel{},
		&DisputeModel{},
		&FeatureFlagModel{},
		&AuditEntryModel{},
		&DataRequestModel{},
		&OutboxMessageModel{},
	}
}
