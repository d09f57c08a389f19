package main

import (
	appaudit "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/handler"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/middleware"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type httpHandlers struct {
	auth        *handler.AuthHandler
	user        *handler.UserHandler
	tenant      *handler.TenantHandler
	catalog     *handler.CatalogHandler
	category    *handler.CategoryHandler
	seller      *handler.SellerHandler
	sellerAdmin *handler.SellerAdminHandler
	sellerOrder *handler.SellerOrderHandler
	pricing     *handler.PricingHandler
	cart        *handler.CartHandler
	checkout    *handler.CheckoutHandler
	order       *handler.OrderHandler
	payment     *handler.PaymentHandler
	returns     *handler.ReturnHandler
	dispute     *handler.DisputeHandler
	privacy     *handler.PrivacyHandler
	featureFlag *handler.FeatureFlagHandler
	audit       *handler.AuditHandler
	outbox      *handler.OutboxHandler
	system      *handler.SystemHandler
}

type routeDeps struct {
	tenants   middleware.TenantResolver
	flags     middleware.FlagEvaluator
	audit     *appaudit.Service
	authLimit gin.HandlerFunc // nil when auth throttling is off
	logger    *zap.Logger
}

var anyRole = []shared.Role{shared.RoleBuyer, shared.RoleSeller, shared.RoleAdmin}

// registerRoutes mounts every domain group. Groups that act on a marketplace
// resolve the tenant first; the payment round-trip and system probes do not.
func registerRoutes(r *router.Router, h httpHandlers, deps routeDeps) {
	tenantScoped := func(name, prefix string) *router.DomainGroup {
		return router.NewDomainGroup(name, prefix).Use(
			middleware.TenantContext(middleware.TenantConfig{Resolver: deps.tenants, Logger: deps.logger}),
			middleware.SpanAttributes(),
		)
	}

	// Identity
	authRoutes := tenantScoped("auth", "/auth")
	if deps.authLimit != nil {
		authRoutes.Use(deps.authLimit)
	}
	authRoutes.POST("/register", h.auth.RegisterBuyer)
	authRoutes.POST("/register/seller", h.auth.RegisterSeller)
	authRoutes.POST("/login", h.auth.Login)
	authRoutes.POST("/refresh", h.auth.RefreshToken)
	authRoutes.POST("/logout", h.auth.Logout)
	authRoutes.GET("/me", h.auth.Me)
	authRoutes.PUT("/password", h.auth.ChangePassword)

	// Public storefront
	catalogRoutes := tenantScoped("catalog", "/catalog")
	catalogRoutes.GET("/products", h.catalog.ListProducts)
	catalogRoutes.GET("/products/:id", h.catalog.GetProduct)
	catalogRoutes.GET("/categories", h.catalog.CategoryTree)
	catalogRoutes.GET("/sellers/:id", h.catalog.GetSeller)

	flagRoutes := tenantScoped("feature-flags", "/feature-flags")
	flagRoutes.POST("/evaluate", h.featureFlag.Evaluate)

	// Buying
	cartRoutes := tenantScoped("cart", "/cart").Use(middleware.RequireRole(shared.RoleBuyer))
	cartRoutes.GET("", h.cart.Get)
	cartRoutes.DELETE("", h.cart.Clear)
	cartRoutes.GET("/quote", h.cart.Quote)
	cartRoutes.POST("/items", h.cart.AddItem)
	cartRoutes.PUT("/items/:productId", h.cart.UpdateQuantity)
	cartRoutes.DELETE("/items/:productId", h.cart.RemoveItem)
	cartRoutes.PUT("/shipping", h.cart.SelectShipping)
	cartRoutes.PUT("/promotion", h.cart.ApplyPromotion)
	cartRoutes.DELETE("/promotion", h.cart.RemovePromotion)

	checkoutRoutes := tenantScoped("checkout", "/checkout").Use(
		middleware.RequireRole(shared.RoleBuyer),
		middleware.RequireFeature(deps.flags, featureflag.FlagCheckoutEnabled),
	)
	checkoutRoutes.POST("", h.checkout.Checkout)

	orderRoutes := tenantScoped("orders", "/orders").Use(middleware.RequireRole(anyRole...))
	orderRoutes.GET("", h.order.ListMine)
	orderRoutes.GET("/:id", h.order.Get)
	orderRoutes.GET("/:id/payment", h.order.Payment)
	orderRoutes.GET("/sub-orders/:subOrderId/tracking", h.order.Track)

	// The signed provider token identifies the payment; no tenant or session
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.GET("/return", h.payment.Return)
	paymentRoutes.GET("/simulate", h.payment.SimulatedSession)
	paymentRoutes.POST("/simulate", h.payment.SimulatedAuthorize)

	// After-sales
	returnRoutes := tenantScoped("returns", "/returns").Use(middleware.RequireRole(anyRole...))
	returnRoutes.POST("", middleware.RequireFeature(deps.flags, featureflag.FlagReturnsEnabled), h.returns.Request)
	returnRoutes.GET("", h.returns.List)
	returnRoutes.GET("/:id", h.returns.Get)
	returnRoutes.POST("/:id/approve", h.returns.Approve)
	returnRoutes.POST("/:id/reject", h.returns.Reject)
	returnRoutes.POST("/:id/receive", h.returns.Receive)
	returnRoutes.POST("/:id/refund", h.returns.Refund)

	disputeRoutes := tenantScoped("disputes", "/disputes").Use(middleware.RequireRole(anyRole...))
	disputeRoutes.POST("", h.dispute.Open)
	disputeRoutes.GET("", h.dispute.List)
	disputeRoutes.GET("/:id", h.dispute.Get)
	disputeRoutes.POST("/:id/messages", h.dispute.PostMessage)
	disputeRoutes.POST("/:id/close", h.dispute.Close)

	privacyRoutes := tenantScoped("privacy", "/privacy").Use(middleware.RequireRole(anyRole...))
	privacyRoutes.POST("/requests", h.privacy.Request)
	privacyRoutes.GET("/requests", h.privacy.ListMine)
	privacyRoutes.GET("/requests/:id", h.privacy.Get)

	// Seller back office
	sellerRoutes := tenantScoped("seller", "/seller").Use(middleware.RequireSeller())
	sellerRoutes.GET("/profile", h.seller.Profile)
	sellerRoutes.GET("/products", h.seller.ListProducts)
	sellerRoutes.POST("/products", h.seller.CreateProduct)
	sellerRoutes.GET("/products/:id", h.seller.GetProduct)
	sellerRoutes.PUT("/products/:id", h.seller.UpdateProduct)
	sellerRoutes.PUT("/products/:id/price", h.seller.ChangePrice)
	sellerRoutes.POST("/products/:id/stock", h.seller.AdjustStock)
	sellerRoutes.POST("/products/:id/publish", h.seller.PublishProduct)
	sellerRoutes.POST("/products/:id/archive", h.seller.ArchiveProduct)
	sellerRoutes.GET("/orders", h.sellerOrder.List)
	sellerRoutes.POST("/orders/:id/prepare", h.sellerOrder.Prepare)
	sellerRoutes.POST("/orders/:id/ship", h.sellerOrder.Ship)
	sellerRoutes.POST("/orders/:id/deliver", h.sellerOrder.Deliver)
	sellerRoutes.POST("/orders/:id/cancel", h.sellerOrder.Cancel)
	sellerRoutes.GET("/orders/:id/packing-slip", h.sellerOrder.PackingSlip)
	sellerRoutes.GET("/settlement", h.sellerOrder.Settlement)

	// Administration; every mutating call is written to the audit log
	admin := tenantScoped("admin", "/admin").Use(
		middleware.RequireRole(shared.RoleAdmin),
		middleware.AdminAudit(deps.audit),
	)

	admin.POST("/tenants", h.tenant.Create)
	admin.GET("/tenants", h.tenant.List)
	admin.GET("/tenants/:id", h.tenant.GetByID)
	admin.POST("/tenants/:id/suspend", h.tenant.Suspend)
	admin.POST("/tenants/:id/activate", h.tenant.Activate)

	admin.GET("/users", h.user.List)
	admin.GET("/users/:id", h.user.GetByID)
	admin.POST("/users/:id/suspend", h.user.Suspend)
	admin.POST("/users/:id/reactivate", h.user.Reactivate)

	admin.GET("/sellers", h.sellerAdmin.List)
	admin.GET("/sellers/:id", h.sellerAdmin.Get)
	admin.POST("/sellers/:id/approve", h.sellerAdmin.Approve)
	admin.POST("/sellers/:id/suspend", h.sellerAdmin.Suspend)
	admin.POST("/sellers/:id/reactivate", h.sellerAdmin.Reactivate)
	admin.PUT("/sellers/:id/type", h.sellerAdmin.ChangeType)
	admin.PUT("/sellers/:id/vat", h.sellerAdmin.UpdateVAT)
	admin.GET("/sellers/:id/settlement", h.sellerOrder.SellerSettlement)

	admin.GET("/categories", h.category.Tree)
	admin.POST("/categories", h.category.Create)
	admin.GET("/categories/:id", h.category.Get)
	admin.PUT("/categories/:id", h.category.Rename)
	admin.POST("/categories/:id/move", h.category.Move)
	admin.POST("/categories/:id/activate", h.category.Activate)
	admin.POST("/categories/:id/deactivate", h.category.Deactivate)

	admin.GET("/pricing/rules/:kind", h.pricing.ListRules)
	admin.POST("/pricing/rules/:kind", h.pricing.CreateRule)
	admin.PUT("/pricing/rules/:kind/:id", h.pricing.UpdateRule)
	admin.PUT("/pricing/rules/:kind/:id/active", h.pricing.SetRuleActive)
	admin.DELETE("/pricing/rules/:kind/:id", h.pricing.DeleteRule)
	admin.GET("/promotions", h.pricing.ListPromotions)
	admin.POST("/promotions", h.pricing.CreatePromotion)
	admin.GET("/promotions/:id", h.pricing.GetPromotion)
	admin.POST("/promotions/:id/deactivate", h.pricing.DeactivatePromotion)

	admin.GET("/orders", h.order.ListAll)
	admin.POST("/disputes/:id/review", h.dispute.StartReview)
	admin.POST("/disputes/:id/resolve", h.dispute.Resolve)
	admin.GET("/privacy/requests", h.privacy.List)
	admin.POST("/privacy/requests/:id/process", h.privacy.Process)

	admin.GET("/feature-flags", h.featureFlag.ListFlags)
	admin.POST("/feature-flags", h.featureFlag.CreateFlag)
	admin.GET("/feature-flags/:key", h.featureFlag.GetFlag)
	admin.PUT("/feature-flags/:key", h.featureFlag.UpdateFlag)
	admin.POST("/feature-flags/:key/toggle", h.featureFlag.ToggleFlag)
	admin.DELETE("/feature-flags/:key", h.featureFlag.DeleteFlag)

	admin.GET("/audit", h.audit.Query)
	admin.GET("/outbox/dead", h.outbox.ListDead)
	admin.POST("/outbox/dead/requeue", h.outbox.RequeueAll)
	admin.GET("/outbox/stats", h.outbox.Stats)
	admin.GET("/outbox/:id", h.outbox.Get)
	admin.POST("/outbox/:id/requeue", h.outbox.Requeue)
	admin.GET("/system/jobs", h.system.ListJobs)
	admin.POST("/system/jobs/:name/run", h.system.RunJob)
	admin.GET("/system/caches", h.system.CacheStats)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.system.GetSystemInfo)
	systemRoutes.GET("/health", h.system.Health)

	r.Register(
		authRoutes, catalogRoutes, flagRoutes,
		cartRoutes, checkoutRoutes, orderRoutes, paymentRoutes,
		returnRoutes, disputeRoutes, privacyRoutes,
		sellerRoutes, admin, systemRoutes,
	)
}
