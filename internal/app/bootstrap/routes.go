// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"
	"strings"

	addressesfeature "github.com/dalemusser/slothstore/internal/app/features/addresses"
	auditlogfeature "github.com/dalemusser/slothstore/internal/app/features/auditlog"
	healthfeature "github.com/dalemusser/slothstore/internal/app/features/health"
	loginfeature "github.com/dalemusser/slothstore/internal/app/features/login"
	ordersfeature "github.com/dalemusser/slothstore/internal/app/features/orders"
	productsfeature "github.com/dalemusser/slothstore/internal/app/features/products"
	systemusersfeature "github.com/dalemusser/slothstore/internal/app/features/systemusers"
	userinfofeature "github.com/dalemusser/slothstore/internal/app/features/userinfo"
	productstore "github.com/dalemusser/slothstore/internal/app/store/products"
	userstore "github.com/dalemusser/slothstore/internal/app/store/users"
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// catalog is what both the products feature and the order engine need from
// the product store; it is satisfied by the plain and the cached store.
type catalog interface {
	productsfeature.Catalog
	ordersfeature.Catalog
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. The JSON API lives under /api; /health
// and /metrics sit at the root for load balancers and Prometheus.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}
	db := deps.MongoDatabase

	users := userstore.New(db)
	authMw := auth.NewMiddleware(svc.tokens, users, logger)

	var products catalog = productstore.New(db)
	if deps.Redis != nil {
		products = productstore.NewCached(productstore.New(db), deps.Redis, appCfg.ProductCacheTTL, logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpx.RequestID)
	r.Use(httpx.AccessLog(logger))
	r.Use(svc.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", httpx.RequestIDHeader},
		ExposedHeaders:   []string{httpx.RequestIDHeader},
		AllowCredentials: !allowsAny(appCfg.CORSOrigins),
		MaxAge:           300,
	}))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", svc.metrics.Handler())

	// Locally stored product images
	if appCfg.StorageType == "" || appCfg.StorageType == "local" {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	r.Route("/api", func(api chi.Router) {
		// Authentication and admin user management share /api/auth.
		loginHandler := loginfeature.NewHandler(db, svc.tokens, svc.mail, svc.audit, svc.loginLimiter, svc.metrics, logger)
		loginHandler.SiteName = appCfg.SiteName
		authRouter := loginfeature.Routes(loginHandler, authMw, svc.resetLimiter)
		sysUsersHandler := systemusersfeature.NewHandler(db, svc.audit, logger)
		systemusersfeature.MountRoutes(authRouter, sysUsersHandler, authMw)
		userinfofeature.MountRoutes(authRouter, userinfofeature.NewHandler(), authMw)
		api.Mount("/auth", authRouter)

		// Audit trail (admin)
		auditHandler := auditlogfeature.NewHandler(db, logger)
		api.Mount("/audit", auditlogfeature.Routes(auditHandler, authMw))

		// Catalog
		productsHandler := productsfeature.NewHandler(products, db, svc.storage, svc.audit, logger)
		api.Mount("/products", productsfeature.Routes(productsHandler, authMw))

		// Cart and orders
		orderSvc := ordersfeature.NewService(db, deps.MongoClient, products, users, svc.mail, svc.metrics, logger, ordersfeature.Options{
			AllowBackorder:   appCfg.AllowBackorder,
			Transactions:     appCfg.OrderTransactions,
			VerifyTotal:      appCfg.VerifyOrderTotal,
			SiteName:         appCfg.SiteName,
			InventoryWorkers: appCfg.InventoryWorkers,
		})
		ordersHandler := ordersfeature.NewHandler(orderSvc, svc.audit, logger)
		api.Mount("/orders", ordersfeature.Routes(ordersHandler, authMw))

		// Address book
		addressesHandler := addressesfeature.NewHandler(db, logger)
		api.Mount("/addresses", addressesfeature.Routes(addressesHandler, authMw))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Can't find "+r.URL.Path+" on this server!")
	})

	return r, nil
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
