package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parfumerie/internal/cart"
	"parfumerie/internal/checkout"
	"parfumerie/internal/domain"
	"parfumerie/internal/service/catalogue"
)

type sessionService interface {
	Open(ctx context.Context) (token, sessionID string, err error)
	Resolve(ctx context.Context, token string) (string, error)
	Close(ctx context.Context, token string) error
	TTLSeconds() int
}

type catalogueService interface {
	ListAvailable(ctx context.Context, category string) ([]domain.Perfume, error)
	Get(ctx context.Context, id string) (*domain.Perfume, error)
	Categories(ctx context.Context) ([]catalogue.CategorySummary, error)
}

type storefrontService interface {
	Cart(ctx context.Context, sessionID string) (*cart.Cart, error)
	AddPerfume(ctx context.Context, sessionID, perfumeID string, quantity int) (*cart.Cart, error)
	AddBouquet(ctx context.Context, sessionID string, perfumeIDs []string, giftMessage string, quantity int, isGift bool) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, sessionID, lineID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, sessionID string) (*cart.Cart, error)
	Checkout(ctx context.Context, sessionID string, customer checkout.Customer, delivery checkout.Delivery) (checkout.Confirmation, error)
	OrderQRCode(ctx context.Context, reference string) ([]byte, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Sessions   sessionService
	Catalogue  catalogueService
	Storefront storefrontService
}

type api struct {
	deps   Deps
	logger *zap.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Catalogue == nil || deps.Storefront == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), cors.New(corsConfig(corsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &api{deps: deps, logger: logger}

	router.POST("/sessions", h.openSession)
	router.DELETE("/sessions", h.closeSession)

	router.GET("/perfumes", h.listPerfumes)
	router.GET("/perfumes/:id", h.getPerfume)
	router.GET("/categories", h.listCategories)
	router.GET("/orders/:reference/qr", h.orderQRCode)

	authed := router.Group("/", sessionMiddleware(deps.Sessions))
	authed.GET("/cart", h.getCart)
	authed.POST("/cart/items", h.addItem)
	authed.POST("/cart/bouquets", h.addBouquet)
	authed.PATCH("/cart/items/:lineId", h.updateItem)
	authed.DELETE("/cart/items/:lineId", h.removeItem)
	authed.DELETE("/cart", h.clearCart)
	authed.POST("/checkout", h.checkout)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
