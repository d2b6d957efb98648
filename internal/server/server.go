package server

import (
	"net/http"

	"github.com/ktsuchiya/blockmarket-backend/internal/auth"
	"github.com/ktsuchiya/blockmarket-backend/internal/config"
	"github.com/ktsuchiya/blockmarket-backend/internal/handler"
	appmw "github.com/ktsuchiya/blockmarket-backend/internal/middleware"
	"github.com/ktsuchiya/blockmarket-backend/internal/rcon"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"github.com/ktsuchiya/blockmarket-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

// New wires repositories, services and routes. The console may be nil;
// in-game whispers are then skipped and code login is unavailable.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, console *rcon.Client, log *zap.SugaredLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOrigins:     []string{"*"},
	}))

	itemRepo := repository.NewItemRepository(db)
	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	negRepo := repository.NewNegotiationRepository(db)

	var notify service.Notifier = service.NopNotifier()
	if console != nil {
		notify = rcon.NewNotifier(console, userRepo, log)
	}

	itemSvc := service.NewItemService(itemRepo)
	shopSvc := service.NewShopService(shopRepo, itemRepo)
	requestSvc := service.NewRequestService(requestRepo, offerRepo, negRepo, itemRepo, notify)
	offerSvc := service.NewOfferService(offerRepo, requestRepo, requestSvc, notify)
	negSvc := service.NewNegotiationService(negRepo, notify)

	codes := auth.NewCodeStore(rdb, cfg.LoginCodeTTL)
	var consoleIface service.Console
	if console != nil {
		consoleIface = console
	}
	authSvc := service.NewAuthService(codes, consoleIface, userRepo, cfg.JWTSecret, cfg.SessionTTL)

	itemHandler := handler.NewItemHandler(itemSvc)
	shopHandler := handler.NewShopHandler(shopSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	offerHandler := handler.NewOfferHandler(offerSvc)
	negHandler := handler.NewNegotiationHandler(negSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	authMw := appmw.NewAuthMiddleware(cfg.JWTSecret)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")

	api.POST("/auth/code", authHandler.RequestCode)
	api.POST("/auth/verify", authHandler.VerifyCode)

	api.GET("/items", itemHandler.List)
	api.GET("/items/:id", itemHandler.Get)
	api.POST("/items", itemHandler.Register, authMw.RequireAuth)

	api.GET("/shops", shopHandler.List)
	api.GET("/shops/:id", shopHandler.Get)
	api.POST("/shops", shopHandler.Create, authMw.RequireAuth)
	api.PUT("/shops/:id", shopHandler.Update, authMw.RequireAuth)
	api.DELETE("/shops/:id", shopHandler.Delete, authMw.RequireAuth)
	api.POST("/shops/:id/listings", shopHandler.AddListing, authMw.RequireAuth)
	api.PUT("/shops/:id/listings/:listingId", shopHandler.UpdateListing, authMw.RequireAuth)
	api.DELETE("/shops/:id/listings/:listingId", shopHandler.RemoveListing, authMw.RequireAuth)
	api.GET("/me/shops", shopHandler.ListMine, authMw.RequireAuth)

	api.GET("/requests", requestHandler.List)
	api.GET("/requests/:id", requestHandler.Get)
	api.POST("/requests", requestHandler.Create, authMw.RequireAuth)
	api.PUT("/requests/:id", requestHandler.Update, authMw.RequireAuth)
	api.DELETE("/requests/:id", requestHandler.Delete, authMw.RequireAuth)
	api.POST("/requests/:id/cancel", requestHandler.Cancel, authMw.RequireAuth)
	api.POST("/requests/:id/complete", requestHandler.Complete, authMw.RequireAuth)
	api.GET("/me/requests", requestHandler.ListMine, authMw.RequireAuth)

	api.GET("/requests/:id/offers", offerHandler.ListByRequest)
	api.POST("/requests/:id/offers", offerHandler.Create, authMw.RequireAuth)
	api.POST("/offers/:id/accept", offerHandler.Accept, authMw.RequireAuth)
	api.POST("/offers/:id/reject", offerHandler.Reject, authMw.RequireAuth)
	api.POST("/offers/:id/withdraw", offerHandler.Withdraw, authMw.RequireAuth)
	api.GET("/me/offers", offerHandler.ListMine, authMw.RequireAuth)

	api.GET("/negotiations/:id", negHandler.Get, authMw.RequireAuth)
	api.GET("/negotiations/:id/messages", negHandler.ListMessages, authMw.RequireAuth)
	api.POST("/negotiations/:id/messages", negHandler.PostMessage, authMw.RequireAuth)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
