package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/auth"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/config"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/manager"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/membership"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/paymentmethod"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/plan"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/user"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
}

// Handlers groups every resource handler mounted under /api.
type Handlers struct {
	Managers       *manager.Handler
	Users          *user.Handler
	Memberships    *membership.Handler
	Plans          *plan.Handler
	PaymentMethods *paymentmethod.Handler
	States         *state.Handler
}

// NewHandlers builds the repositories, services and handlers on top of a
// single database handle. sync is shared with the daily refresher.
func NewHandlers(database *sqlx.DB, cfg *config.Config, sync *membership.Synchronizer) Handlers {
	membershipRepo := membership.NewRepository(database)
	lifecycle := membership.NewService(membershipRepo, sync, cfg.ReceiptPrefix)
	users := user.NewService(database, user.NewRepository(database), membershipRepo, lifecycle, sync)

	return Handlers{
		Managers:       manager.NewHandler(manager.NewService(manager.NewRepository(database), cfg.JWTSecret, cfg.JWTTTL)),
		Users:          user.NewHandler(users),
		Memberships:    membership.NewHandler(lifecycle),
		Plans:          plan.NewHandler(plan.NewService(plan.NewRepository(database))),
		PaymentMethods: paymentmethod.NewHandler(paymentmethod.NewService(paymentmethod.NewRepository(database))),
		States:         state.NewHandler(state.NewService(state.NewRepository(database))),
	}
}

func New(cfg *config.Config, h Handlers) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	limiter := NewRateLimiter(cfg.LoginRateRPS, cfg.LoginRateBurst, 3*time.Minute)
	requireManager := auth.AuthMiddleware(cfg.JWTSecret)

	router.GET("/metrics", Metrics())

	api := router.Group("/api")
	api.GET("/health-check", HealthCheck)

	managers := api.Group("/managers")
	{
		managers.GET("", h.Managers.List)
		managers.GET("/:id", h.Managers.Get)
		managers.GET("/:id/memberships", h.Memberships.ListBy("manager", func(f *membership.ListFilter, id int) { f.ManagerID = id }))
		managers.POST("", h.Managers.Create)
		managers.POST("/login", RateLimitMiddleware(limiter), h.Managers.Login)
		managers.PUT("/:id", requireManager, h.Managers.Update)
		managers.DELETE("/:id", requireManager, h.Managers.Delete)
	}

	users := api.Group("/users")
	{
		users.GET("", h.Users.List)
		users.GET("/with-memberships/active", h.Users.ListWithMemberships)
		users.GET("/:id", h.Users.Get)
		users.GET("/:id/with-membership", h.Users.GetWithMembership)
		users.GET("/:id/memberships", h.Users.Memberships)
		users.POST("", h.Users.Create)
		users.POST("/with-membership", requireManager, h.Users.CreateWithMembership)
		users.PUT("/:id", h.Users.Update)
		users.PUT("/:id/with-membership", requireManager, h.Users.UpdateWithMembership)
		users.DELETE("/:id", h.Users.Delete)
	}

	memberships := api.Group("/memberships")
	{
		memberships.GET("", h.Memberships.List)
		memberships.GET("/active", h.Memberships.ListActive)
		memberships.GET("/expiring", h.Memberships.ListInState(state.PorVencer))
		memberships.GET("/expired", h.Memberships.ListInState(state.Vencido))
		memberships.GET("/export", h.Memberships.Export)
		memberships.GET("/:id", h.Memberships.Get)
		memberships.POST("", requireManager, h.Memberships.Create)
		memberships.POST("/update-states", requireManager, h.Memberships.UpdateStates)
		memberships.PUT("/:id", requireManager, h.Memberships.Update)
		memberships.DELETE("/:id", requireManager, h.Memberships.Delete)
	}

	plans := api.Group("/plans")
	{
		plans.GET("", h.Plans.List)
		plans.GET("/:id", h.Plans.Get)
		plans.GET("/:id/memberships", h.Memberships.ListBy("plan", func(f *membership.ListFilter, id int) { f.PlanID = id }))
		plans.POST("", h.Plans.Create)
		plans.PUT("/:id", h.Plans.Update)
		plans.DELETE("/:id", h.Plans.Delete)
	}

	methods := api.Group("/payment-methods")
	{
		methods.GET("", h.PaymentMethods.List)
		methods.GET("/:id", h.PaymentMethods.Get)
		methods.GET("/:id/memberships", h.Memberships.ListBy("payment method", func(f *membership.ListFilter, id int) { f.MethodID = id }))
		methods.POST("", h.PaymentMethods.Create)
		methods.PUT("/:id", h.PaymentMethods.Update)
		methods.DELETE("/:id", h.PaymentMethods.Delete)
	}

	states := api.Group("/states")
	{
		states.GET("", h.States.List)
		states.GET("/:id", h.States.Get)
		states.POST("", h.States.Create)
		states.PUT("/:id", h.States.Update)
		states.DELETE("/:id", h.States.Delete)
	}

	return &Server{
		router:  router,
		limiter: limiter,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Close()
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
