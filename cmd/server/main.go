package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mkarpov/storefront/internal/app"
	"github.com/mkarpov/storefront/internal/app/handlers"
	"github.com/mkarpov/storefront/internal/config"
	"github.com/mkarpov/storefront/internal/jwt/jwtmiddleware"
	"github.com/mkarpov/storefront/internal/lib/logger"
	"github.com/mkarpov/storefront/internal/lib/logger/handlers/urllog"
	"github.com/mkarpov/storefront/internal/service"
	"github.com/mkarpov/storefront/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	// API обслуживает фронтенд с другого origin
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, cartRepo, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, cartRepo, productRepo, orderRepo)
	userService := service.NewUserService(application.Logger, userRepo, orderRepo)

	// публичные эндпоинты
	router.Post("/api/register", handlers.RegisterHandler(application.Logger, authService))
	router.Post("/api/login", handlers.LoginHandler(application.Logger, authService))
	router.Post("/api/refresh-token", handlers.RefreshTokenHandler(application.Logger, authService))
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))

	// эндпоинты под аутентификацией
	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)

		r.Get("/api/user", handlers.MeHandler(application.Logger, userService))
		r.Post("/api/cart", handlers.AddToCartHandler(application.Logger, cartService))
		r.Get("/api/cart", handlers.GetCartHandler(application.Logger, cartService))
		r.Delete("/api/cart/{id}", handlers.RemoveFromCartHandler(application.Logger, cartService))
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))

		// админские эндпоинты
		r.Group(func(ar chi.Router) {
			ar.Use(jwtmiddleware.AdminOnly)

			ar.Get("/api/users", handlers.ListUsersHandler(application.Logger, userService))
			ar.Get("/api/user/{id}", handlers.GetUserHandler(application.Logger, userService))
			ar.Patch("/api/user/{id}/admin", handlers.SetAdminHandler(application.Logger, userService))
			ar.Get("/api/dashboard", handlers.DashboardHandler(application.Logger))
			ar.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
			ar.Get("/api/order/{orderId}", handlers.GetOrderHandler(application.Logger, orderService))
			ar.Get("/api/user/{userId}/orders", handlers.ListUserOrdersHandler(application.Logger, orderService))
			ar.Put("/api/order/{orderId}", handlers.UpdateOrderHandler(application.Logger, orderService))
			ar.Delete("/api/order/{orderId}", handlers.DeleteOrderHandler(application.Logger, orderService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
