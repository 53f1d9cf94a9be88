package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rehtse11/Essence-Luxe/internal/cart"
	"github.com/Rehtse11/Essence-Luxe/internal/checkout"
	"github.com/Rehtse11/Essence-Luxe/internal/config"
	"github.com/Rehtse11/Essence-Luxe/internal/handlers"
	"github.com/Rehtse11/Essence-Luxe/internal/mail"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

func main() {
	// Configure slog as early as possible in main.
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	// Using TextHandler for console readability; for production JSONHandler might be preferred.
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}

	if err := db.Migrate(cfg.MigrationsDir); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		slog.Error("Failed to create uploads directory", "dir", cfg.UploadsDir, "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure // Configurable for production
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Services
	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	} else {
		slog.Warn("SMTP_HOST not set; emails will be logged instead of sent")
		mailer = mail.LogMailer{}
	}

	carts := cart.NewManager(db)
	checkoutSvc := checkout.NewService(db, mailer, cfg.SiteName)

	// 6. Handlers
	shopHandler := &handlers.ShopHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	cartHandler := &handlers.CartHandler{
		Carts:        carts,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	checkoutHandler := &handlers.CheckoutHandler{
		Store:        db,
		Carts:        carts,
		Checkout:     checkoutSvc,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	authHandler := &handlers.AuthHandler{
		Store:        db,
		Carts:        carts,
		Templates:    templates,
		SessionStore: sessionStore,
		Mailer:       mailer,
		SiteName:     cfg.SiteName,
		SiteURL:      cfg.SiteURL,
	}
	accountHandler := &handlers.AccountHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	contactHandler := &handlers.ContactHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
		Mailer:       mailer,
		SiteName:     cfg.SiteName,
		AdminEmail:   cfg.AdminEmail,
	}
	adminHandler := &handlers.AdminHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
		UploadsDir:   cfg.UploadsDir,
	}

	mux := http.NewServeMux()

	// Static Files
	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Rate limiters: tighter on auth, looser on contact.
	authLimiter := handlers.NewRateLimiter(10 * time.Second)
	contactLimiter := handlers.NewRateLimiter(1 * time.Minute)

	// Storefront
	mux.HandleFunc("/", shopHandler.Home)
	mux.HandleFunc("/shop", shopHandler.List)
	mux.HandleFunc("/product/{slug}", shopHandler.Detail)
	mux.HandleFunc("/about", shopHandler.About)

	// Cart
	mux.HandleFunc("POST /add-to-cart", cartHandler.Add)
	mux.HandleFunc("/cart", cartHandler.View) // GET renders, POST mutates

	// Checkout (login required)
	mux.HandleFunc("GET /checkout", handlers.RequireLogin(sessionStore, checkoutHandler.Form))
	mux.HandleFunc("POST /checkout", handlers.RequireLogin(sessionStore, checkoutHandler.Submit))

	// Auth
	mux.HandleFunc("GET /login", authHandler.LoginGet)
	mux.HandleFunc("POST /login", authLimiter.Middleware(authHandler.LoginPost))
	mux.HandleFunc("GET /register", authHandler.RegisterGet)
	mux.HandleFunc("POST /register", authLimiter.Middleware(authHandler.RegisterPost))
	mux.HandleFunc("POST /logout", authHandler.Logout)

	// Account (login required)
	mux.HandleFunc("GET /account", handlers.RequireLogin(sessionStore, accountHandler.Show))
	mux.HandleFunc("POST /account/profile", handlers.RequireLogin(sessionStore, accountHandler.UpdateProfile))
	mux.HandleFunc("POST /account/password", handlers.RequireLogin(sessionStore, accountHandler.ChangePassword))

	// Contact
	mux.HandleFunc("GET /contact", contactHandler.Form)
	mux.HandleFunc("POST /contact", contactLimiter.Middleware(contactHandler.Submit))

	// Admin
	mux.HandleFunc("/admin", handlers.RequireAdmin(sessionStore, adminHandler.Dashboard))
	mux.HandleFunc("/admin/orders", handlers.RequireAdmin(sessionStore, adminHandler.ListOrders))
	mux.HandleFunc("POST /admin/orders/update", handlers.RequireAdmin(sessionStore, adminHandler.UpdateOrderStatus))
	mux.HandleFunc("/admin/products", handlers.RequireAdmin(sessionStore, adminHandler.ListProducts))
	mux.HandleFunc("/admin/products/new", handlers.RequireAdmin(sessionStore, adminHandler.ProductForm))
	mux.HandleFunc("/admin/products/edit", handlers.RequireAdmin(sessionStore, adminHandler.ProductForm))
	mux.HandleFunc("POST /admin/products/save", handlers.RequireAdmin(sessionStore, adminHandler.SaveProduct))
	mux.HandleFunc("POST /admin/products/deactivate", handlers.RequireAdmin(sessionStore, adminHandler.DeactivateProduct))

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure), // Configurable for production
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> Remember-me -> CSRF -> Mux
	remember := handlers.RememberMiddleware(sessionStore, db, carts)
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			remember(CSRF(mux)),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
