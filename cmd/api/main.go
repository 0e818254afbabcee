package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/xenith-eng/xenith-backend/internal/metrics"
	"github.com/xenith-eng/xenith-backend/internal/middleware"
	"github.com/xenith-eng/xenith-backend/internal/modules/auth"
	"github.com/xenith-eng/xenith-backend/internal/modules/catalog"
	"github.com/xenith-eng/xenith-backend/internal/modules/clients"
	"github.com/xenith-eng/xenith-backend/internal/modules/groups"
	"github.com/xenith-eng/xenith-backend/internal/modules/inventory"
	"github.com/xenith-eng/xenith-backend/internal/modules/projects"
	"github.com/xenith-eng/xenith-backend/internal/modules/quotes"
	"github.com/xenith-eng/xenith-backend/internal/modules/rfid"
	"github.com/xenith-eng/xenith-backend/internal/modules/suppliers"
	"github.com/xenith-eng/xenith-backend/internal/modules/tasks"
	"github.com/xenith-eng/xenith-backend/internal/modules/user"
	"github.com/xenith-eng/xenith-backend/internal/platform/migrations"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using process environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		logrus.WithError(err).Fatal("opening database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("pinging database")
	}
	if err := migrations.Apply(context.Background(), db); err != nil {
		logrus.WithError(err).Fatal("applying migrations")
	}
	logrus.Info("database ready")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.Metrics)

	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)

	// User registration requires an authenticated admin, so a fresh database
	// gets its first admin seeded from the environment.
	if adminEmail := os.Getenv("ADMIN_EMAIL"); adminEmail != "" {
		seeded, err := userService.SeedAdmin(context.Background(), adminEmail, os.Getenv("ADMIN_PASSWORD"))
		if err != nil {
			logrus.WithError(err).Fatal("seeding admin user")
		}
		if seeded != nil {
			logrus.WithField("email", adminEmail).Info("seeded initial admin user")
		}
	}

	authService := auth.NewService(userRepo, jwtSecret)
	auth.NewHandler(authService).RegisterRoutes(router)

	authed := func(module string, register func(chi.Router)) {
		router.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(authService))
			r.Use(auth.RequireModule(authService, module))
			register(r)
		})
	}

	authed(auth.ModuleUsuarios, user.NewHandler(userService).RegisterRoutes)

	// ── Catalog & Inventory ─────────────────────────────────
	catalogService := catalog.NewService(catalog.NewPostgresRepository(db))
	authed(auth.ModuleCatalogo, catalog.NewHandler(catalogService).RegisterRoutes)

	inventoryService := inventory.NewService(
		inventory.NewItemPostgresRepository(db),
		inventory.NewMovementPostgresRepository(db),
		inventory.NewSummaryPostgresRepository(db),
	)
	authed(auth.ModuleInventario, inventory.NewHandler(inventoryService).RegisterRoutes)

	rfidService := rfid.NewService(rfid.NewPostgresRepository(db))
	authed(auth.ModuleRfid, rfid.NewHandler(rfidService).RegisterRoutes)

	groupService := groups.NewService(groups.NewPostgresRepository(db))
	authed(auth.ModuleGrupos, groups.NewHandler(groupService).RegisterRoutes)

	// ── Business surface ────────────────────────────────────
	clientService := clients.NewService(clients.NewPostgresRepository(db))
	authed(auth.ModuleClientes, clients.NewHandler(clientService).RegisterRoutes)

	projectService := projects.NewService(projects.NewPostgresRepository(db))
	authed(auth.ModuleProyectos, projects.NewHandler(projectService).RegisterRoutes)

	supplierService := suppliers.NewService(suppliers.NewPostgresRepository(db))
	authed(auth.ModuleProveedores, suppliers.NewHandler(supplierService).RegisterRoutes)

	taskService := tasks.NewService(tasks.NewPostgresRepository(db))
	authed(auth.ModuleTareas, tasks.NewHandler(taskService).RegisterRoutes)

	quoteService := quotes.NewService(quotes.NewPostgresRepository(db))
	authed(auth.ModuleCotizaciones, quotes.NewHandler(quoteService).RegisterRoutes)

	// ── Start server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logrus.WithField("port", port).Info("xenith api listening")
	logrus.Fatal(http.ListenAndServe(":"+port, router))
}
