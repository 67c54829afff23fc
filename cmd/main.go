package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"

	"teamshare/internal/admins"
	"teamshare/internal/config"
	admindashboard "teamshare/internal/http_server/handlers/admin/dashboard"
	"teamshare/internal/http_server/handlers/admin/download"
	adminlogin "teamshare/internal/http_server/handlers/admin/login"
	adminmembers "teamshare/internal/http_server/handlers/admin/members"
	"teamshare/internal/http_server/handlers/admin/profile"
	"teamshare/internal/http_server/handlers/admin/reply"
	"teamshare/internal/http_server/handlers/dashboard"
	"teamshare/internal/http_server/handlers/login"
	"teamshare/internal/http_server/handlers/logout"
	"teamshare/internal/http_server/handlers/register"
	resendEmail "teamshare/internal/http_server/handlers/resend_verification_email"
	"teamshare/internal/http_server/handlers/upload"
	"teamshare/internal/http_server/handlers/verify"
	"teamshare/internal/http_server/handlers/ws"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/lib/verification"
	"teamshare/internal/mailer"
	"teamshare/internal/members"
	rateLimit "teamshare/internal/middleware/ratelimit"
	"teamshare/internal/middleware/sessionauth"
	"teamshare/internal/notify"
	"teamshare/internal/sessions"
	"teamshare/internal/storage/jsonfile"
	"teamshare/internal/storage/sqlite"
	"teamshare/internal/uploads"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg, err := config.Load("./config/config.yaml")
	if err != nil {
		// Most commonly the required SMTP secrets are missing; refuse to
		// start rather than run a service that cannot verify anyone.
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	log.Info("starting teamshare", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutdown signal received")
		cancel()
	}()

	store, err := jsonfile.New(cfg.Data.MembersFile, cfg.Data.AdminsFile)
	if err != nil {
		log.Error("failed to open credential store", sl.Err(err))
		os.Exit(1)
	}

	uploadDB, err := sqlite.New(ctx, cfg.Data.UploadsDB)
	if err != nil {
		log.Error("failed to open uploads db", sl.Err(err))
		os.Exit(1)
	}
	defer uploadDB.Close()

	hub := notify.NewHub(log)
	go hub.Run(ctx)

	smtp := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	tokens := verification.New(cfg.Tokens.VerificationTokenTTL)

	memberSvc := members.New(log, store, smtp, tokens, cfg.BaseURL)
	adminSvc := admins.New(log, store)

	uploadSvc, err := uploads.New(log, cfg.Data.UploadsDir, uploadDB, hub)
	if err != nil {
		log.Error("failed to init upload pipeline", sl.Err(err))
		os.Exit(1)
	}

	if err := adminSvc.Seed(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Error("failed to seed admin", sl.Err(err))
		os.Exit(1)
	}

	sessionMgr := sessions.NewManager(cfg.Sessions.IdleTimeout)
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sessionMgr.Sweep()
			}
		}
	}()

	router := setupRouter(log, memberSvc, adminSvc, uploadSvc, hub, sessionMgr)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", sl.Err(err))
	} else {
		log.Info("server stopped gracefully")
	}
}

func setupRouter(
	log *slog.Logger,
	memberSvc *members.Service,
	adminSvc *admins.Service,
	uploadSvc *uploads.Service,
	hub *notify.Hub,
	sessionMgr *sessions.Manager,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/member/register", http.StatusFound)
	})

	r.Route("/member", func(r chi.Router) {
		r.With(rateLimit.Register()).Post("/register",
			register.New(log, validate, memberSvc),
		)
		r.With(rateLimit.Verify()).Get("/verify",
			verify.New(log, memberSvc),
		)
		r.With(rateLimit.ResendVerificationEmail()).Post("/resend",
			resendEmail.New(log, validate, memberSvc),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, memberSvc, sessionMgr),
		)
		r.Get("/logout", logout.New(sessionMgr))

		r.Group(func(r chi.Router) {
			r.Use(sessionauth.Require(sessionMgr, sessions.RoleMember))

			r.Get("/dashboard", dashboard.New(log, hub, uploadSvc))
			r.With(rateLimit.Upload()).Post("/upload",
				upload.New(log, uploadSvc),
			)
		})
	})

	r.With(sessionauth.RequireAny(sessionMgr, sessions.RoleMember, sessions.RoleAdmin)).
		Get("/ws", ws.New(log, hub))

	r.Route("/admin", func(r chi.Router) {
		r.With(rateLimit.Login()).Post("/login",
			adminlogin.New(log, validate, adminSvc, sessionMgr),
		)
		r.Get("/logout", logout.New(sessionMgr))

		r.Group(func(r chi.Router) {
			r.Use(sessionauth.Require(sessionMgr, sessions.RoleAdmin))

			r.Get("/dashboard", admindashboard.New(log, memberSvc, uploadSvc))
			r.Post("/members/delete", adminmembers.NewDelete(log, validate, memberSvc, sessionMgr))
			r.Post("/profile", profile.New(log, adminSvc, sessionMgr))
			r.Post("/reply", reply.New(log, validate, uploadSvc))
			r.Get("/download/{filename}", download.New(log, uploadSvc))
		})
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
