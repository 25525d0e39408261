package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handler holds shared dependencies (db pool, logger, token issuer) for all route handlers.
type Handler struct {
	db     database
	log    *logrus.Logger
	tokens *tokenIssuer
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// database is the part of *pgxpool.Pool the handlers use.
type database interface {
	querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx so helpers run inside or
// outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows is wrapped, so callers can still match it with errors.Is.
func queryOne[T any](q querier, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("query: %w", err)
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return result, fmt.Errorf("scan: %w", err)
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
// An empty result is a non-nil empty slice so JSON renders [] rather than null.
func queryMany[T any](q querier, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// fail logs err with request fields and writes message as the API error.
// The underlying error is never sent to the client.
func (h *Handler) fail(c *gin.Context, status int, message string, err error) {
	h.log.WithFields(logrus.Fields{
		"route":  c.FullPath(),
		"status": status,
	}).WithError(err).Error(message)
	apiError(c, status, message)
}

// currentUser returns the authenticated user id set by authMiddleware.
func currentUser(c *gin.Context) uuid.UUID {
	return c.MustGet("user_id").(uuid.UUID)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// managed Postgres providers close idle connections after a few minutes.
func getDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	config.MaxConnIdleTime = 4 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// newRouter builds the gin engine with logging, metrics and all routes.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.log), metricsMiddleware())
	_ = router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/calorie-log/daily", h.getDailySummary)
	api.PUT("/calorie-log/daily/weight", h.saveWeight)
	api.GET("/calorie-log/weights", h.getWeightHistory)
	api.GET("/calorie-log/week", h.getWeekSummary)
	api.POST("/calorie-log/entries", h.createFoodEntry)
	api.PUT("/calorie-log/entries/:id", h.updateFoodEntry)
	api.DELETE("/calorie-log/entries/:id", h.deleteFoodEntry)
	api.GET("/calorie-log/quick-copy/candidates", h.getCopyCandidates)
	api.POST("/calorie-log/quick-copy", h.quickCopy)
	api.GET("/weekly-goal", h.getWeeklyGoal)
	api.PUT("/weekly-goal", h.putWeeklyGoal)
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/group/members", h.getGroupMembers)
	api.GET("/group/day", h.getGroupDay)
	api.GET("/reactions", h.getReactions)
	api.POST("/reactions/toggle", h.toggleReaction)
}
