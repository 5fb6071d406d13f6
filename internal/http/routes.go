package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	middleware "task-marketplace.com/task-marketplace/internal/http/middlewares"
)

const webhookPath = "/webhook/payment"

type Options struct {
	RateLimitPerMinute int
	CORSOrigins        []string
	// UploadsDir is served under UploadsPrefix when evidence is kept on
	// local disk. Leave empty for object storage.
	UploadsDir    string
	UploadsPrefix string
	Logger        *slog.Logger
}

func Register(e *echo.Echo, h *Handler, opts Options) {
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(opts.Logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(middleware.CORS(opts.CORSOrigins))
	e.Use(middleware.RateLimiter(
		opts.RateLimitPerMinute,
		time.Minute,
		middleware.PathSkipper(webhookPath, "/metrics", "/healthz"),
	))

	e.GET("/healthz", h.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/tasks", h.CreateTask)
	e.GET("/tasks/:id", h.GetTask)

	e.POST("/requests", h.CreateRequest)
	e.GET("/requests", h.ListRequests)
	e.GET("/requests/unseen", h.CountUnseen)
	e.GET("/requests/:taskTakenId", h.GetRequest)
	e.PUT("/requests/:taskTakenId", h.UpdateRequest)
	e.DELETE("/requests/:taskTakenId", h.DeleteRequest)
	e.PUT("/requests/:taskTakenId/visit", h.MarkVisited)

	e.GET("/dispute", h.ListDisputes)
	e.PUT("/dispute/:id", h.ResolveDispute)
	e.DELETE("/dispute/:id", h.ArchiveDispute)

	e.GET("/balance/:role/:id", h.Balance)
	e.GET("/payment/history/:role/:id", h.PaymentHistory)
	e.POST("/payment/deposit", h.Deposit)
	e.POST("/payment/withdraw/:id", h.Withdraw)
	e.POST("/payment/cancel/:transactionId", h.CancelDeposit)
	e.POST(webhookPath, h.PaymentWebhook)

	if opts.UploadsDir != "" && opts.UploadsPrefix != "" {
		e.Static(opts.UploadsPrefix, opts.UploadsDir)
	}
}
