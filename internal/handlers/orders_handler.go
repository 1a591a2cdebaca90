package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ordersvc/order-dispatch/internal/aws"
	"github.com/ordersvc/order-dispatch/internal/dispatch"
	"github.com/ordersvc/order-dispatch/internal/metrics"
	"github.com/ordersvc/order-dispatch/internal/users"
	"github.com/ordersvc/order-dispatch/internal/validation"
)

// HandlerConfig groups dependencies for the HTTP surface.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	UsersTable       string
	QueueURL         string
	DeliveryDelay    time.Duration
	Policy           dispatch.Policy
	Retry            aws.RetryConfig
	Logger           *log.Entry
}

// RegisterRoutes wires the user CRUD and order-submission routes. It returns
// the coordinator so the caller can drain detached publishes on shutdown.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) *dispatch.Coordinator {
	v := validation.New()
	store := users.NewStore(cfg.DynamoDBClient, cfg.UsersTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL, cfg.DeliveryDelay, cfg.Retry)
	reporter := metrics.NewReporter(cfg.CloudWatchClient, cfg.QueueURL)
	coord := dispatch.NewCoordinator(store, publisher, cfg.Policy, reporter, cfg.Logger)

	registerUserRoutes(r, store)

	r.POST("/users/:id/create_order", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		correlationID := c.GetHeader("X-Request-Id")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		order := dispatch.Order{Product: req.Product, Quantity: *req.Quantity}
		res, err := coord.Dispatch(ctx, c.Param("id"), order, correlationID)
		if err != nil {
			if errors.Is(err, dispatch.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.WithFields(log.Fields{
					"user_id":        c.Param("id"),
					"correlation_id": correlationID,
					"error":          err,
				}).Error("order dispatch failed")
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating order"})
			return
		}

		body := gin.H{"message": "Order created successfully"}
		if res.Confirmed {
			body["messageId"] = res.MessageID
		}
		c.JSON(http.StatusOK, body)
	})

	return coord
}
