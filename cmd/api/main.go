package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ordersvc/order-dispatch/internal/aws"
	"github.com/ordersvc/order-dispatch/internal/dispatch"
	"github.com/ordersvc/order-dispatch/internal/handlers"
)

const defaultDeliveryDelay = 10 * time.Second

func setupRouter(cfg handlers.HandlerConfig) (*gin.Engine, *dispatch.Coordinator) {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	coord := handlers.RegisterRoutes(r, cfg)

	return r, coord
}

func deliveryDelayFromEnv(logger *log.Entry) time.Duration {
	raw := os.Getenv("ORDER_DELAY_SECONDS")
	if raw == "" {
		return defaultDeliveryDelay
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		logger.WithField("value", raw).Warn("invalid ORDER_DELAY_SECONDS, using default")
		return defaultDeliveryDelay
	}
	return time.Duration(secs) * time.Second
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	logger := log.WithField("component", "api")

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("failed to init aws clients")
	}

	policy, err := dispatch.ParsePolicy(os.Getenv("DISPATCH_POLICY"))
	if err != nil {
		logger.WithError(err).Fatal("invalid DISPATCH_POLICY")
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		SQSClient:        clients.SQS,
		CloudWatchClient: clients.CloudWatch,
		UsersTable:       os.Getenv("USERS_TABLE"),
		QueueURL:         os.Getenv("ORDERS_QUEUE_URL"),
		DeliveryDelay:    deliveryDelayFromEnv(logger),
		Policy:           policy,
		Retry:            aws.DefaultRetryConfig(),
		Logger:           logger,
	}

	r, coord := setupRouter(cfg)
	defer coord.Drain()

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.WithField("addr", addr).Info("running local server")
		if err := r.Run(addr); err != nil {
			logger.WithError(err).Fatal("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
