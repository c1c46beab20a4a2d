package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	checkoutpb "github.com/Leganyst/booking-engine/internal/api/checkout/v1"
	"github.com/Leganyst/booking-engine/internal/consumer"
	"github.com/Leganyst/booking-engine/internal/mq"
	"github.com/Leganyst/booking-engine/internal/service"
	"github.com/Leganyst/booking-engine/internal/sweeper"
	"github.com/Leganyst/booking-engine/internal/telemetry"
	"github.com/Leganyst/booking-engine/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC API, payment webhooks, the sweeper and the payment consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := openApp(appOptions{migrate: true, broker: true})
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	// 1. Трейсинг.
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, Version, a.cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.WithError(err).Warn("tracing shutdown")
		}
	}()

	// 2. gRPC сервер.
	lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", a.cfg.GRPCAddr, err)
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	checkoutpb.RegisterCheckoutServiceServer(grpcServer, service.NewCheckoutService(a.orch, log))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(checkoutpb.CheckoutService_ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	// 3. HTTP: вебхуки платёжки и healthz.
	hooks := []webhook.Option{webhook.WithCallbackToken(a.cfg.CallbackToken)}
	if a.omise != nil {
		hooks = append(hooks, webhook.WithOmise(a.omise))
	}
	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           webhook.New(a.orch, log, hooks...).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 4. Консьюмер исходов оплаты; без RABBIT_URL исходы приходят только через gRPC и вебхуки.
	var (
		payments   *consumer.Payments
		deliveries <-chan amqp.Delivery
	)
	if a.cfg.RabbitURL != "" {
		c, err := mq.NewConsumer(mq.ConsumerConfig{
			URL:      a.cfg.RabbitURL,
			Exchange: a.cfg.PaymentExchange,
			Queue:    a.cfg.PaymentQueue,
			Keys:     consumer.Keys,
			Tag:      serviceName,
		})
		if err != nil {
			return err
		}
		defer c.Close()
		if deliveries, err = c.Deliveries(ctx); err != nil {
			return err
		}
		payments = consumer.NewPayments(a.orch, log.WithField("component", "payment-consumer"))
	} else {
		log.Info("RABBIT_URL is empty, payment consumer disabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", a.cfg.GRPCAddr).Info("grpc server listening")
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", a.cfg.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	// 5. Фоновые задачи.
	sw := &sweeper.Sweeper{
		Target:    a.orch,
		Interval:  a.cfg.SweepInterval,
		Retention: a.cfg.HoldRetention,
		Log:       log.WithField("component", "sweeper"),
	}
	g.Go(func() error { return sw.Run(gctx) })

	if payments != nil {
		g.Go(func() error { return payments.Run(gctx, deliveries) })
	}

	// 6. Остановка по сигналу или по первой ошибке.
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		healthServer.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(sctx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}
