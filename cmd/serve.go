package cmd

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-user/app/controller"
	usergrpc "github.com/vibast-solutions/ms-go-user/app/grpc"
	"github.com/vibast-solutions/ms-go-user/app/middleware"
	"github.com/vibast-solutions/ms-go-user/app/registry"
	"github.com/vibast-solutions/ms-go-user/app/service"
	"github.com/vibast-solutions/ms-go-user/config"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the user service and register it with Consul.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	registrar, err := registry.New(cfg.Registry, cfg.HTTP.Port)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create service registrar")
	}

	userAuthService := newUserAuthService(db, cfg)
	e := newHTTPServer(db, cfg, userAuthService)
	grpcServer, healthServer := newGRPCServer(userAuthService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return err
		}
		logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := registrar.Deregister(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("Failed to deregister service")
		}

		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return e.Shutdown(shutdownCtx)
	})

	if err = registrar.Register(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to register service")
	}

	if err = g.Wait(); err != nil {
		logrus.WithError(err).Fatal("Server stopped with error")
	}
	logrus.Info("Server stopped")
}

func newHTTPServer(db *sql.DB, cfg *config.Config, userAuthService service.UserAuthService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORS())

	userController := controller.NewUserAuthController(userAuthService, cfg)
	authMiddleware := middleware.NewAuthMiddleware(userAuthService)
	healthController := controller.NewHealthController(db)

	e.GET("/health", healthController.Health)
	controller.RegisterRoutes(e.Group(""), userController, authMiddleware)
	controller.RegisterRoutes(e.Group("/api/user"), userController, authMiddleware)

	return e
}

func newGRPCServer(userAuthService service.UserAuthService) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(
		usergrpc.BearerUnaryInterceptor(userAuthService, usergrpc.UserService_GetProfile_FullMethodName),
	))
	usergrpc.RegisterUserServiceServer(grpcServer, usergrpc.NewUserServer(userAuthService))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(usergrpc.UserServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer, healthServer
}
