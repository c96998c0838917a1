package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/layer-3/warden/adapters/events"
	"github.com/layer-3/warden/adapters/identity"
	"github.com/layer-3/warden/adapters/tokenizer"
	"github.com/layer-3/warden/internal/config"
	"github.com/layer-3/warden/internal/logger"
	"github.com/layer-3/warden/ports"
	"github.com/layer-3/warden/service"
	transporthttp "github.com/layer-3/warden/transport/http"
)

const desc = `
Issue and verify short-lived bearer tokens

Clients exchange a client_id/client_secret pair on POST /login for an HS256 token
valid for five minutes, and present it as "Authorization: Bearer <token>" on
protected routes. Tokens are verified without server-side session state.
`

func main() {
	l := logger.New(os.Stderr)

	opt := config.Default()
	opt.ApplyEnv(os.LookupEnv)

	cmd := &cobra.Command{
		Use:          "warden",
		Short:        "Issue and verify short-lived bearer tokens",
		Long:         desc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opt, logger.WithLevel(l, opt.LogLevel))
		},
	}
	opt.AddFlags(cmd.Flags())

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		level.Error(l).Log("err", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, opt *config.Config, l log.Logger) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	secret, err := opt.LoadSecret()
	if err != nil {
		return err
	}
	keys, err := tokenizer.NewKeys(secret)
	if err != nil {
		return err
	}

	identities, err := loadIdentities(opt, l)
	if err != nil {
		return err
	}

	eventPub, closePub, err := newEventPublisher(ctx, opt, l)
	if err != nil {
		return err
	}
	defer closePub()

	if opt.ParsedStage() == config.StageProd {
		gin.SetMode(gin.ReleaseMode)
	}

	authService := service.NewAuthService(tokenizer.NewJWTTokenizer(keys), identities, eventPub, l)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := transporthttp.SetupRouter(authService, transporthttp.Options{
		Logger:    l,
		Registry:  reg,
		StaticDir: opt.StaticDir,
	})

	listener, err := net.Listen("tcp", opt.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opt.Listen, err)
	}

	var g run.Group
	{
		s := &http.Server{
			Handler:           transporthttp.WithCORS(router, opt.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Add(func() error {
			if err := s.Serve(listener); err != nil && err != http.ErrServerClosed {
				level.Error(l).Log("msg", "HTTP server exited", "err", err)
				return err
			}
			return nil
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Shutdown(shutdownCtx)
			listener.Close()
		})
	}

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	level.Info(l).Log("msg", "starting warden", "listen", listener.Addr().String(), "stage", opt.ParsedStage())

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		level.Info(l).Log("msg", "shutting down", "signal", sigErr.Signal)
		return nil
	}
	return err
}

func loadIdentities(opt *config.Config, l log.Logger) (ports.IdentitySource, error) {
	if opt.IdentitiesFile == "" {
		level.Warn(l).Log("msg", "no identities file configured, every login will be rejected")
		return identity.NewStaticSource()
	}

	src, err := identity.LoadFile(opt.IdentitiesFile)
	if err != nil {
		return nil, err
	}
	level.Info(l).Log("msg", "loaded identities", "count", src.Len())
	return src, nil
}

func newEventPublisher(ctx context.Context, opt *config.Config, l log.Logger) (ports.EventPublisher, func(), error) {
	if opt.RedisURL == "" {
		return events.NopPublisher{}, func() {}, nil
	}

	redisOpts, err := redis.ParseURL(opt.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("failed to reach Redis: %w", err)
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		events.NewLoggerAdapter(l),
	)
	if err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("failed to create Redis publisher: %w", err)
	}

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			level.Warn(l).Log("msg", "failed to close publisher", "err", err)
		}
		redisClient.Close()
	}

	return events.NewWatermillPublisher(publisher, opt.EventTopic), closeFn, nil
}
