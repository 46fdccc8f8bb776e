package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"SharedBoard/internal/coordinator"
	bnet "SharedBoard/internal/net"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the room coordinator",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		port := cfg.Running.Port
		if servePort > 0 {
			port = servePort
		}
		opt := coordinator.Options{
			Logger:       logger,
			CanvasWidth:  cfg.Canvas.Width,
			CanvasHeight: cfg.Canvas.Height,
		}

		if cfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
			defer rdb.Close()
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
			}
			opt.Presence = coordinator.NewRedisPresence(rdb, cfg.Redis.PresenceTTL)
			// pongs renew presence, so several must land within one TTL
			if ttl := cfg.Redis.PresenceTTL; ttl > 0 {
				opt.PingPeriod = min(30*time.Second, ttl/3)
			}
			logger.Info("presence backed by redis", "addr", cfg.Redis.Addr)
		}

		if len(cfg.Kafka.Brokers) > 0 {
			producer, err := coordinator.NewSyncProducer(cfg.Kafka.Brokers)
			if err != nil {
				return fmt.Errorf("kafka producer: %w", err)
			}
			d := coordinator.NewKafkaDispatcher(producer, cfg.Kafka.Topic, coordinator.DispatcherOptions{
				QueueSize: cfg.Kafka.QueueSize,
				Workers:   cfg.Kafka.Workers,
				MaxRetry:  cfg.Kafka.MaxRetry,
			}, logger)
			defer d.Close()
			opt.Publisher = d
			logger.Info("room events go to kafka", "topic", cfg.Kafka.Topic)
		}

		srv := coordinator.NewServer(opt)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, fmt.Sprintf(":%d", port))
		})

		if cfg.MDNS.Enabled {
			g.Go(func() error {
				adv, err := bnet.Advertise(cfg.MDNS.Instance, port)
				if err != nil {
					// discovery is optional; share links still work
					logger.Warn("mdns advertise failed", "err", err)
					return nil
				}
				<-gctx.Done()
				return adv.Shutdown()
			})
		}

		logShareLink(port)
		return g.Wait()
	},
}

func logShareLink(port int) {
	link := bnet.LocalShareLink(port, cfg.Coordinator.Room)
	logger.Info("share this link", "link", link.String())
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides running.port)")
}
