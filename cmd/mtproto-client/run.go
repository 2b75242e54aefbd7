package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/telemtp/mtproto-go/internal/config"
	mcrypto "github.com/telemtp/mtproto-go/internal/crypto"
	"github.com/telemtp/mtproto-go/internal/dcs"
	"github.com/telemtp/mtproto-go/internal/mtproto"
	"github.com/telemtp/mtproto-go/internal/schema/gen"
	"github.com/telemtp/mtproto-go/internal/schema/registry"
	"github.com/telemtp/mtproto-go/internal/sender"
	"github.com/telemtp/mtproto-go/internal/storage"
	boltstore "github.com/telemtp/mtproto-go/internal/storage/bolt"
	"github.com/telemtp/mtproto-go/internal/transport"
	"github.com/telemtp/mtproto-go/internal/updates"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to a datacenter and keep the session's update state current",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runClient(cmd.Context(), cfg, flags)
		},
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch {
	case cfg.BoltPath != "":
		return boltstore.Open(cfg.BoltPath)
	case cfg.SessionFile != "":
		return storage.OpenSessionFile(cfg.SessionFile)
	default:
		return storage.NewMemory(), nil
	}
}

func codecFor(protocol string) (transport.Codec, error) {
	switch protocol {
	case "abridged":
		return transport.Abridged{}, nil
	case "full":
		return &transport.Full{}, nil
	case "intermediate", "":
		return transport.Intermediate{}, nil
	default:
		return nil, fmt.Errorf("run: unknown transport_protocol %q", protocol)
	}
}

func runClient(ctx context.Context, cfg *config.Config, flags *rootFlags) error {
	logger, logFile, err := setupLogging(flags, parseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer logFile.Close()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("run: open storage: %w", err)
	}
	defer store.Close()

	sess, err := store.Load(ctx, cfg.DC)
	if err != nil {
		if err != storage.ErrNotFound {
			return fmt.Errorf("run: load session: %w", err)
		}
		return fmt.Errorf("run: no session on file for dc %d; provision an auth key out of band before running (key exchange is outside this client's scope)", cfg.DC)
	}

	dc, err := dcs.Lookup(dcs.Default(cfg.TestMode), cfg.DC)
	if err != nil {
		return err
	}
	if sess.ServerAddr == "" {
		sess.ServerAddr = dc.Addr()
	}

	authKey := mcrypto.NewAuthKey(sess.AuthKey)
	if authKey.Zero() {
		return fmt.Errorf("run: stored auth key for dc %d is empty; provision one out of band before running", cfg.DC)
	}
	state, err := mtproto.NewState(authKey, sess.ServerSalt)
	if err != nil {
		return fmt.Errorf("run: init session state: %w", err)
	}

	codec, err := codecFor(cfg.TransportProtocol)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := sender.NewMetrics(reg)
	updatesMetrics := updates.NewMetrics(reg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()
	}

	dial := func(ctx context.Context) (net.Conn, error) {
		d := net.Dialer{Timeout: 10 * time.Second}
		return d.DialContext(ctx, "tcp", sess.ServerAddr)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := sender.New(runCtx, sender.Options{
		Dial:    dial,
		Codec:   codec,
		State:   state,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("run: connect: %w", err)
	}

	getter := &rpcGetter{sender: s}
	box := updates.NewMessageBox(sess.Pts, sess.Qts, sess.Date, sess.Seq, getter, loggingSink{logger: logger}, logger)
	box.SetMetrics(updatesMetrics)

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case obj, ok := <-s.Updates():
				if !ok {
					return nil
				}
				if env, ok := obj.(gen.Updates); ok {
					box.HandlePush(groupCtx, env)
				}
			}
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutting down")
	case <-groupCtx.Done():
	}

	cancel()
	_ = group.Wait()
	if err := s.Close(); err != nil {
		logger.Warn("sender close", "error", err)
	}

	pts, qts, date, seq := box.State()
	sess.Pts, sess.Qts, sess.Date, sess.Seq = pts, qts, date, seq
	sess.ServerSalt = state.ServerSalt()
	sess.UpdatedAt = time.Now()
	if err := store.Save(ctx, sess); err != nil {
		return fmt.Errorf("run: save session: %w", err)
	}
	return nil
}

// rpcGetter adapts Sender.Invoke to updates.Getter, encoding the
// updates.getDifference / updates.getChannelDifference requests and
// sorting the abstract reply into the three outcome pointers the
// MessageBox gap logic switches on.
type rpcGetter struct {
	sender *sender.Sender
}

func (g *rpcGetter) GetDifference(ctx context.Context, pts, qts, date int32) (*gen.DifferenceFull, *gen.DifferenceEmpty, *gen.DifferenceTooLong, error) {
	obj, err := g.sender.Invoke(ctx, &gen.GetDifferenceRequest{Pts: pts, Qts: qts, Date: date})
	if err != nil {
		return nil, nil, nil, err
	}
	switch v := obj.(type) {
	case *gen.DifferenceFull:
		return v, nil, nil, nil
	case *gen.DifferenceEmpty:
		return nil, v, nil, nil
	case *gen.DifferenceTooLong:
		return nil, nil, v, nil
	default:
		return nil, nil, nil, fmt.Errorf("run: unexpected updates.getDifference reply %T", obj)
	}
}

func (g *rpcGetter) GetChannelDifference(ctx context.Context, channelID int64, pts int32) (*gen.ChannelDifferenceFull, *gen.ChannelDifferenceEmpty, *gen.ChannelDifferenceTooLong, error) {
	obj, err := g.sender.Invoke(ctx, &gen.GetChannelDifferenceRequest{ChannelID: channelID, Pts: pts})
	if err != nil {
		return nil, nil, nil, err
	}
	switch v := obj.(type) {
	case *gen.ChannelDifferenceFull:
		return v, nil, nil, nil
	case *gen.ChannelDifferenceEmpty:
		return nil, v, nil, nil
	case *gen.ChannelDifferenceTooLong:
		return nil, nil, v, nil
	default:
		return nil, nil, nil, fmt.Errorf("run: unexpected updates.getChannelDifference reply %T", obj)
	}
}

// loggingSink is the default Sink: logs every reconciled update at debug
// level. A real application substitutes its own Sink to route updates
// into its own handlers.
type loggingSink struct {
	logger interface {
		Debug(msg string, args ...any)
		Warn(msg string, args ...any)
	}
}

func (s loggingSink) HandleUpdate(u gen.Update) {
	s.logger.Debug("update", "type", fmt.Sprintf("%T", u))
}

func (s loggingSink) HandleMessage(obj registry.Object) {
	s.logger.Debug("message", "type", fmt.Sprintf("%T", obj))
}

func (s loggingSink) HandleGapReset(pts int32) {
	s.logger.Warn("update gap reset via differenceTooLong", "pts", pts)
}
