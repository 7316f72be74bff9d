package cli

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kylemclaren/clockbar/internal/api"
	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/kylemclaren/clockbar/internal/config"
	"github.com/kylemclaren/clockbar/internal/display"
	"github.com/kylemclaren/clockbar/internal/poller"
	"github.com/kylemclaren/clockbar/internal/reminder"
	"github.com/kylemclaren/clockbar/internal/store"
	"github.com/kylemclaren/clockbar/internal/stream"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func runAgent(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, notify := loadConfig(configPath, logger)

	a := &agent{
		cfg:    cfg,
		notify: notify,
		source: clock.NewEmacsSource(cfg.OrgClock.Emacsclient, clock.ExecRunner{}),
		stdout: os.Stdout,
		sink:   reminderSinks(cfg),
		logger: logger,
	}

	if !noHistory {
		st, err := openStore()
		if err != nil {
			logger.Printf("History disabled: %v", err)
		} else {
			defer st.Close()
			a.history = st
		}
	}

	return a.run(ctx)
}

// agent is the long-running status agent: the poller, the display refresher,
// the reminder scheduler when notify is set, and the HTTP API when listen is
// configured.
type agent struct {
	cfg     *config.Config
	notify  *config.NotifyConfig
	source  clock.Source
	stdout  io.Writer
	sink    reminder.Sink
	history *store.Store
	logger  *log.Logger

	// clock drives the refresher and scheduler; nil means wall time.
	clock clock.Clock
	// onListen is called with the API address once it accepts connections.
	onListen func(net.Addr)
}

// run blocks until ctx is done and every loop has returned.
func (a *agent) run(ctx context.Context) error {
	state := clock.NewState()
	p, err := poller.New(a.source, state, a.cfg.OrgClock.PollSchedule, a.logger)
	if err != nil {
		return err
	}

	var history api.History
	var recorder reminder.Recorder
	if a.history != nil {
		p.SetRecorder(a.history)
		history, recorder = a.history, a.history
	}

	streamMgr := stream.NewManager()
	refresher := display.NewRefresher(state, display.MultiSink{display.NewStdoutSink(a.stdout), streamMgr}, a.logger)
	if a.clock != nil {
		refresher.SetClock(a.clock)
	}

	var sched *reminder.Scheduler
	if a.notify != nil {
		sched, err = reminder.NewScheduler(*a.notify, state, a.sink, a.logger)
		if err != nil {
			a.logger.Printf("Break reminders disabled: %v", err)
			sched = nil
		} else {
			if recorder != nil {
				sched.SetRecorder(recorder)
			}
			if a.clock != nil {
				sched.SetClock(a.clock)
			}
		}
	}

	if a.cfg.OrgClock.Listen != "" {
		srv, err := a.serve(ctx, api.NewServer(state, sched, history, streamMgr))
		if err != nil {
			a.logger.Printf("API server disabled: %v", err)
		} else {
			defer a.shutdown(srv)
		}
	}

	p.Start()
	defer p.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = refresher.Run(ctx)
	}()
	if sched != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sched.Run(ctx)
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}

// serve starts the API server. Request contexts derive from ctx, so open
// status streams end as soon as the agent is asked to stop.
func (a *agent) serve(ctx context.Context, server *api.Server) (*http.Server, error) {
	ln, err := net.Listen("tcp", a.cfg.OrgClock.Listen)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:     server.Router(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	a.logger.Printf("API server listening on %s", ln.Addr())
	if a.onListen != nil {
		a.onListen(ln.Addr())
	}

	go func() {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			a.logger.Printf("Server error: %v", err)
		}
	}()
	return srv, nil
}

func (a *agent) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Printf("Shutting down server: %v", err)
	}
}
