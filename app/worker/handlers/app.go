package handlers

import (
	"context"
	"errors"
	"go.uber.org/zap"
	"net/http"
	"stix-ui/app/worker/config"
	"sync"
	"time"
)

type App struct {
	cfg    *config.Config
	l      *zap.Logger
	client *http.Client

	lastSync int64 // updated_at of the bundle on disk
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
	lock     sync.Mutex     // held while a sync runs
	running  sync.WaitGroup // syncs started by the loop
}

func NewApp(cfg *config.Config, l *zap.Logger) *App {
	return &App{
		cfg: cfg,
		l:   l,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *App) Start() {
	a.ticker = time.NewTicker(a.cfg.HeartbeatInterval)
	a.stopChan = make(chan struct{})
	a.done = make(chan struct{})
	go a.loop()
}

func (a *App) loop() {
	defer close(a.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-a.stopChan
		cancel()
	}()

	// Sync right away instead of waiting a full interval
	a.tick(ctx)

	for {
		select {
		case <-a.ticker.C:
			a.tick(ctx)
		case <-a.stopChan:
			a.l.Debug("stop heartbeat loop")
			return
		}
	}
}

func (a *App) tick(ctx context.Context) {
	a.l.Debug("heartbeat loop")
	// Overlapping ticks are skipped by the lock
	a.running.Add(1)
	go func() {
		defer a.running.Done()
		if err := a.heartbeat(ctx); err != nil {
			if !errors.Is(err, errBusy) && ctx.Err() == nil {
				a.l.Error("heartbeat failed", zap.Error(err))
			}
		}
	}()
}

// Stop ends the loop, cancels a running sync and waits for it.
func (a *App) Stop() {
	a.ticker.Stop()
	close(a.stopChan)
	<-a.done
	a.running.Wait()
}
