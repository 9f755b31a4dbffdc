// Command sim runs the stalker headless against the level's scripted player
// route and prints a summary. With -listen it also streams snapshots and
// behaviour events to websocket watchers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/internal/hub"
	ilog "github.com/milk9111/stalker/internal/log"
	"github.com/milk9111/stalker/levels"
	"github.com/milk9111/stalker/prefabs"
	"github.com/milk9111/stalker/system"
	"gopkg.in/yaml.v3"
)

type summary struct {
	Level       string                        `yaml:"level"`
	Profile     string                        `yaml:"profile,omitempty"`
	Ticks       uint64                        `yaml:"ticks"`
	Seconds     float64                       `yaml:"seconds"`
	Captured    bool                          `yaml:"captured"`
	CapturedAt  float64                       `yaml:"captured_at,omitempty"`
	Transitions int                           `yaml:"transitions"`
	TimeIn      map[component.StateID]float64 `yaml:"time_in_state"`
	Events      map[component.AIEventType]int `yaml:"events"`
	Final       system.Snapshot               `yaml:"final"`
}

func main() {
	levelName := flag.String("level", levels.Default, "level name in levels/ (basename, .json optional)")
	profile := flag.String("profile", "", "stalker profile from prefabs/stalker.yaml")
	seed := flag.Uint64("seed", 1, "patrol random seed (0 picks one)")
	ticks := flag.Int("ticks", 3600, "ticks to simulate (0 runs until interrupted)")
	dt := flag.Float64("dt", 1.0/60, "seconds per tick")
	listen := flag.String("listen", "", "serve websocket watchers on this address, e.g. :8080")
	every := flag.Int("every", 6, "publish a snapshot every n ticks")
	realtime := flag.Bool("realtime", false, "pace ticks at wall-clock speed")
	logLevel := flag.String("log", "info", "log level: debug, info, warn, error")
	flag.Parse()

	ilog.Init(*logLevel)
	logger := ilog.With("component", "sim")

	tuning, err := prefabs.LoadTuning(prefabs.DefaultAgentSpec, *profile)
	if err != nil {
		log.Fatal(err)
	}
	world, err := system.NewWorld(system.WorldConfig{
		Level:     *levelName,
		Tuning:    tuning,
		Seed:      *seed,
		Autopilot: true,
		Logger:    logger,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var h *hub.Hub
	var latest struct {
		sync.RWMutex
		snap system.Snapshot
	}
	if *listen != "" {
		h = hub.New(logger)
		go h.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle("/ws", h)
		mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
			latest.RLock()
			defer latest.RUnlock()
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(latest.snap); err != nil {
				logger.Debug("encode snapshot", "error", err)
			}
		})
		srv := &http.Server{Addr: *listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server", "error", err)
				stop()
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("streaming", "addr", *listen)
	}

	sum := summary{
		Level:   *levelName,
		Profile: *profile,
		TimeIn:  map[component.StateID]float64{},
		Events:  map[component.AIEventType]int{},
	}
	world.Events.Subscribe(func(evt component.AIEvent) {
		sum.Events[evt.Type]++
		if evt.Type == component.EventStateChanged {
			sum.Transitions++
			logger.Info("state", "tick", evt.Tick, "from", evt.From, "to", evt.To)
		}
		if h != nil {
			if err := h.Publish("event", evt); err != nil {
				logger.Debug("publish event", "type", evt.Type, "error", err)
			}
		}
	})

	var ticker *time.Ticker
	if *realtime {
		ticker = time.NewTicker(time.Duration(*dt * float64(time.Second)))
		defer ticker.Stop()
	}

loop:
	for i := 0; *ticks == 0 || i < *ticks; i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break
		}

		sum.TimeIn[world.Engine.State()] += *dt
		world.Update(*dt)
		sum.Ticks++

		if *every > 0 && i%*every == 0 {
			snap := world.Engine.Snapshot()
			latest.Lock()
			latest.snap = snap
			latest.Unlock()
			if h != nil {
				if err := h.Publish("snapshot", snap); err != nil {
					logger.Debug("publish snapshot", "tick", snap.Tick, "error", err)
				}
			}
		}
		if world.Manager.Ended() && !sum.Captured {
			sum.Captured = true
			sum.CapturedAt = float64(sum.Ticks) * *dt
			if *listen == "" {
				break
			}
		}
	}

	sum.Seconds = float64(sum.Ticks) * *dt
	sum.Final = world.Engine.Snapshot()
	out, err := yaml.Marshal(sum)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(out))
}
