package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/i474232898/weather-dashboard/internal/bootstrap"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	city := flag.String("city", "", "city to look up (default: current location)")
	units := flag.String("units", "c", "temperature unit: c or f")
	watch := flag.Bool("watch", false, "keep refreshing every WATCH_INTERVAL")
	check := flag.Bool("check", false, "only report whether the weather API is reachable")
	flag.Parse()

	unit, err := dashboard.ParseUnit(*units)
	if err != nil {
		log.Fatalf("invalid -units: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	d, err := bootstrap.NewDashboard(cfg)
	if err != nil {
		log.Fatalf("failed to set up dashboard: %v", err)
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := bootstrap.APIStatus(cfg)
	if *check {
		status.Checking = true
		fmt.Println(status.Label())
		status.Connected, status.Checking = d.Client.CheckConnection(ctx), false
		fmt.Println(status.Label())
		if !status.Connected {
			return 1
		}
		return 0
	}

	session := dashboard.NewSession(d.Client, cfg.DefaultCity)
	var out sync.Mutex
	session.OnChange(func(st dashboard.State) {
		out.Lock()
		defer out.Unlock()
		show(st, unit)
	})

	if !*watch {
		if res := session.Refresh(ctx, *city); res.Err != nil {
			return 1
		}
		return 0
	}

	sched := scheduler.New(cfg.WatchInterval, cfg.HTTPTimeout,
		scheduler.Job{Name: "refresh", Run: func(ctx context.Context) error {
			// The cache absorbs repeated searches within its TTL.
			if res := session.Refresh(ctx, *city); res.Err != nil {
				return res.Err
			}
			return nil
		}},
		scheduler.Job{Name: "connection-check", Run: func(ctx context.Context) error {
			st := bootstrap.APIStatus(cfg)
			st.Connected = d.Client.CheckConnection(ctx)
			out.Lock()
			defer out.Unlock()
			fmt.Println(st.Label())
			return nil
		}},
		scheduler.Job{Name: "cache-sweep", Run: func(context.Context) error {
			if n := d.Cache.Sweep(); n > 0 {
				log.Printf("INFO: swept %d expired cache entries", n)
			}
			return nil
		}},
	)
	if err := sched.Start(); err != nil {
		log.Printf("ERROR: failed to start scheduler: %v", err)
		return 1
	}
	defer sched.Stop()

	<-ctx.Done()
	return 0
}

func show(st dashboard.State, unit dashboard.Unit) {
	switch st.Status {
	case dashboard.StatusLoading:
		fmt.Fprintln(os.Stderr, "Loading...")
	case dashboard.StatusSuccess:
		if err := dashboard.Render(os.Stdout, *st.Data, unit); err != nil {
			log.Printf("ERROR: render: %v", err)
		}
	case dashboard.StatusError:
		if err := dashboard.RenderError(os.Stderr, st.Err); err != nil {
			log.Printf("ERROR: render: %v", err)
		}
	}
}
