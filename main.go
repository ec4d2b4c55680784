package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"sketchive/internal/api"
	"sketchive/internal/config"
	"sketchive/internal/db"
	"sketchive/internal/event"
	"sketchive/internal/export"
	"sketchive/internal/logging"
	sknet "sketchive/internal/net"
	"sketchive/internal/state"
	"sketchive/internal/store"
	"sketchive/internal/surface"
	"sketchive/internal/ui"

	"golang.org/x/sync/errgroup"
)

const usage = `usage:
  sketchive [draw]                     open the drawing window
  sketchive serve                      run the whiteboard store service
  sketchive export <file> [board-id]   write a board to .pdf, .png or .txt`

func main() {
	cfg, err := config.LoadFromEnv(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.Log)

	mode := "draw"
	args := os.Args[1:]
	if len(args) > 0 {
		mode, args = args[0], args[1:]
	}

	switch mode {
	case "draw":
		err = runDraw(cfg, logger)
	case "serve":
		err = runServe(cfg, logger)
	case "export":
		err = runExport(cfg, logger, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("exiting", "mode", mode, "error", err)
		os.Exit(1)
	}
}

// storeClient resolves the store URL, browsing mDNS when none is configured.
func storeClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Client, error) {
	url := cfg.Store.URL
	if url == "" {
		found, err := sknet.Browse(ctx, cfg.Store.DiscoverTimeout())
		if err != nil {
			return nil, fmt.Errorf("discover store: %w", err)
		}
		logger.Info("store discovered", "url", found)
		url = found
	}
	return store.NewClient(store.Config{BaseURL: url, Timeout: cfg.Store.Timeout()}), nil
}

// view mirrors what the surface shows, for exports started from the window.
type view struct {
	mu           sync.Mutex
	whiteboardID int64
	size         export.Size
}

// set reports whether the active board changed.
func (v *view) set(s state.SurfaceState) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	changed := v.whiteboardID != s.WhiteboardID
	v.whiteboardID = s.WhiteboardID
	v.size = export.Size{Width: s.Width, Height: s.Height}
	return changed
}

func (v *view) get() (int64, export.Size) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.whiteboardID, v.size
}

func runDraw(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := storeClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("starting surface", "store", client.BaseURL(), "whiteboard", cfg.Board.WhiteboardID, "session", state.SessionID())

	bus := event.NewBus()
	current := &view{}
	window := ui.New(bus, ui.Options{
		Width:     cfg.Board.Width,
		Height:    cfg.Board.Height,
		Color:     cfg.Board.Color,
		LineWidth: cfg.Board.LineWidth,
		Logger:    logger,
		Export: func(w io.Writer, ext string) error {
			id, size := current.get()
			if id == 0 {
				return state.ErrNotReady
			}
			return exportBoard(ctx, client, id, w, ext, size)
		},
	})

	var ctrl *surface.Controller
	ctrl, err = surface.New(client, surface.Options{
		Width:           cfg.Board.Width,
		Height:          cfg.Board.Height,
		WhiteboardID:    cfg.Board.WhiteboardID,
		OwnerID:         cfg.Board.OwnerID,
		CreateIfMissing: cfg.Board.CreateIfMissing,
		Logger:          logger,
		OnFrame: func(frame *image.RGBA) {
			s := ctrl.State()
			window.ShowFrame(frame)
			if current.set(s) && s.Ready() {
				window.SetStatus(fmt.Sprintf("Whiteboard %d", s.WhiteboardID))
			}
		},
	})
	if err != nil {
		return err
	}
	mounted := ctrl.Mount(bus)
	defer mounted.Close()

	bus.Publish(event.Event{
		Kind:      event.ToolChange,
		Tool:      state.ToolPen,
		Color:     cfg.Board.Color,
		LineWidth: cfg.Board.LineWidth,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.Run(ctx)
	}()
	ctrl.Load(ctx)

	window.ShowAndRun()
	cancel()
	<-done
	return nil
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           api.SetupRoutes(api.NewHandlers(repo, logger), cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("store service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down store service")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Server.Advertise {
		port, err := sknet.PortOf(cfg.Server.Listen)
		if err != nil {
			return err
		}
		zone, err := sknet.Advertise(port, logger)
		if err != nil {
			return fmt.Errorf("advertise store: %w", err)
		}
		logger.Info("store advertised", "url", sknet.ServiceURL(port))
		g.Go(func() error {
			<-ctx.Done()
			return zone.Shutdown()
		})
	}

	return g.Wait()
}

func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (db.Repository, error) {
	if cfg.Database.URL == "" {
		logger.Warn("no database configured, boards are kept in memory")
		return db.NewMemory(), nil
	}
	pg, err := db.OpenPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database schema applied")
	}
	return pg, nil
}

func runExport(cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	target := args[0]
	id := cfg.Board.WhiteboardID
	if len(args) > 1 {
		parsed, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid board id %q", args[1])
		}
		id = parsed
	}
	if id == 0 {
		return errors.New("no board id given and none configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout()+cfg.Store.DiscoverTimeout())
	defer cancel()
	client, err := storeClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	size := export.Size{Width: cfg.Board.Width, Height: cfg.Board.Height}
	if err := exportBoard(ctx, client, id, f, filepath.Ext(target), size); err != nil {
		f.Close()
		os.Remove(target)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("board exported", "whiteboard", id, "file", target)
	return nil
}

func exportBoard(ctx context.Context, client *store.Client, id int64, w io.Writer, ext string, size export.Size) error {
	wb, err := client.GetWhiteboard(ctx, id)
	if err != nil {
		return err
	}
	strokes, err := client.GetStrokes(ctx, id)
	if err != nil {
		return err
	}
	return export.Write(w, ext, wb, strokes, size)
}
