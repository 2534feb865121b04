package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/bytebuddy/internal/backend"
	"github.com/abhisek/bytebuddy/internal/config"
	"github.com/abhisek/bytebuddy/internal/history"
	"github.com/abhisek/bytebuddy/internal/kv"
	"github.com/abhisek/bytebuddy/internal/llm"
	"github.com/abhisek/bytebuddy/internal/session"
	"github.com/abhisek/bytebuddy/internal/store"
)

// deps bundles everything a command needs, plus what must be closed on exit.
type deps struct {
	cfg     config.Config
	backend backend.Backend
	session *session.Session
	events  *store.Store // nil unless history lives in a SQL store

	closers []io.Closer
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("backend"); v != "" {
		cfg.Backend.Mode = v
	}
	if v, _ := flags.GetString("backend-url"); v != "" {
		cfg.Backend.URL = v
	}
	if v, _ := flags.GetString("store"); v != "" {
		cfg.Storage.Driver = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		cfg.Storage.Path = v
	}
	if v, _ := flags.GetBool("no-memory"); v {
		cfg.MemoryEnabled = false
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup loads config and builds storage, backend and session.
func setup(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d := &deps{cfg: cfg}
	storage, err := d.openStorage(ctx)
	if err != nil {
		d.Close()
		return nil, err
	}

	if err := d.buildBackend(ctx); err != nil {
		d.Close()
		return nil, err
	}

	d.session = session.New(d.backend, history.Load(ctx, storage), cfg.MemoryEnabled)
	return d, nil
}

func (d *deps) openStorage(ctx context.Context) (history.Storage, error) {
	sc := d.cfg.Storage
	switch sc.Driver {
	case config.DriverSQLite, "":
		path := sc.Path
		var err error
		if path == "" {
			path, err = store.DefaultDBPath()
		} else {
			err = store.EnsureDir(path)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		return d.openSQL(ctx, store.DriverSQLite, path)

	case config.DriverPostgres:
		return d.openSQL(ctx, store.DriverPostgres, sc.DSN)

	case config.DriverRedis:
		r, err := kv.DialRedis(ctx, sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, sc.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, r)
		return r, nil

	case config.DriverMemory:
		return kv.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q", sc.Driver)
	}
}

func (d *deps) openSQL(ctx context.Context, driver store.Driver, dsn string) (history.Storage, error) {
	s, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.events = s
	d.closers = append(d.closers, s)
	return s.KV(), nil
}

func (d *deps) buildBackend(ctx context.Context) error {
	switch d.cfg.Backend.Mode {
	case config.ModeHTTP, "":
		d.backend = backend.NewClient(d.cfg.Backend.URL, d.cfg.BackendTimeout(60*time.Second))
		return nil

	case config.ModeLLM:
		var events store.EventRepo
		if d.events != nil {
			events = d.events.EventRepo()
		}
		p, err := llm.NewProvider(ctx, d.cfg.LLM, events)
		if err != nil {
			return fmt.Errorf("create LLM provider: %w", err)
		}
		d.backend = backend.NewDirect(p, uuid.NewString())
		return nil

	default:
		return fmt.Errorf("unknown backend mode: %q", d.cfg.Backend.Mode)
	}
}

// httpClient returns the knowledge service client, or an error when the
// backend is not the HTTP service.
func (d *deps) httpClient() (*backend.Client, error) {
	c, ok := d.backend.(*backend.Client)
	if !ok {
		return nil, errors.New("this command needs the http backend (--backend http)")
	}
	return c, nil
}

// openEventStore opens the SQL store that holds LLM events.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg}
	switch cfg.Storage.Driver {
	case config.DriverSQLite, config.DriverPostgres, "":
	default:
		return nil, fmt.Errorf("LLM events are only recorded in sqlite or postgres storage, not %q", cfg.Storage.Driver)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := d.openStorage(ctx); err != nil {
		return nil, err
	}
	return d.events, nil
}
