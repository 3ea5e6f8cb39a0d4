// Package tracker wires the Loca client, the polling coordinator, the
// status API and the optional sinks into one runnable process.
package tracker

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"loca2-asset-tracker/internal/locaapi"
	"loca2-asset-tracker/internal/logging"
	"loca2-asset-tracker/internal/publish"
	"loca2-asset-tracker/internal/recorder"
	"loca2-asset-tracker/internal/statusapi"
)

type Tracker struct {
	cfg Config
	log zerolog.Logger

	client    *locaapi.Client
	coord     *Coordinator
	api       *statusapi.Server
	publisher *publish.Publisher
	wg        *sync.WaitGroup
}

func New(cfg Config) (*Tracker, error) {
	warnings, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.Log)
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	t := &Tracker{
		cfg: cfg,
		log: log,
		wg:  &sync.WaitGroup{},
	}

	t.client = locaapi.New(cfg.Loca.Endpoint, cfg.Loca.Account, cfg.Loca.Password, log)
	t.coord = NewCoordinator(t.client, cfg, log)

	if cfg.Nats.Url != "" {
		pub, err := publish.New(cfg.Nats.Url, cfg.Nats.Subject, log)
		if err != nil {
			return nil, err
		}
		t.publisher = pub
		t.coord.AddListener(pub.Publish)
	}

	if cfg.Db.Driver != "" {
		rec, err := recorder.New(recorder.Config{
			Driver:   cfg.Db.Driver,
			Debug:    cfg.Db.Debug,
			User:     cfg.Db.Mysql.User,
			Password: cfg.Db.Mysql.Password,
			Host:     cfg.Db.Mysql.Host,
			Database: cfg.Db.Mysql.Database,
		}, log)
		if err != nil {
			return nil, err
		}
		t.coord.AddListener(rec.Store)
	}

	if cfg.Http.Listen != "" {
		users := make(map[string]string)
		for _, v := range cfg.Http.Users {
			users[v.User] = v.Password
		}

		t.api = statusapi.New(statusapi.Config{
			ServerName: cfg.Http.ServerName,
			Listen:     cfg.Http.Listen,
			BasicAuth:  cfg.Http.BasicAuth,
			Users:      users,
		}, t.coord, log)
	}

	return t, nil
}

// Run starts the poll loop and the status API, then blocks until a kill
// signal arrives and the loop has drained.
func (t *Tracker) Run() error {
	killSig := make(chan struct{}, 1)
	go t.coord.Run(t.wg, killSig)

	if t.api != nil {
		go func() {
			if err := t.api.Run(); err != nil {
				t.log.Error().Err(err).Msg("status API stopped")
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	<-sig

	t.log.Info().Msg("caught kill signal, shutting down")
	close(killSig)
	t.wg.Wait()

	t.client.Close()
	if t.publisher != nil {
		t.publisher.Close()
	}

	t.log.Info().Msg("all threads exited")

	return nil
}
