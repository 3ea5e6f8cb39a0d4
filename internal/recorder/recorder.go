// Package recorder archives published snapshots into MySQL. Optional; the
// tracker never reads this data back.
package recorder

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loca2-asset-tracker/internal/models"
)

type Config struct {
	Driver   string
	Debug    bool
	User     string
	Password string
	Host     string
	Database string
}

type Recorder struct {
	cfg    Config
	dbConn *gorm.DB
	log    zerolog.Logger
}

func getDbConn(cfg Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "mysql":
		if cfg.User == "" || cfg.Host == "" || cfg.Database == "" {
			return nil, fmt.Errorf("missing connection info")
		}

		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Database)
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown db driver %s", cfg.Driver)
	}

	if cfg.Debug {
		db.Logger = db.Logger.LogMode(logger.Info)
	}

	return db, err
}

func New(cfg Config, log zerolog.Logger) (*Recorder, error) {
	r := &Recorder{
		cfg: cfg,
		log: log.With().Str("component", "recorder").Logger(),
	}

	var err error
	r.dbConn, err = getDbConn(cfg)
	if err != nil {
		return nil, err
	}

	err = r.dbConn.AutoMigrate(&models.Device{})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Store upserts every device of the snapshot, keyed by asset id. Database
// errors are logged per device and never fail the poll cycle.
func (r *Recorder) Store(devices map[int]models.Device) {
	for id, d := range devices {
		var ret *gorm.DB
		if r.cfg.Debug {
			ret = r.dbConn.Debug().Save(&d)
		} else {
			ret = r.dbConn.Save(&d)
		}

		if ret.Error != nil {
			r.log.Error().Err(ret.Error).Int("asset_id", id).Msg("failed to store device")
		}
	}
}
