// Package postgres fetches AIS messages and PostGIS trajectories with gorm.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/fetch"
	"github.com/rotblauer/aistrust/types/aismsg"
	"github.com/rotblauer/aistrust/types/vesseltrack"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const messagesQuery = `
SELECT id, vessel_mmsi, destination, mobile_type_id, nav_status_id, data_source_type,
       timestamp, cog, rot, sog, heading, draught, cargo_type, eta
FROM ais_message
WHERE vessel_mmsi = ? AND timestamp BETWEEN ? AND ?
ORDER BY timestamp`

// The trajectory M ordinate is unix seconds.
const trajectoryQuery = `
SELECT mmsi, ST_AsBinary(ST_FilterByM(trajectory, ?, ?, true)) AS path
FROM vessel_trajectory
WHERE mmsi = ?`

type messageRow struct {
	ID             int64      `gorm:"column:id"`
	VesselMMSI     int64      `gorm:"column:vessel_mmsi"`
	Destination    *string    `gorm:"column:destination"`
	MobileTypeID   *int       `gorm:"column:mobile_type_id"`
	NavStatusID    *int       `gorm:"column:nav_status_id"`
	DataSourceType *string    `gorm:"column:data_source_type"`
	Timestamp      time.Time  `gorm:"column:timestamp"`
	COG            *float64   `gorm:"column:cog"`
	ROT            *float64   `gorm:"column:rot"`
	SOG            *float64   `gorm:"column:sog"`
	Heading        *float64   `gorm:"column:heading"`
	Draught        *float64   `gorm:"column:draught"`
	CargoType      *string    `gorm:"column:cargo_type"`
	ETA            *time.Time `gorm:"column:eta"`
}

// Message maps a row to a message. SQL NULL becomes nil; a reported zero stays zero.
func (r messageRow) Message() aismsg.Message {
	return aismsg.Message{
		ID:             r.ID,
		MMSI:           conceptual.MMSI(r.VesselMMSI),
		Timestamp:      r.Timestamp.UTC(),
		COG:            r.COG,
		SOG:            r.SOG,
		Heading:        r.Heading,
		ROT:            r.ROT,
		NavStatus:      r.NavStatusID,
		MobileType:     r.MobileTypeID,
		DataSourceType: deref(r.DataSourceType),
		Destination:    deref(r.Destination),
		Draught:        r.Draught,
		CargoType:      deref(r.CargoType),
		ETA:            r.ETA,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type trajectoryRow struct {
	MMSI int64  `gorm:"column:mmsi"`
	Path []byte `gorm:"column:path"`
}

type Fetcher struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Fetcher {
	return &Fetcher{db: db}
}

// ConnectWithRetry opens a Postgres connection, retrying while the database comes up.
func ConnectWithRetry(dsn string, attempts int, delay time.Duration) (*gorm.DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Warn("Postgres connect failed", "attempt", i, "attempts", attempts, "error", err)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempts, lastErr)
}

func (f *Fetcher) Fetch(ctx context.Context, mmsi conceptual.MMSI, w fetch.Window) (*fetch.Data, error) {
	msgs, err := f.messages(ctx, mmsi, w)
	if err != nil {
		return nil, err
	}
	path, err := f.trajectory(ctx, mmsi, w)
	if err != nil {
		return nil, err
	}
	return &fetch.Data{
		MMSI:       mmsi,
		Messages:   msgs,
		Trajectory: path,
		Encoding:   vesseltrack.EncodingWKB,
	}, nil
}

func (f *Fetcher) messages(ctx context.Context, mmsi conceptual.MMSI, w fetch.Window) ([]aismsg.Message, error) {
	var rows []messageRow
	err := f.db.WithContext(ctx).Raw(messagesQuery, int64(mmsi), w.Start.UTC(), w.End.UTC()).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query messages for %s: %w", mmsi, err)
	}
	out := make([]aismsg.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Message())
	}
	return out, nil
}

func (f *Fetcher) trajectory(ctx context.Context, mmsi conceptual.MMSI, w fetch.Window) ([]byte, error) {
	var rows []trajectoryRow
	err := f.db.WithContext(ctx).Raw(trajectoryQuery, unixSeconds(w.Start), unixSeconds(w.End), int64(mmsi)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query trajectory for %s: %w", mmsi, err)
	}
	if len(rows) == 0 || rows[0].Path == nil {
		return nil, fmt.Errorf("%w: mmsi=%s", fetch.ErrNoTrajectory, mmsi)
	}
	return rows[0].Path, nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
