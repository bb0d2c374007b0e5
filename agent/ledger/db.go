package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DBConfig selects the relational store. SQLite is the default so the
// service runs (and tests run) without external infrastructure; a Postgres
// DSN switches the whole ledger to pgdriver.
type DBConfig struct {
	Driver string `envconfig:"DRIVER" split_words:"true" default:"sqlite"`
	DSN    string `envconfig:"DSN" split_words:"true" default:"file:hotel.db?cache=shared&_pragma=busy_timeout(5000)"`
}

// OpenDB opens a bun handle for the configured driver. The caller owns the
// handle lifecycle: open at process start, close at shutdown.
func OpenDB(cfg DBConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "sqlite", "":
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// A single writer avoids SQLITE_BUSY under concurrent bookings.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// Migrate creates the ledger tables when missing.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{(*Room)(nil), (*Booking)(nil)}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

var sampleRooms = []Room{
	{RoomNumber: "101", RoomType: RoomTypeSingle, PricePerNight: 80.0, Status: RoomAvailable},
	{RoomNumber: "102", RoomType: RoomTypeSingle, PricePerNight: 80.0, Status: RoomAvailable},
	{RoomNumber: "201", RoomType: RoomTypeDouble, PricePerNight: 120.0, Status: RoomAvailable},
	{RoomNumber: "202", RoomType: RoomTypeDouble, PricePerNight: 120.0, Status: RoomAvailable},
	{RoomNumber: "301", RoomType: RoomTypeSuite, PricePerNight: 200.0, Status: RoomAvailable},
	{RoomNumber: "302", RoomType: RoomTypeSuite, PricePerNight: 200.0, Status: RoomCleaning},
	{RoomNumber: "401", RoomType: RoomTypeDeluxe, PricePerNight: 280.0, Status: RoomAvailable},
	{RoomNumber: "402", RoomType: RoomTypeDeluxe, PricePerNight: 280.0, Status: RoomOccupied},
	{RoomNumber: "501", RoomType: RoomTypePresidential, PricePerNight: 500.0, Status: RoomAvailable},
	{RoomNumber: "502", RoomType: RoomTypePresidential, PricePerNight: 500.0, Status: RoomAvailable},
}

// SeedRooms inserts the demo inventory when the rooms table is empty. Rooms
// are otherwise created at provisioning time, outside this service.
func SeedRooms(ctx context.Context, db *bun.DB) error {
	count, err := db.NewSelect().Model((*Room)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	rooms := make([]Room, len(sampleRooms))
	copy(rooms, sampleRooms)
	if _, err := db.NewInsert().Model(&rooms).Exec(ctx); err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}
	log.Info().Int("rooms", len(rooms)).Msg("seeded room inventory")
	return nil
}
