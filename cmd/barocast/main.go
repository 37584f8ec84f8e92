package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/barocast/internal/api"
	"github.com/lox/barocast/internal/ingest"
	"github.com/lox/barocast/internal/models"
	"github.com/lox/barocast/internal/store"
)

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name='env-file',help='Path to an optional .env file.'"`

	DB   string `default:"data/barocast.db" help:"Path to the SQLite database."`
	Port string `default:"8080" help:"HTTP server port."`

	StationID string  `required:"" env:"STATION_ID" help:"Weather Underground station ID to poll."`
	APIKey    string  `env:"PWS_API_KEY" help:"Weather Underground API key. Omit to disable polling."`
	Name      string  `default:"" help:"Human-readable station name."`
	Latitude  float64 `required:"" env:"STATION_LAT" help:"Station latitude in decimal degrees."`
	Longitude float64 `required:"" env:"STATION_LON" help:"Station longitude in decimal degrees."`
	Elevation float64 `default:"0" env:"STATION_ELEVATION" help:"Station elevation in metres."`
	Locale    string  `default:"en" help:"Locale for forecast text (en, de, es)."`
	Timezone  string  `default:"UTC" env:"STATION_TZ" help:"IANA timezone of the station."`

	ObsInterval      time.Duration `default:"10m" help:"Observation polling interval."`
	ForecastInterval time.Duration `default:"1h" help:"Forecast generation interval."`

	Once   bool `help:"Ingest and generate one forecast, then exit."`
	NoPoll bool `help:"Disable polling and forecasting (server only, for local dev)."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("barocast"),
		kong.Description("Single-station barometric forecast engine."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	loc, err := time.LoadLocation(cli.Timezone)
	if err != nil {
		log.Printf("Warning: could not load timezone %s, using UTC: %v", cli.Timezone, err)
		loc = time.UTC
	}

	st := store.New(db, loc)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	name := cli.Name
	if name == "" {
		name = cli.StationID
	}
	station := models.Station{
		StationID: cli.StationID,
		Name:      name,
		Latitude:  cli.Latitude,
		Longitude: cli.Longitude,
		Elevation: cli.Elevation,
		Locale:    cli.Locale,
	}
	if err := st.UpsertStation(station); err != nil {
		log.Fatalf("upsert station %s: %v", station.StationID, err)
	}

	var client *ingest.StationClient
	if cli.APIKey != "" {
		client = ingest.NewStationClient(cli.APIKey)
	} else {
		log.Println("no API key configured, observation polling disabled")
	}

	scheduler := ingest.NewScheduler(st, client, station, loc, cli.ObsInterval, cli.ForecastInterval)
	server := api.NewServer(st, station, cli.Port, loc)

	if cli.Once {
		log.Println("running single ingestion and forecast")
		if err := scheduler.IngestOnce(); err != nil {
			log.Fatalf("ingest: %v", err)
		}
		log.Println("done")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !cli.NoPoll {
		go scheduler.Run(ctx)
	} else {
		log.Println("polling disabled (--no-poll)")
	}

	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
