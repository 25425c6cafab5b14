// tacmap-viewer is a desktop harness for the overlay engine: it renders the
// draw-command stream with Ebitengine, feeds mouse input into the gesture
// pipeline, and optionally subscribes to a live peer-position feed.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/medentem/tacmap"

	_ "github.com/silbinarywolf/preferdiscretegpu"
)

var cli struct {
	Config      string  `help:"Config directory holding tacmap-viewer.cfg.json." default:"." type:"path"`
	Annotations string  `help:"GeoJSON file with annotations to load at startup." type:"path"`
	PeerFeed    string  `help:"Websocket URL of a live peer-position feed."`
	Lat         float64 `help:"Initial map center latitude." default:"48.8566"`
	Lon         float64 `help:"Initial map center longitude." default:"2.3522"`
	Zoom        float64 `help:"Initial zoom level." default:"14"`
	Width       int     `help:"Window width." default:"1280"`
	Height      int     `help:"Window height." default:"720"`
	Debug       bool    `help:"Enable debug logging."`
}

func loadConfig(dir string) error {
	// load config from file as JSON

	// set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("tps", 30)

	viper.SetDefault("peers.url", "")
	viper.SetDefault("peers.maxAgeSeconds", 30)

	viper.SetConfigName("tacmap-viewer.cfg.json")
	viper.AddConfigPath(dir)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and flags cover everything.
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

func main() {
	kong.Parse(&cli,
		kong.Name("tacmap-viewer"),
		kong.Description("Desktop viewer for the tactical-map annotation overlay."),
	)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if cli.Debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if err := loadConfig(cli.Config); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	proj := tacmap.NewMercator(
		tacmap.GeoPoint{Lat: cli.Lat, Lon: cli.Lon},
		cli.Zoom, float64(cli.Width), float64(cli.Height),
	)
	engine := tacmap.NewEngine(proj, tacmap.WithLogger(log))

	game := newGame(engine, proj, log)

	if cli.Annotations != "" {
		entities, err := loadAnnotations(cli.Annotations)
		if err != nil {
			log.Fatal().Err(err).Str("path", cli.Annotations).Msg("annotation load failed")
		}
		log.Info().Int("count", len(entities)).Msg("annotations loaded")
		game.setAnnotations(entities)
	}

	feedURL := cli.PeerFeed
	if feedURL == "" {
		feedURL = viper.GetString("peers.url")
	}
	if feedURL != "" {
		feed := newPeerFeed(feedURL, log)
		go feed.run()
		game.peers = feed
	}

	ebiten.SetTPS(viper.GetInt("tps"))
	ebiten.SetWindowSize(cli.Width, cli.Height)
	ebiten.SetWindowTitle("tacmap viewer")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("viewer exited")
	}
}
