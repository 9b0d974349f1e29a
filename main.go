package main

import (
	"context"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"netcov/config"
	"netcov/coverage"
	"netcov/geocoding"
	"netcov/importing"
	"netcov/index"
	ownIo "netcov/io"
	"netcov/util"
	"netcov/web"
	"strconv"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging    string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	Version    VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Config     string      `help:"YAML settings file. Environment variables prefixed with NETWORK_COVERAGE_API_ override its values." short:"c" placeholder:"<settings-file>"`
	EnvFile    string      `help:"File with environment variables, existing variables are not overridden." name:"env-file" default:".env"`
	Preprocess struct {
		Input string `help:"The raw ARCEP site list with Lambert93 coordinates (semicolon separated CSV)." placeholder:"<input-file>" arg:"" type:"existingfile"`
	} `cmd:"" help:"Converts the raw site list into the CSV file with WGS84 coordinates used by all other commands."`
	Query struct {
		Lat          string `help:"Latitude of the point to look up. Used instead of an address." placeholder:"<lat>"`
		Lon          string `help:"Longitude of the point to look up. Used instead of an address." placeholder:"<lon>"`
		StreetNumber string `help:"Street number of the address." name:"street-number"`
		StreetName   string `help:"Street name of the address." name:"street-name"`
		City         string `help:"City of the address."`
		PostalCode   string `help:"Postal code of the address." name:"postal-code"`
		Detailed     bool   `help:"Add distance and locations to the result." short:"d"`
		Format       string `help:"Output format." enum:"json,geojson" default:"json" short:"f"`
	} `cmd:"" help:"Prints the network coverage of all operators at an address or point."`
	Server struct {
		Port int `help:"Port of the HTTP server, overrides the port of the settings." short:"p"`
	} `cmd:"" help:"Starts the HTTP API."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("Network coverage"),
		kong.Description("Determines the mobile network coverage of French operators at addresses."),
		kong.Vars{
			"version": VERSION,
		},
	)

	util.SetLogLevel(cli.Logging)

	settings, err := config.Load(cli.Config, cli.EnvFile)
	sigolo.FatalCheck(err)

	switch ctx.Command() {
	case "preprocess <input>":
		err = importing.Preprocess(cli.Preprocess.Input, settings.DataFolder)
		sigolo.FatalCheck(err)
	case "query":
		service, cache, err := newService(settings)
		sigolo.FatalCheck(err)
		defer cache.Close()

		results, err := query(service)
		sigolo.FatalCheck(err)

		err = ownIo.WriteResults(results, cli.Query.Format)
		sigolo.FatalCheck(err)
	case "server":
		service, cache, err := newService(settings)
		sigolo.FatalCheck(err)
		defer cache.Close()

		port := settings.Server.Port
		if cli.Server.Port != 0 {
			port = cli.Server.Port
		}
		web.StartServer(port, service)
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}

func newService(settings *config.Settings) (*coverage.Service, *geocoding.Cache, error) {
	source, err := importing.NewSource(settings.DatasetSource, settings.DataFolder, settings.OsmFile)
	if err != nil {
		return nil, nil, err
	}

	search, err := index.NewNeighborSearch(settings.SearchStrategy, settings.SearchRadius, settings.BorderTolerance)
	if err != nil {
		return nil, nil, err
	}
	sigolo.Debugf("Use %s search with cell size %f", search.Name(), settings.CellSize)

	cache := geocoding.NewCache(settings.Redis.Addr, settings.Redis.Password, settings.Redis.DB, settings.Redis.TTL)
	geocoder := geocoding.NewClient(geocoding.Options{
		BaseUrl:           settings.Geocoder.BaseUrl,
		Retries:           settings.Geocoder.Retries,
		Timeout:           settings.Geocoder.Timeout,
		RequestsPerSecond: settings.Geocoder.RequestsPerSecond,
	}, cache)

	registry := index.NewRegistry(coverage.NewDatasetBuilder(source, settings.CellSize))
	return coverage.NewService(registry, search, geocoder), cache, nil
}

func query(service *coverage.Service) ([]*coverage.Result, error) {
	if cli.Query.Lat != "" || cli.Query.Lon != "" {
		lat, err := strconv.ParseFloat(cli.Query.Lat, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid latitude '%s'", cli.Query.Lat)
		}
		lon, err := strconv.ParseFloat(cli.Query.Lon, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid longitude '%s'", cli.Query.Lon)
		}

		return service.CoverageAt(context.Background(), orb.Point{lon, lat}, cli.Query.Detailed)
	}

	address := coverage.Address{
		StreetNumber: cli.Query.StreetNumber,
		StreetName:   cli.Query.StreetName,
		City:         cli.Query.City,
		PostalCode:   cli.Query.PostalCode,
	}
	if address.IsEmpty() {
		return nil, errors.New("Either a point (--lat and --lon) or an address is required")
	}

	return service.Coverage(context.Background(), address, cli.Query.Detailed)
}
