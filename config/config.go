package config

import (
	"github.com/goccy/go-yaml"
	"github.com/hauke96/sigolo/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"netcov/importing"
	"netcov/index"
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix of all environment variables overriding settings, e.g. NETWORK_COVERAGE_API_CELL_SIZE.
const EnvPrefix = "NETWORK_COVERAGE_API_"

type GeocoderSettings struct {
	BaseUrl           string        `yaml:"base_url"`
	Retries           int           `yaml:"retries"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

type RedisSettings struct {
	// Addr is the "host:port" of the redis server. An empty address disables the geocoder cache.
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ServerSettings struct {
	Port int `yaml:"port"`
}

type Settings struct {
	CellSize        float64 `yaml:"cell_size"`
	SearchRadius    float64 `yaml:"search_radius"`
	SearchStrategy  string  `yaml:"search_strategy"`
	BorderTolerance float64 `yaml:"border_tolerance"`

	DataFolder    string `yaml:"data_folder"`
	DatasetSource string `yaml:"dataset_source"`
	OsmFile       string `yaml:"osm_file"`

	Geocoder GeocoderSettings `yaml:"geocoder"`
	Redis    RedisSettings    `yaml:"redis"`
	Server   ServerSettings   `yaml:"server"`
}

func Default() *Settings {
	return &Settings{
		CellSize:        0.5,
		SearchRadius:    0.01,
		SearchStrategy:  index.SearchStrategyRing,
		BorderTolerance: 0.01,
		DataFolder:      "data",
		DatasetSource:   importing.SourceCsv,
		Geocoder: GeocoderSettings{
			BaseUrl:           "https://api-adresse.data.gouv.fr",
			Retries:           5,
			Timeout:           5 * time.Second,
			RequestsPerSecond: 10,
		},
		Redis: RedisSettings{
			TTL: 24 * time.Hour,
		},
		Server: ServerSettings{
			Port: 8088,
		},
	}
}

// Load reads the settings in the following order, later sources override earlier ones: defaults, the YAML settings
// file, environment variables. Variables from the env file are only set when they don't already exist in the
// environment. Empty file names are skipped.
func Load(settingsFile string, envFile string) (*Settings, error) {
	settings := Default()

	if settingsFile != "" {
		content, err := os.ReadFile(settingsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to read settings file %s", settingsFile)
		}

		err = yaml.Unmarshal(content, settings)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to parse settings file %s", settingsFile)
		}
		sigolo.Debugf("Read settings file %s", settingsFile)
	}

	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "Unable to read env file %s", envFile)
		}
	}

	err := settings.applyEnvironment(os.LookupEnv)
	if err != nil {
		return nil, err
	}

	err = settings.Validate()
	if err != nil {
		return nil, err
	}

	return settings, nil
}

func (s *Settings) applyEnvironment(lookup func(string) (string, bool)) error {
	overrides := map[string]func(string) error{
		"CELL_SIZE":                    floatSetter(&s.CellSize),
		"SEARCH_RADIUS":                floatSetter(&s.SearchRadius),
		"SEARCH_STRATEGY":              stringSetter(&s.SearchStrategy),
		"BORDER_TOLERANCE":             floatSetter(&s.BorderTolerance),
		"DATA_FOLDER":                  stringSetter(&s.DataFolder),
		"DATASET_SOURCE":               stringSetter(&s.DatasetSource),
		"OSM_FILE":                     stringSetter(&s.OsmFile),
		"GEOCODER_BASE_URL":            stringSetter(&s.Geocoder.BaseUrl),
		"GEOCODER_RETRIES":             intSetter(&s.Geocoder.Retries),
		"GEOCODER_TIMEOUT":             durationSetter(&s.Geocoder.Timeout),
		"GEOCODER_REQUESTS_PER_SECOND": floatSetter(&s.Geocoder.RequestsPerSecond),
		"REDIS_ADDR":                   stringSetter(&s.Redis.Addr),
		"REDIS_PASSWORD":               stringSetter(&s.Redis.Password),
		"REDIS_DB":                     intSetter(&s.Redis.DB),
		"REDIS_TTL":                    durationSetter(&s.Redis.TTL),
		"SERVER_PORT":                  intSetter(&s.Server.Port),
	}

	for name, set := range overrides {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}

		err := set(value)
		if err != nil {
			return errors.Wrapf(err, "Invalid value '%s' of environment variable %s%s", value, EnvPrefix, name)
		}
		sigolo.Debugf("Setting %s overridden by environment", name)
	}

	return nil
}

func stringSetter(target *string) func(string) error {
	return func(value string) error {
		*target = value
		return nil
	}
}

func floatSetter(target *float64) func(string) error {
	return func(value string) error {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*target = parsed
		return nil
	}
}

func intSetter(target *int) func(string) error {
	return func(value string) error {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*target = parsed
		return nil
	}
}

func durationSetter(target *time.Duration) func(string) error {
	return func(value string) error {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*target = parsed
		return nil
	}
}

func (s *Settings) Validate() error {
	if s.CellSize <= 0 {
		return errors.Errorf("Cell size must be positive but was %f", s.CellSize)
	}
	if s.SearchRadius <= 0 {
		return errors.Errorf("Search radius must be positive but was %f", s.SearchRadius)
	}
	if s.BorderTolerance < 0 {
		return errors.Errorf("Border tolerance must not be negative but was %f", s.BorderTolerance)
	}
	if s.SearchStrategy != index.SearchStrategyRing && s.SearchStrategy != index.SearchStrategyBorder {
		return errors.Errorf("Unknown search strategy '%s'", s.SearchStrategy)
	}
	if s.DatasetSource != importing.SourceCsv && s.DatasetSource != importing.SourceOsm {
		return errors.Errorf("Unknown dataset source '%s'", s.DatasetSource)
	}
	if s.DatasetSource == importing.SourceOsm && s.OsmFile == "" {
		return errors.New("Dataset source 'osm' requires an OSM file")
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return errors.Errorf("Invalid server port %d", s.Server.Port)
	}
	return nil
}
