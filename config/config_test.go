package config

import (
	"netcov/util"
	"os"
	"path"
	"testing"
	"time"
)

func writeFile(t *testing.T, name string, content string) string {
	filename := path.Join(t.TempDir(), name)
	err := os.WriteFile(filename, []byte(content), 0644)
	util.AssertNil(t, err)
	return filename
}

func TestLoad_defaults(t *testing.T) {
	// Act
	settings, err := Load("", "")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, Default(), settings)
	util.AssertEqual(t, 0.5, settings.CellSize)
	util.AssertEqual(t, 0.01, settings.SearchRadius)
	util.AssertEqual(t, "ring", settings.SearchStrategy)
	util.AssertEqual(t, 8088, settings.Server.Port)
	util.AssertEqual(t, 5, settings.Geocoder.Retries)
}

func TestLoad_settingsFile(t *testing.T) {
	// Arrange
	settingsFile := writeFile(t, "settings.yaml", `
cell_size: 0.25
search_strategy: border
border_tolerance: 0.02
data_folder: /var/lib/netcov
geocoder:
  retries: 2
  timeout: 1500ms
redis:
  addr: localhost:6379
  ttl: 1h
`)

	// Act
	settings, err := Load(settingsFile, "")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 0.25, settings.CellSize)
	util.AssertEqual(t, "border", settings.SearchStrategy)
	util.AssertEqual(t, 0.02, settings.BorderTolerance)
	util.AssertEqual(t, "/var/lib/netcov", settings.DataFolder)
	util.AssertEqual(t, 2, settings.Geocoder.Retries)
	util.AssertEqual(t, 1500*time.Millisecond, settings.Geocoder.Timeout)
	util.AssertEqual(t, "localhost:6379", settings.Redis.Addr)
	util.AssertEqual(t, time.Hour, settings.Redis.TTL)

	// Not set within the file
	util.AssertEqual(t, 0.01, settings.SearchRadius)
	util.AssertEqual(t, "https://api-adresse.data.gouv.fr", settings.Geocoder.BaseUrl)
}

func TestLoad_environmentOverridesFile(t *testing.T) {
	// Arrange
	settingsFile := writeFile(t, "settings.yaml", "cell_size: 0.25\nserver:\n  port: 9000\n")
	t.Setenv(EnvPrefix+"CELL_SIZE", "1.5")
	t.Setenv(EnvPrefix+"GEOCODER_TIMEOUT", "10s")

	// Act
	settings, err := Load(settingsFile, "")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 1.5, settings.CellSize)
	util.AssertEqual(t, 10*time.Second, settings.Geocoder.Timeout)
	util.AssertEqual(t, 9000, settings.Server.Port)
}

func TestLoad_envFile(t *testing.T) {
	// Arrange
	envFile := writeFile(t, ".env", EnvPrefix+"SEARCH_RADIUS=0.05\n"+EnvPrefix+"REDIS_DB=3\n")
	t.Cleanup(func() {
		os.Unsetenv(EnvPrefix + "SEARCH_RADIUS")
		os.Unsetenv(EnvPrefix + "REDIS_DB")
	})

	// Act
	settings, err := Load("", envFile)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 0.05, settings.SearchRadius)
	util.AssertEqual(t, 3, settings.Redis.DB)
}

func TestLoad_missingEnvFileIsIgnored(t *testing.T) {
	settings, err := Load("", path.Join(t.TempDir(), ".env"))

	util.AssertNil(t, err)
	util.AssertNotNil(t, settings)
}

func TestLoad_missingSettingsFile(t *testing.T) {
	settings, err := Load(path.Join(t.TempDir(), "settings.yaml"), "")

	util.AssertNil(t, settings)
	util.AssertMatch(t, "Unable to read settings file", err.Error())
}

func TestLoad_invalidEnvironmentValue(t *testing.T) {
	t.Setenv(EnvPrefix+"SERVER_PORT", "http")

	settings, err := Load("", "")

	util.AssertNil(t, settings)
	util.AssertMatch(t, "Invalid value 'http' of environment variable NETWORK_COVERAGE_API_SERVER_PORT", err.Error())
}

func TestValidate(t *testing.T) {
	tests := map[string]func(s *Settings){
		"Cell size must be positive":        func(s *Settings) { s.CellSize = 0 },
		"Search radius must be positive":    func(s *Settings) { s.SearchRadius = -1 },
		"Border tolerance must not be":      func(s *Settings) { s.BorderTolerance = -0.1 },
		"Unknown search strategy 'spiral'":  func(s *Settings) { s.SearchStrategy = "spiral" },
		"Unknown dataset source 'postgres'": func(s *Settings) { s.DatasetSource = "postgres" },
		"Dataset source 'osm' requires":     func(s *Settings) { s.DatasetSource = "osm" },
		"Invalid server port 0":             func(s *Settings) { s.Server.Port = 0 },
	}

	for expectedMessage, modify := range tests {
		t.Run(expectedMessage, func(t *testing.T) {
			settings := Default()
			modify(settings)

			err := settings.Validate()

			util.AssertNotNil(t, err)
			util.AssertMatch(t, expectedMessage, err.Error())
		})
	}

	util.AssertNil(t, Default().Validate())
}
