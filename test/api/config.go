/*
Copyright 2024-2025 the Unikorn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultBaseURL is the public Pet Store.
	DefaultBaseURL = "https://petstore.swagger.io/v2"

	// DefaultAPIKey is the key the public Pet Store accepts.
	DefaultAPIKey = "special-key"
)

type TestConfig struct {
	BaseURL            string
	APIKey             string
	RequestTimeout     time.Duration
	PollMaxAttempts    int
	PollDelay          time.Duration
	LenientMaxAttempts int
	LenientDelay       time.Duration
	FixturePath        string
	SkipIntegration    bool
	DebugLogging       bool
	LogRequests        bool
	LogResponses       bool
}

// DefaultTestConfig returns the configuration used when no environment is set.
func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:            DefaultBaseURL,
		APIKey:             DefaultAPIKey,
		RequestTimeout:     30 * time.Second,
		PollMaxAttempts:    5,
		PollDelay:          time.Second,
		LenientMaxAttempts: 10,
		LenientDelay:       1500 * time.Millisecond,
		FixturePath:        defaultFixturePath(),
		SkipIntegration:    true,
	}
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if required configuration values are missing.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	defaults := DefaultTestConfig()

	config := &TestConfig{
		BaseURL:            getStringWithDefault("PETSTORE_BASE_URL", defaults.BaseURL),
		APIKey:             getStringWithDefault("PETSTORE_API_KEY", defaults.APIKey),
		RequestTimeout:     getDurationWithDefault("REQUEST_TIMEOUT", defaults.RequestTimeout),
		PollMaxAttempts:    getIntWithDefault("POLL_MAX_ATTEMPTS", defaults.PollMaxAttempts),
		PollDelay:          getDurationWithDefault("POLL_DELAY", defaults.PollDelay),
		LenientMaxAttempts: getIntWithDefault("POLL_LENIENT_MAX_ATTEMPTS", defaults.LenientMaxAttempts),
		LenientDelay:       getDurationWithDefault("POLL_LENIENT_DELAY", defaults.LenientDelay),
		FixturePath:        getStringWithDefault("FIXTURE_PATH", defaults.FixturePath),
		SkipIntegration:    getBoolWithDefault("SKIP_INTEGRATION", defaults.SkipIntegration),
		DebugLogging:       getBoolWithDefault("DEBUG_LOGGING", false),
		LogRequests:        getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:       getBoolWithDefault("LOG_RESPONSES", false),
	}

	// Validate required fields
	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

// StrictPoller returns the poller used for existence checks after create.
func (c *TestConfig) StrictPoller(options ...PollerOption) *Poller {
	return NewPoller(c.PollMaxAttempts, c.PollDelay, options...)
}

// LenientPoller returns the poller used for convergence checks after update.
func (c *TestConfig) LenientPoller(options ...PollerOption) *Poller {
	return NewPoller(c.LenientMaxAttempts, c.LenientDelay, options...)
}

func getStringWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	return defaultValue
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func loadEnvFile() {
	envPaths := []string{
		".env",
		filepath.Join(moduleRoot(), "test", ".env"),
	}

	var envPath string
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Load does not override variables already present in the environment.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateRequiredFields checks that all required configuration values are set.
func validateRequiredFields(config *TestConfig) error {
	var problems []string

	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		problems = append(problems, "PETSTORE_BASE_URL")
	}

	if config.APIKey == "" {
		problems = append(problems, "PETSTORE_API_KEY")
	}

	if config.PollMaxAttempts < 1 {
		problems = append(problems, "POLL_MAX_ATTEMPTS")
	}

	if config.LenientMaxAttempts < 1 {
		problems = append(problems, "POLL_LENIENT_MAX_ATTEMPTS")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s. Please set these environment variables or add them to a .env file", ErrMissingConfig, strings.Join(problems, ", "))
	}

	return nil
}

// moduleRoot walks up from this file to the module root.
func moduleRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}

	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func defaultFixturePath() string {
	return filepath.Join(moduleRoot(), "test", "testdata", "pets.json")
}
