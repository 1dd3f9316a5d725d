package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/nergy-se/tibbernobo/pkg/api/v1/types"
)

type CliConfig struct {
	TibberURL    string `default:"https://api.tibber.com/v1-beta/gql"`
	TibberToken  string
	TokenFile    string
	TibberHomeID string

	// HubSerial is the full 12 digit serial or the last 3 digits when the
	// hub should be discovered on the local network.
	HubSerial        string
	HubAddress       string
	DiscoveryAddress string `default:":10000"`
	DiscoveryTimeout string `default:"30s"`

	WeekProfileID   string `default:"24"`
	WeekProfileName string `default:"tibber"`

	ControllerType string `default:"nobo"`
	Timezone       string `default:"Europe/Oslo"`

	MqttBroker string
	MqttTopic  string `default:"nergy/tibbernobo/profile"`

	LogLevel string `default:"info"`

	mutex sync.RWMutex
}

func (c *CliConfig) Token() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.TibberToken
}

func (c *CliConfig) SetToken(t string) {
	c.mutex.Lock()
	c.TibberToken = strings.TrimSpace(t)
	c.mutex.Unlock()
}

// LoadToken reads the tibber token from TokenFile if it exists. A token
// given directly takes precedence.
func (c *CliConfig) LoadToken() error {
	if c.TokenFile == "" || c.Token() != "" {
		return nil
	}
	if _, err := os.Stat(c.TokenFile); err == nil {
		b, err := os.ReadFile(c.TokenFile)
		if err != nil {
			return err
		}
		if len(b) == 0 {
			return nil // dont load empty token
		}

		c.SetToken(string(b))
	}
	return nil
}

// ApplyEnvFallback fills settings still empty after loading from the
// unprefixed variables TIBBER_TOKEN, TIBBER_HOME_ID and HUB_LAST_SERIAL used
// by older .env files.
func (c *CliConfig) ApplyEnvFallback(lookup func(string) (string, bool)) {
	if v, ok := lookup("TIBBER_TOKEN"); ok && c.Token() == "" {
		c.SetToken(v)
	}
	if v, ok := lookup("TIBBER_HOME_ID"); ok && c.TibberHomeID == "" {
		c.TibberHomeID = strings.TrimSpace(v)
	}
	if v, ok := lookup("HUB_LAST_SERIAL"); ok && c.HubSerial == "" {
		c.HubSerial = strings.TrimSpace(v)
	}
}

func (c *CliConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *CliConfig) Discovery() (time.Duration, error) {
	return time.ParseDuration(c.DiscoveryTimeout)
}

// Validate reports all missing or invalid settings at once.
func (c *CliConfig) Validate() error {
	var errs []error
	if c.TibberURL == "" {
		errs = append(errs, errors.New("TibberURL is missing"))
	}
	if c.Token() == "" {
		errs = append(errs, errors.New("TibberToken is missing"))
	}
	if c.TibberHomeID == "" {
		errs = append(errs, errors.New("TibberHomeID is missing"))
	}

	switch types.ControllerType(c.ControllerType) {
	case types.ControllerTypeNobo:
		switch {
		case c.HubSerial == "":
			errs = append(errs, errors.New("HubSerial is missing"))
		case !isDigits(c.HubSerial) || (len(c.HubSerial) != 3 && len(c.HubSerial) != 12):
			errs = append(errs, fmt.Errorf("HubSerial must be 3 or 12 digits, got %q", c.HubSerial))
		case c.HubAddress != "" && len(c.HubSerial) != 12:
			errs = append(errs, errors.New("HubSerial must be the full 12 digits when HubAddress is set"))
		}
	case types.ControllerTypeDummy:
	default:
		errs = append(errs, fmt.Errorf("unknown ControllerType %q", c.ControllerType))
	}

	if c.WeekProfileID == "" {
		errs = append(errs, errors.New("WeekProfileID is missing"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid Timezone: %w", err))
	}
	if _, err := c.Discovery(); err != nil {
		errs = append(errs, fmt.Errorf("invalid DiscoveryTimeout: %w", err))
	}
	return errors.Join(errs...)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
