package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// UnitsConfig holds the unit strings applied when a caller leaves them empty.
type UnitsConfig struct {
	AmountUnit     string `mapstructure:"amountUnit"`
	ProductionUnit string `mapstructure:"productionUnit"`
	CashflowUnit   string `mapstructure:"cashflowUnit"`
}

func DefaultUnitsConfig() UnitsConfig {
	return UnitsConfig{
		AmountUnit:     "EUR",
		ProductionUnit: "kWh",
		CashflowUnit:   "EUR",
	}
}

type UnitsConfigHolder struct {
	current atomic.Value // holds UnitsConfig
}

// NewStaticUnitsConfigHolder returns a holder that never reloads.
func NewStaticUnitsConfigHolder(cfg UnitsConfig) *UnitsConfigHolder {
	holder := &UnitsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewUnitsConfigHolder(appCfg Config) (*UnitsConfigHolder, error) {
	v := viper.New()

	if appCfg.UnitsConfigPath != "" {
		v.SetConfigFile(appCfg.UnitsConfigPath)
	} else {
		v.SetConfigName("units")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/sitebill")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SITEBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultUnitsConfig()
	v.SetDefault("units.amountUnit", defaults.AmountUnit)
	v.SetDefault("units.productionUnit", defaults.ProductionUnit)
	v.SetDefault("units.cashflowUnit", defaults.CashflowUnit)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg UnitsConfig
	if err := v.UnmarshalKey("units", &cfg); err != nil {
		return nil, err
	}
	if err := validateUnitsConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticUnitsConfigHolder(cfg)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated UnitsConfig
			if err := v.UnmarshalKey("units", &updated); err != nil {
				log.Printf("[units-config] reload failed: %v", err)
				return
			}
			if err := validateUnitsConfig(updated); err != nil {
				log.Printf("[units-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[units-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *UnitsConfigHolder) Get() UnitsConfig {
	if h == nil {
		return DefaultUnitsConfig()
	}
	return h.current.Load().(UnitsConfig)
}

func validateUnitsConfig(cfg UnitsConfig) error {
	if strings.TrimSpace(cfg.AmountUnit) == "" {
		return errors.New("units.amountUnit cannot be empty")
	}
	if strings.TrimSpace(cfg.ProductionUnit) == "" {
		return errors.New("units.productionUnit cannot be empty")
	}
	if strings.TrimSpace(cfg.CashflowUnit) == "" {
		return errors.New("units.cashflowUnit cannot be empty")
	}
	return nil
}
