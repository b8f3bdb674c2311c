package core

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Daraan/remenv/util/errs"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Viper-backed application config.
//
// All access goes through the package-level funcs; props are read/written
// under a RWMutex since viper itself is not concurrency-safe.
type AppConfig struct {
	vp *viper.Viper
	mu sync.RWMutex
}

var (
	appConfig = newAppConfig()
)

func newAppConfig() *AppConfig {
	a := &AppConfig{vp: viper.New()}
	a.vp.SetConfigType("yaml")
	a.vp.AutomaticEnv()
	a.vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	return a
}

func (a *AppConfig) SetProp(prop string, val any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.vp.Set(prop, val)
}

func (a *AppConfig) SetDefProp(prop string, defVal any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.vp.SetDefault(prop, defVal)
}

func (a *AppConfig) HasProp(prop string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.vp.IsSet(prop)
}

func (a *AppConfig) GetPropStr(prop string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.vp.GetString(prop)
}

func (a *AppConfig) GetPropInt(prop string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cast.ToInt(a.vp.Get(prop))
}

func (a *AppConfig) GetPropBool(prop string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cast.ToBool(a.vp.Get(prop))
}

// Get prop as duration.
//
// Values like '20ms' parse as durations; a bare number is interpreted in
// the given unit.
func (a *AppConfig) GetPropDur(prop string, unit time.Duration) time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v := a.vp.Get(prop)
	if s, ok := v.(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return time.Duration(cast.ToInt64(v)) * unit
}

func (a *AppConfig) LoadConfigFromReader(reader io.Reader) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.vp.MergeConfig(reader); err != nil {
		return errs.WrapErrf(err, "failed to load config from reader")
	}
	return nil
}

func (a *AppConfig) LoadConfigFromStr(s string) error {
	return a.LoadConfigFromReader(strings.NewReader(s))
}

func (a *AppConfig) LoadConfigFromFile(configFile string) error {
	f, err := os.Open(configFile)
	if err != nil {
		return errs.WrapErrf(err, "failed to open config file, %v", configFile)
	}
	defer f.Close()
	return a.LoadConfigFromReader(f)
}

func SetProp(prop string, val any) {
	appConfig.SetProp(prop, val)
}

func SetDefProp(prop string, defVal any) {
	appConfig.SetDefProp(prop, defVal)
}

func HasProp(prop string) bool {
	return appConfig.HasProp(prop)
}

func GetPropStr(prop string) string {
	return appConfig.GetPropStr(prop)
}

func GetPropInt(prop string) int {
	return appConfig.GetPropInt(prop)
}

func GetPropBool(prop string) bool {
	return appConfig.GetPropBool(prop)
}

func GetPropDur(prop string, unit time.Duration) time.Duration {
	return appConfig.GetPropDur(prop, unit)
}

func LoadConfigFromStr(s string) error {
	return appConfig.LoadConfigFromStr(s)
}

func LoadConfigFromFile(configFile string) error {
	return appConfig.LoadConfigFromFile(configFile)
}
