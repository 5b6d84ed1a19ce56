package pkgconfig

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Viper is a Config backed by a single config file plus environment
// overrides.
type Viper struct {
	v *viper.Viper
}

// Option customizes the underlying viper instance before the file is read.
type Option func(v *viper.Viper)

// WithDefaults registers fallbacks for keys absent from both the file and
// the environment.
func WithDefaults(defaults map[string]any) Option {
	return func(v *viper.Viper) {
		for key, value := range defaults {
			v.SetDefault(key, value)
		}
	}
}

// NewViper reads the file at pathFile, whose format follows its extension.
// Any key can be overridden by an environment variable in upper case with
// dots replaced by underscores, so "orderitem.storage.dir" becomes
// ORDERITEM_STORAGE_DIR.
func NewViper(pathFile string, opts ...Option) (*Viper, error) {
	v := viper.New()
	v.SetConfigFile(pathFile)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, opt := range opts {
		opt(v)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return &Viper{v: v}, nil
}

func (vc *Viper) GetInt(key string) int64 { return vc.v.GetInt64(key) }

func (vc *Viper) GetBool(key string) bool { return vc.v.GetBool(key) }

func (vc *Viper) GetString(key string) string { return vc.v.GetString(key) }

// GetDuration accepts Go duration strings such as "30s" or "1m".
func (vc *Viper) GetDuration(key string) time.Duration { return vc.v.GetDuration(key) }

// GetArray reads a comma separated string, or a YAML list, dropping blank
// entries.
func (vc *Viper) GetArray(key string) []string {
	var raw []string
	switch vc.v.Get(key).(type) {
	case nil:
		return nil
	case []any, []string:
		raw = vc.v.GetStringSlice(key)
	default:
		raw = strings.Split(vc.v.GetString(key), ",")
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Close is a no-op; the file is read once at construction.
func (vc *Viper) Close() error {
	return nil
}
