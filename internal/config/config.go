package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/svcforge/svcforge/internal/branding"
)

const fileType = "yaml"

// Options selects the files Load reads. Empty paths are skipped.
type Options struct {
	// ConfigFile is the project config file. A missing file is not an error
	// unless Explicit is set.
	ConfigFile string
	// Explicit marks ConfigFile as user supplied.
	Explicit bool
	// EnvFile is a dotenv file loaded into the process environment before
	// environment variables are bound. Existing variables win.
	EnvFile string
}

// Defaults returns the built-in settings: Laravel via composer for the base
// application and docker for images and containers.
func Defaults() map[string]any {
	return map[string]any{
		"tools.scaffold": []string{"composer", "create-project", "--prefer-dist", "laravel/laravel", "{{SERVICE_DIR}}"},
		"tools.install":  []string{"composer", "require", "grpc/grpc", "google/protobuf"},
		"tools.build":    []string{"docker", "build", "-t", "{{IMAGE}}", "."},
		"tools.push":     []string{"docker", "push", "{{IMAGE}}"},
		"tools.stop":     []string{"docker", "stop", "{{CONTAINER_NAME}}"},
		"tools.remove":   []string{"docker", "rm", "{{CONTAINER_NAME}}"},
		"tools.run":      []string{"docker", "run", "-d", "-p", "{{PORT}}:{{PORT}}", "--name", "{{CONTAINER_NAME}}", "{{IMAGE}}"},
		"tools.protoc": []string{
			"protoc",
			"--proto_path={{PROTO_DIR}}",
			"--php_out={{OUT_DIR}}",
			"--grpc_out={{OUT_DIR}}",
			"--plugin=protoc-gen-grpc=/usr/local/bin/grpc_php_plugin",
			"{{PROTO_FILES}}",
		},

		"timeouts.scaffold": 600 * time.Second,
		"timeouts.install":  300 * time.Second,
		"timeouts.build":    600 * time.Second,
		"timeouts.push":     300 * time.Second,
		"timeouts.stop":     60 * time.Second,
		"timeouts.remove":   60 * time.Second,
		"timeouts.run":      120 * time.Second,
		"timeouts.protoc":   300 * time.Second,

		"image.repository": "your-docker-repo",
		"image.tag":        "latest",

		"container.port":   50051,
		"container.suffix": "_grpc",

		"doctor.min_versions": map[string]string{
			"composer": "2.0.0",
			"docker":   "20.10.0",
			"protoc":   "3.0.0",
		},
	}
}

// Load merges defaults, the config file, the dotenv file and the
// environment into validated Settings.
func Load(opts Options) (*Settings, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType(fileType)
		if err := v.ReadInConfig(); err != nil {
			if opts.Explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file %s: %w", opts.ConfigFile, err)
			}
		}
	}

	// A tool given as a single string (typically from the environment) is
	// split on whitespace.
	for _, key := range ToolKeys {
		if s, ok := v.Get("tools." + key).(string); ok {
			v.Set("tools."+key, strings.Fields(s))
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

var (
	// Docker reference grammar, host and path components only.
	imageRefPattern = regexp.MustCompile(`^[a-z0-9]+([._-][a-z0-9]+)*(:[0-9]+)?(/[a-z0-9]+([._-][a-z0-9]+)*)*$`)
	imageTagPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]{0,127}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
		return imageRefPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("imagetag", func(fl validator.FieldLevel) bool {
		return imageTagPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks s against its struct constraints.
func Validate(s *Settings) error {
	err := newValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
		}
		return fmt.Errorf("invalid settings: %s: %w", strings.Join(fields, ", "), err)
	}
	return fmt.Errorf("invalid settings: %w", err)
}

// Marshal renders s as YAML, in the layout the config file uses.
func Marshal(s *Settings) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling settings: %w", err)
	}
	return out, nil
}
