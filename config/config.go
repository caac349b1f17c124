// SPDX-License-Identifier: MIT

// Package config loads the run configuration of cmd/pmedian.
//
// Values come, in increasing precedence, from flag defaults, a YAML file
// (pmedian.yaml in the working directory, or --config), PMEDIAN_* environment
// variables and explicitly set flags. A loaded Config is never mutated.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/localsearch"
	"github.com/katalvlaran/pmedian/solution"
	"github.com/katalvlaran/pmedian/transport"
	"github.com/katalvlaran/pmedian/vns"
)

// Sentinel errors.
var (
	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("config: invalid")

	// ErrUnknownMethod is returned for a method name that is not recognized.
	ErrUnknownMethod = errors.New("config: unknown method")

	// ErrUnsupportedMethod is returned for recognized methods this build does
	// not provide (exact MIP and RSSV screening).
	ErrUnsupportedMethod = errors.New("config: method not supported")
)

// Method names a solution method.
type Method string

const (
	TBPMP   Method = "TB_PMP"
	TBCPMP  Method = "TB_CPMP"
	VNSPMP  Method = "VNS_PMP"
	VNSCPMP Method = "VNS_CPMP"
)

// ParseMethod recognizes a method name.
func ParseMethod(name string) (Method, error) {
	switch m := Method(name); m {
	case TBPMP, TBCPMP, VNSPMP, VNSCPMP:
		return m, nil
	}
	switch name {
	case "EXACT_PMP", "EXACT_CPMP", "EXACT_CPMP_BIN", "RSSV":
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedMethod)
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownMethod)
}

// Capacitated reports whether m solves the capacitated problem.
func (m Method) Capacitated() bool { return m == TBCPMP || m == VNSCPMP }

// VNS reports whether m wraps local search in VNS.
func (m Method) VNS() bool { return m == VNSPMP || m == VNSCPMP }

// Config is the full run configuration.
type Config struct {
	Verbose bool `mapstructure:"verbose"`

	P              int    `mapstructure:"p"`
	DistanceMatrix string `mapstructure:"distance_matrix"`
	Weights        string `mapstructure:"weights"`
	Capacities     string `mapstructure:"capacities"`
	Service        string `mapstructure:"service"`
	Output         string `mapstructure:"output"`

	Method          string        `mapstructure:"method"`
	Eval            string        `mapstructure:"eval"`
	Seed            int64         `mapstructure:"seed"`
	Time            time.Duration `mapstructure:"time"`
	Tolerance       float64       `mapstructure:"tolerance"`
	MaxIterations   int           `mapstructure:"max_iterations"`
	InnerIterations int           `mapstructure:"inner_iterations"`
	K               int           `mapstructure:"k"`
	KMax            int           `mapstructure:"k_max"`
	Cover           bool          `mapstructure:"cover"`
	Runs            int           `mapstructure:"runs"`

	Reports        string        `mapstructure:"reports"`
	ReportInterval time.Duration `mapstructure:"report_interval"`
	DBDriver       string        `mapstructure:"db_driver"`
	DBSource       string        `mapstructure:"db_source"`
	Metrics        string        `mapstructure:"metrics"`
	Summary        string        `mapstructure:"summary"`
}

// flag binds a config key to a command-line flag.
type flag struct {
	key, name, short, usage string
	def                     any
}

var flags = []flag{
	{"verbose", "verbose", "v", "log at debug level to the console", false},
	{"p", "p", "p", "number of locations to open", 0},
	{"distance_matrix", "dm", "", "distance file (loc cust distance)", ""},
	{"weights", "w", "w", "customer weights file (cust demand)", ""},
	{"capacities", "c", "c", "location capacities file (loc capacity [subarea])", ""},
	{"service", "service", "", "service label used in report names", ""},
	{"output", "output", "o", "output file prefix", "solution"},
	{"method", "method", "m", "TB_PMP, TB_CPMP, VNS_PMP or VNS_CPMP", string(TBCPMP)},
	{"eval", "eval", "", "confirm evaluation: heuristic or GAPrelax", "heuristic"},
	{"seed", "seed", "", "random seed", int64(1)},
	{"time", "time", "t", "wall-clock limit, seconds or a duration like 10m (0 = none)", time.Duration(0)},
	{"tolerance", "tolerance", "", "minimum objective improvement", localsearch.DefaultTolerance},
	{"max_iterations", "max-iterations", "", "outer iteration cap (0 = none)", 0},
	{"inner_iterations", "inner-iterations", "", "VNS inner sweep budget", vns.DefaultInnerIterations},
	{"k", "k", "k", "initial VNS neighborhood (0 = default)", 0},
	{"k_max", "k-max", "", "largest VNS neighborhood (0 = p/2)", 0},
	{"cover", "cover", "", "restrict VNS replacements to the same subarea", false},
	{"runs", "runs", "", "independent multi-start runs", 1},
	{"reports", "reports", "", "progress report directory (empty disables)", "./reports"},
	{"report_interval", "report-interval", "", "minimum spacing of progress records, seconds or a duration", time.Duration(0)},
	{"db_driver", "db-driver", "", "progress database driver: sqlite or pgx", ""},
	{"db_source", "db-source", "", "progress database DSN", ""},
	{"metrics", "metrics", "", "Prometheus textfile path (empty disables)", ""},
	{"summary", "summary", "", "YAML summary path (empty disables)", ""},
}

// NewFlagSet declares every configuration flag plus --config on a new set.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "YAML config file (default ./pmedian.yaml if present)")
	for _, f := range flags {
		switch d := f.def.(type) {
		case bool:
			fs.BoolP(f.name, f.short, d, f.usage)
		case int:
			fs.IntP(f.name, f.short, d, f.usage)
		case int64:
			fs.Int64P(f.name, f.short, d, f.usage)
		case float64:
			fs.Float64P(f.name, f.short, d, f.usage)
		case string:
			fs.StringP(f.name, f.short, d, f.usage)
		case time.Duration:
			v := seconds(d)
			fs.VarP(&v, f.name, f.short, f.usage)
		}
	}
	return fs
}

// Load parses args and merges the file and environment layers.
func Load(args []string) (Config, error) {
	fs := NewFlagSet("pmedian")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PMEDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, f := range flags {
		if err := v.BindPFlag(f.key, fs.Lookup(f.name)); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", f.name, err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("pmedian")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c, viper.DecodeHook(decodeHook())); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return c, c.Validate()
}

// Validate checks the fields a run cannot do without.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(a, ErrInvalid)...))
	}
	if c.P < 1 {
		bad("p %d", c.P)
	}
	if c.DistanceMatrix == "" {
		bad("distance matrix not given")
	}
	if c.Weights == "" {
		bad("customer weights not given")
	}
	if c.Capacities == "" {
		bad("location capacities not given")
	}
	if _, err := ParseMethod(c.Method); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.mode(); err != nil {
		errs = append(errs, err)
	}
	if c.Tolerance < 0 {
		bad("tolerance %v", c.Tolerance)
	}
	if c.Time < 0 || c.ReportInterval < 0 {
		bad("negative duration")
	}
	if c.MaxIterations < 0 || c.InnerIterations < 0 || c.K < 0 || c.KMax < 0 {
		bad("negative iteration or neighborhood bound")
	}
	if c.KMax > 0 && c.K > c.KMax {
		bad("k %d above k max %d", c.K, c.KMax)
	}
	if c.Runs < 1 {
		bad("runs %d", c.Runs)
	}
	if c.DBDriver != "" && c.DBSource == "" {
		bad("db driver %s without db source", c.DBDriver)
	}
	return errors.Join(errs...)
}

// RunMethod returns the parsed method; call after Validate.
func (c Config) RunMethod() Method {
	m, _ := ParseMethod(c.Method)
	return m
}

// Files returns the instance file names.
func (c Config) Files() instance.Files {
	return instance.Files{
		Distances:  c.DistanceMatrix,
		Weights:    c.Weights,
		Capacities: c.Capacities,
	}
}

// AssignmentPath is <output>_p_<p>_<method>.txt.
func (c Config) AssignmentPath() string {
	return fmt.Sprintf("%s_p_%d_%s.txt", c.Output, c.P, c.Method)
}

// ResultsPath is <output>_results_<method>.csv.
func (c Config) ResultsPath() string {
	return fmt.Sprintf("%s_results_%s.csv", c.Output, c.Method)
}

func (c Config) mode() (solution.Mode, error) {
	m, err := solution.ParseMode(c.Eval)
	if err != nil {
		return m, err
	}
	if m == solution.Exact {
		return m, fmt.Errorf("eval %s: %w", c.Eval, ErrUnsupportedMethod)
	}
	return m, nil
}

// Search returns the local search configuration for one run. ctx bounds the
// relaxed assignment solver.
func (c Config) Search(ctx context.Context, log zerolog.Logger) localsearch.Config {
	m, _ := c.mode()
	ls := localsearch.DefaultConfig()
	ls.Tolerance = c.Tolerance
	ls.MaxIterations = c.MaxIterations
	ls.TimeLimit = c.Time
	ls.Confirm = m
	if m == solution.Relaxed {
		ls.Solver = transport.Solver{Ctx: ctx}
	}
	ls.Logger = log
	return ls
}

// VNS returns the VNS configuration for one run seeded with seed.
func (c Config) VNS(ctx context.Context, log zerolog.Logger, seed int64) vns.Config {
	ls := c.Search(ctx, log)
	ls.MaxIterations = c.InnerIterations
	ls.TimeLimit = 0
	return vns.Config{
		Search:        ls,
		MaxIterations: c.MaxIterations,
		TimeLimit:     c.Time,
		KStart:        c.K,
		KMax:          c.KMax,
		Cover:         c.Cover,
		Seed:          seed,
		Logger:        log,
	}
}
