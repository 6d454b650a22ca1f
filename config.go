package main

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stojg/gradient/regression"
)

const envPrefix = "GRADIENT"

// Config holds everything a fit needs. Start is expressed in the
// standardized feature space the optimizer works in.
type Config struct {
	Data            string
	Features        []string
	Target          string
	Alphas          []float64
	MaxIterations   int
	Start           []float64
	Tolerance       float64
	DivergenceGuard bool

	PlotDir   string
	Bucket    string
	Namespace string
	Region    string
	Debug     bool
}

func addFitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "YAML config file")
	flags.String("data", "", "CSV dataset, a local path or s3://bucket/key")
	flags.StringSlice("features", nil, "feature columns")
	flags.String("target", "", "target column")
	flags.StringSlice("alphas", []string{strconv.FormatFloat(regression.DefaultLearningRate, 'g', -1, 64)}, "learning rates to sweep")
	flags.Int("max-iterations", regression.DefaultMaxIterations, "iteration cap per learning rate")
	flags.StringSlice("start", nil, "starting parameters, intercept first (default all zeros)")
	flags.Float64("tolerance", 0, "stop once no parameter moves more than this; 0 requires exact equality")
	flags.Bool("divergence-guard", false, "abort a run once its parameters or cost stop being finite")
	flags.String("plot-dir", "", "write charts to this directory")
	flags.String("bucket", "", "upload charts to this S3 bucket")
	flags.String("cloudwatch-namespace", "", "publish run metrics to this CloudWatch namespace")
	flags.String("region", "ap-southeast-2", "AWS region")
	flags.BoolP("debug", "d", false, "debug logging")
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.WithStack(err)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config %s", path)
		}
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	alphas, err := parseFloats(v.GetStringSlice("alphas"))
	if err != nil {
		return Config{}, errors.WithMessage(err, "alphas")
	}
	start, err := parseFloats(v.GetStringSlice("start"))
	if err != nil {
		return Config{}, errors.WithMessage(err, "start")
	}
	cfg := Config{
		Data:            v.GetString("data"),
		Features:        splitList(v.GetStringSlice("features")),
		Target:          v.GetString("target"),
		Alphas:          alphas,
		MaxIterations:   v.GetInt("max-iterations"),
		Start:           start,
		Tolerance:       v.GetFloat64("tolerance"),
		DivergenceGuard: v.GetBool("divergence-guard"),
		PlotDir:         v.GetString("plot-dir"),
		Bucket:          v.GetString("bucket"),
		Namespace:       v.GetString("cloudwatch-namespace"),
		Region:          v.GetString("region"),
		Debug:           v.GetBool("debug"),
	}
	return cfg, cfg.Validate()
}

// Validate reports every problem with the config at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Data == "" {
		result = multierror.Append(result, errors.New("data is required"))
	}
	if len(c.Features) == 0 {
		result = multierror.Append(result, errors.New("at least one feature is required"))
	}
	if c.Target == "" {
		result = multierror.Append(result, errors.New("target is required"))
	}
	if len(c.Alphas) == 0 {
		result = multierror.Append(result, errors.New("at least one learning rate is required"))
	}
	for _, a := range c.Alphas {
		if !(a > 0) {
			result = multierror.Append(result, errors.Errorf("learning rate %v must be positive", a))
		}
	}
	if c.MaxIterations <= 0 {
		result = multierror.Append(result, errors.Errorf("max iterations %d must be positive", c.MaxIterations))
	}
	if len(c.Start) > 0 && len(c.Features) > 0 && len(c.Start) != len(c.Features)+1 {
		result = multierror.Append(result, errors.Errorf("start has %d values, expected %d", len(c.Start), len(c.Features)+1))
	}
	if !(c.Tolerance >= 0) {
		result = multierror.Append(result, errors.Errorf("tolerance %v must not be negative", c.Tolerance))
	}
	if (c.Bucket != "" || c.Namespace != "" || isS3(c.Data)) && c.Region == "" {
		result = multierror.Append(result, errors.New("region is required for AWS access"))
	}
	return result.ErrorOrNil()
}

// startingTheta is the configured start or n zeros, where n counts the
// intercept.
func (c Config) startingTheta(n int) ([]float64, error) {
	if len(c.Start) == 0 {
		return make([]float64, n), nil
	}
	if len(c.Start) != n {
		return nil, errors.Wrapf(regression.ErrShapeMismatch, "start has %d values, expected %d", len(c.Start), n)
	}
	return append([]float64(nil), c.Start...), nil
}

func (c Config) descentOptions(alpha float64) []regression.Option {
	opts := []regression.Option{
		regression.WithLearningRate(alpha),
		regression.WithMaxIterations(c.MaxIterations),
		regression.WithTolerance(c.Tolerance),
	}
	if c.DivergenceGuard {
		opts = append(opts, regression.WithDivergenceGuard())
	}
	return opts
}

// splitList accepts both repeated values and comma separated values, the
// latter being what environment variables provide.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseFloats(in []string) ([]float64, error) {
	var out []float64
	for _, s := range splitList(in) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, f)
	}
	return out, nil
}
