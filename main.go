package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stojg/gradient/dataset"
)

func main() {
	configureLogging()
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func configureLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gradient",
		Short:        "gradient fits linear models by batch gradient descent.",
		SilenceUsage: true,
	}
	cmd.AddCommand(fitCmd())
	return cmd
}

func fitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a linear model to a CSV dataset for one or more learning rates",
		Example: `  gradient fit --data houses.csv --features size --target price --alphas 2.1,1,0.5,0.1 --plot-dir out
  gradient fit --data s3://datasets/houses.csv --features size,bedrooms --target price --bucket charts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cfg.Debug {
				log.SetLevel(log.DebugLevel)
			}
			return fit(cmd.Context(), cfg)
		},
	}
	addFitFlags(cmd.Flags())
	return cmd
}

func fit(ctx context.Context, cfg Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var sess *session.Session
	if cfg.Bucket != "" || cfg.Namespace != "" || isS3(cfg.Data) {
		sess = session.Must(session.NewSession(&aws.Config{Region: aws.String(cfg.Region)}))
	}

	table, err := loadTable(ctx, sess, cfg.Data)
	if err != nil {
		return err
	}
	columns, truth, err := table.Select(cfg.Features, cfg.Target)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"rows":     len(truth),
		"dropped":  table.Len() - len(truth),
		"features": cfg.Features,
		"target":   cfg.Target,
	}).Info("loaded dataset")

	p, err := newProblem(cfg.Features, columns, truth)
	if err != nil {
		return err
	}
	results, err := sweep(ctx, p, cfg)
	if err != nil {
		return err
	}
	base, err := olsBaseline(p)
	if err != nil {
		return err
	}
	report(results, base)

	if cfg.PlotDir != "" || cfg.Bucket != "" {
		plots, err := buildPlots(p, results, base)
		if err != nil {
			return err
		}
		if cfg.PlotDir != "" {
			paths, err := savePlots(cfg.PlotDir, plots)
			if err != nil {
				return err
			}
			log.WithField("files", paths).Info("wrote charts")
		}
		if cfg.Bucket != "" {
			if _, err := uploadPlots(ctx, s3manager.NewUploader(sess), s3.New(sess), cfg.Bucket, cfg.Target, plots); err != nil {
				return err
			}
		}
	}

	if cfg.Namespace != "" {
		if err := publishMetrics(ctx, cloudwatch.New(sess), cfg.Namespace, cfg.Target, results); err != nil {
			return err
		}
		log.WithField("namespace", cfg.Namespace).Info("published run metrics")
	}
	return nil
}

func loadTable(ctx context.Context, sess *session.Session, location string) (*dataset.Table, error) {
	if isS3(location) {
		return readS3Table(ctx, s3manager.NewDownloader(sess), location)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	return dataset.ReadCSV(f)
}
