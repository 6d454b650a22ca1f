package main

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/pkg/errors"
)

// CloudWatch rejects values outside this magnitude.
const maxMetricValue = 1e108

// PutMetricData accepts at most this many datums per call.
const metricBatchSize = 20

// runDatums turns every sweep result into final cost, RMSE and iteration
// metrics, with the learning rate and target as dimensions. Values that
// CloudWatch cannot store are skipped.
func runDatums(results []result, target string, now time.Time) []*cloudwatch.MetricDatum {
	var out []*cloudwatch.MetricDatum
	for _, r := range results {
		dimensions := []*cloudwatch.Dimension{
			{
				Name:  aws.String("Target"),
				Value: aws.String(target),
			},
			{
				Name:  aws.String("Alpha"),
				Value: aws.String(strconv.FormatFloat(r.Alpha, 'g', -1, 64)),
			},
		}
		metrics := []struct {
			name  string
			value float64
			unit  string
		}{
			{"FinalCost", r.Cost, cloudwatch.StandardUnitNone},
			{"RMSE", r.RMSE, cloudwatch.StandardUnitNone},
			{"Iterations", float64(r.Iterations()), cloudwatch.StandardUnitCount},
		}
		for _, m := range metrics {
			if !storable(m.value) {
				continue
			}
			out = append(out, &cloudwatch.MetricDatum{
				MetricName: aws.String(m.name),
				Dimensions: dimensions,
				Timestamp:  aws.Time(now),
				Unit:       aws.String(m.unit),
				Value:      aws.Float64(m.value),
			})
		}
	}
	return out
}

func storable(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) <= maxMetricValue
}

func publishMetrics(ctx context.Context, client cloudwatchiface.CloudWatchAPI, namespace, target string, results []result) error {
	datums := runDatums(results, target, time.Now())
	for start := 0; start < len(datums); start += metricBatchSize {
		end := start + metricBatchSize
		if end > len(datums) {
			end = len(datums)
		}
		_, err := client.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(namespace),
			MetricData: datums[start:end],
		})
		if err != nil {
			return errors.Wrapf(err, "could not publish metrics to %s", namespace)
		}
	}
	return nil
}
