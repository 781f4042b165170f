package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"scramble/internal/config"
	"scramble/internal/metrics"
	"scramble/internal/metrics/datadog"
	"scramble/internal/metrics/prompush"

	// register all sinks with the output factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "scramble/internal/sink/all"
)

// main is the entry point for the scramble binary. It loads the pipeline
// config (or assembles one from -input/-output for quick runs), optionally
// initializes a metrics backend, and executes the run.
func main() {
	var (
		cfgPath           string
		inputPath         string
		outputPath        string
		seedFlg           string
		provenancePath    string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/scramble.sample.json", "pipeline config JSON path")
	flag.StringVar(&inputPath, "input", "", "input CSV path; builds an ad hoc pipeline instead of reading -config")
	flag.StringVar(&outputPath, "output", "", "output path for the ad hoc pipeline (.csv or .parquet)")
	flag.StringVar(&seedFlg, "seed", "", "seed for the ad hoc pipeline (integer or free text)")
	flag.StringVar(&provenancePath, "provenance", "", "provenance JSON path for the ad hoc pipeline (default <output>.provenance.json)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	var p config.Pipeline
	if inputPath != "" {
		p = adHocPipeline(inputPath, outputPath, seedFlg, provenancePath)
	} else {
		f, err := os.Open(cfgPath)
		if err != nil {
			fatalf("open config: %v", err)
		}
		if err := json.NewDecoder(f).Decode(&p); err != nil {
			f.Close()
			fatalf("decode config: %v", err)
		}
		f.Close()
	}

	// Validate pipeline config.
	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	jobName := p.Job
	if jobName == "" {
		jobName = "scramble_job"
	}
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → default.
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		// Decide DogStatsD address: flag → env → default.
		addr := dogstatsdAddrFlg
		if addr == "" {
			addr = os.Getenv("DOGSTATSD_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}

		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "scramble.",
			GlobalTags: []string{"job:" + jobName},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, jobName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: source=%s parser=%s output=%s seed=%v",
			p.Source.Kind, p.Parser.Kind, p.Output.Kind, p.Scramble.Seed)
	}

	if err := runPipeline(ctx, p); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// adHocPipeline assembles a pipeline from the quick-run flags: CSV in, CSV or
// parquet out, provenance next to the output. A run file is the better home
// for anything beyond that.
func adHocPipeline(input, output, seed, provenance string) config.Pipeline {
	if output == "" {
		fatalf("-output is required with -input")
	}
	if provenance == "" {
		provenance = output + ".provenance.json"
	}

	kind := "csv"
	if strings.HasSuffix(strings.ToLower(output), ".parquet") {
		kind = "parquet"
	}

	p := config.Pipeline{
		Job:    "scramble_adhoc",
		Source: config.Source{Kind: "file", File: config.SourceFile{Path: input}},
		Parser: config.Parser{Kind: "csv", Options: config.Options{}},
		Output: config.Output{
			Kind:           kind,
			File:           config.OutputFile{Path: output},
			ProvenancePath: provenance,
		},
	}
	if seed != "" {
		p.Scramble.Seed = seed
	}
	return p
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
