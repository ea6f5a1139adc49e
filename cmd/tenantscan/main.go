// Command tenantscan harvests workspace and dataset metadata from the
// analytics platform's admin API and exports it as flat tables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ventilios/tenantscan/internal/admin"
	"github.com/ventilios/tenantscan/internal/config"
	"github.com/ventilios/tenantscan/internal/export"
	"github.com/ventilios/tenantscan/internal/flatten"
	"github.com/ventilios/tenantscan/internal/scan"
	"github.com/ventilios/tenantscan/internal/sink"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "admin API base URL")
	flag.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "retry budget for GET calls")
	flag.IntVar(&cfg.RetryDelaySecs, "retry-delay", cfg.RetryDelaySecs, "seconds between retry attempts")
	flag.IntVar(&cfg.PollIntervalSecs, "poll-interval", cfg.PollIntervalSecs, "seconds between scan status polls")
	flag.IntVar(&cfg.MaxPolls, "max-polls", cfg.MaxPolls, "poll ceiling per scan job (0 = unlimited)")
	flag.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "workspace listing page size")

	flag.BoolVar(&cfg.Lineage, "lineage", false, "collect lineage (upstream dataflows/datasets)")
	flag.BoolVar(&cfg.DatasourceDetails, "datasource-details", false, "collect datasource details")
	flag.BoolVar(&cfg.DatasetSchema, "dataset-schema", false, "collect dataset schema (tables/columns/measures)")
	flag.BoolVar(&cfg.DatasetExpressions, "dataset-expressions", false, "collect dataset expressions")
	flag.BoolVar(&cfg.RefreshHistory, "refresh-history", false, "enrich datasets with refresh history")

	flag.StringVar(&cfg.NameFilter, "like", "", "workspace name wildcard filter (* and ?)")
	flag.BoolVar(&cfg.Interactive, "interactive", false, "pick workspaces interactively")

	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "base output directory")
	flag.BoolVar(&cfg.Parquet, "parquet", false, "also write Parquet next to each CSV")

	flag.BoolVar(&cfg.Publish, "publish", false, "publish run artifacts to the object store")
	flag.StringVar(&cfg.PostgresDSN, "pg-dsn", cfg.PostgresDSN, "Postgres DSN for the inventory sink (empty = off)")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("tenantscan: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	token := os.Getenv(config.TokenEnvVar)
	if token == "" {
		return fmt.Errorf("no authenticated session: %s is not set", config.TokenEnvVar)
	}

	runID := uuid.NewString()
	started := time.Now()
	stats := scan.NewStats(runID, started)

	writer, err := export.NewWriter(cfg.OutputDir, started, runID, cfg.Parquet)
	if err != nil {
		return err
	}
	log.Printf("run %s writing to %s", runID, writer.Dir)

	// The statistics summary is flushed on every exit path, including
	// failures partway through the pipeline.
	defer func() {
		stats.Finish(time.Now())
		if _, err := writer.WriteStats(stats); err != nil {
			log.Printf("write statistics: %v", err)
		}
	}()

	clientCfg := admin.DefaultClientConfig()
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.Auth = admin.BearerToken{Token: token}
	clientCfg.MaxRetries = cfg.MaxRetries
	clientCfg.RetryDelay = time.Duration(cfg.RetryDelaySecs) * time.Second
	api := admin.NewAPI(clientCfg)

	all, err := api.ListWorkspaces(ctx, cfg.PageSize)
	if err != nil {
		return fmt.Errorf("enumerate workspaces: %w", err)
	}
	log.Printf("enumerated %d workspaces", len(all))

	var picker scan.Picker
	if cfg.Interactive {
		picker = consolePicker{}
	}

	ids, err := scan.Select(all, cfg.NameFilter, picker)
	if err != nil {
		if errors.Is(err, scan.ErrNoWorkspaces) {
			return fmt.Errorf("nothing to scan: %w", err)
		}
		return err
	}
	stats.WorkspacesSelected = len(ids)
	log.Printf("selected %d workspaces to scan", len(ids))

	options := admin.ScanOptions{
		Lineage:            cfg.Lineage,
		DatasourceDetails:  cfg.DatasourceDetails,
		DatasetSchema:      cfg.DatasetSchema,
		DatasetExpressions: cfg.DatasetExpressions,
	}

	scheduler := scan.NewScheduler(api, options,
		time.Duration(cfg.PollIntervalSecs)*time.Second, cfg.MaxPolls, nil)
	batches := scheduler.Run(ctx, ids, stats)

	merger := scan.NewMerger()
	for _, batch := range batches {
		doc, err := scan.ParseDocument(batch.Raw)
		if err != nil {
			stats.AddError("batch %d: %v", batch.BatchID, err)
			log.Printf("batch %d: %v", batch.BatchID, err)
			continue
		}

		for _, issue := range scan.Validate(doc, batch.IDs, cfg.DatasetSchema) {
			stats.AddError("batch %d: %s", batch.BatchID, issue)
			log.Printf("batch %d: %s", batch.BatchID, issue)
		}

		merger.Add(doc)
	}
	merged := merger.Result()

	result := flatten.Flatten(merged, stats)
	if cfg.RefreshHistory {
		flatten.EnrichRefreshHistory(ctx, api, result, stats)
	}

	if _, err := writer.WriteMerged(merged); err != nil {
		return err
	}
	for _, table := range result.Ordered() {
		paths, err := writer.WriteTable(table)
		if err != nil {
			return err
		}
		if len(paths) > 0 {
			log.Printf("wrote %s (%d records)", table.Family, len(table.Records))
		}
	}

	if cfg.PostgresDSN != "" {
		if err := recordInventory(ctx, cfg.PostgresDSN, stats, result); err != nil {
			stats.AddError("postgres inventory: %v", err)
			log.Printf("postgres inventory: %v", err)
		}
	}

	if cfg.Publish {
		uploaded, err := publishArtifacts(ctx, cfg, runID, writer.Artifacts())
		if err != nil {
			stats.AddError("publish artifacts: %v", err)
			log.Printf("publish artifacts: %v", err)
		} else {
			log.Printf("published %d artifacts", len(uploaded))
		}
	}

	log.Printf("run %s done: %d/%d batches succeeded, %d workspaces, %d datasets, %d errors",
		runID, stats.BatchesSucceeded, stats.BatchesSucceeded+stats.BatchesFailed,
		stats.Workspaces, stats.Datasets, len(stats.Errors))
	return nil
}

func recordInventory(ctx context.Context, dsn string, stats *scan.Stats, result *flatten.Result) error {
	inv, err := sink.NewInventory(ctx, dsn)
	if err != nil {
		return err
	}
	defer inv.Close()
	return inv.Record(ctx, stats, result)
}

func publishArtifacts(ctx context.Context, cfg *config.Config, runID string, paths []string) ([]string, error) {
	store, err := sink.NewObjectStore(&sink.ObjectStoreConfig{
		EndpointURL:     cfg.StoreEndpointURL,
		AccessKeyID:     cfg.StoreAccessKey,
		SecretAccessKey: cfg.StoreSecretKey,
		Bucket:          cfg.StoreBucket,
		BasePrefix:      cfg.StoreBasePrefix,
	})
	if err != nil {
		return nil, err
	}
	return store.Publish(ctx, runID, paths)
}
