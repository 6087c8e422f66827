package commands

import (
	"sync"
	"time"

	"github.com/mwiater/fieldreport/internal/appconfig"
	"github.com/mwiater/fieldreport/internal/coverage"
	"github.com/mwiater/fieldreport/internal/extract"
	"github.com/mwiater/fieldreport/internal/logging"
	"github.com/mwiater/fieldreport/internal/report"
	"github.com/mwiater/fieldreport/internal/resultstree"
	"github.com/mwiater/fieldreport/internal/rsrp"
	"github.com/sirupsen/logrus"
)

var (
	cacheOnce sync.Once
	cache     *extract.Cache
	cacheErr  error
)

func recordCache(size int) (*extract.Cache, error) {
	cacheOnce.Do(func() {
		cache, cacheErr = extract.NewCache(size)
	})
	return cache, cacheErr
}

// loadRecords reads the configured results document and extracts its test
// cases through the process-wide cache.
func loadRecords(cfg appconfig.Config) (*resultstree.Document, []extract.TestCaseRecord, error) {
	doc, err := resultstree.LoadFile(cfg.Input)
	if err != nil {
		return nil, nil, err
	}
	c, err := recordCache(cfg.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	records := c.Records(doc)
	logging.GetLogger().WithFields(logrus.Fields{
		"input":   doc.Path,
		"digest":  doc.Digest,
		"records": len(records),
		"misses":  c.Misses(),
	}).Debug("results extracted")
	return doc, records, nil
}

// buildDocument assembles the report view model, including the auxiliary RSRP
// series and the coverage tables. Every configured run keeps its slot; an
// unreadable CSV becomes an empty series that renders as a placeholder.
func buildDocument(cfg appconfig.Config, doc *resultstree.Document, records []extract.TestCaseRecord) report.Document {
	series, err := rsrp.LoadRuns(cfg.RSRPDir, cfg.RSRPRuns)
	if err != nil {
		logging.GetLogger().WithField("dir", cfg.RSRPDir).Debug("rendering placeholders for unreadable rsrp runs")
	}
	return report.Build(records, report.Options{
		Title:       cfg.Title,
		Source:      doc.Path,
		Digest:      doc.Digest,
		GeneratedAt: time.Now(),
		RSRP:        series,
		Coverage:    coverage.Parse(doc.Root),
	})
}

// loadDocument runs the whole pipeline from the results file to the view model.
func loadDocument(cfg appconfig.Config) (report.Document, error) {
	doc, records, err := loadRecords(cfg)
	if err != nil {
		return report.Document{}, err
	}
	return buildDocument(cfg, doc, records), nil
}
