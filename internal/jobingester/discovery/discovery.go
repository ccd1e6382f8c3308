package discovery

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/metrics"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/model"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/objectstore"
)

// Discovery enumerates the telemetry files a batch run should process, from a
// local root and/or an object store prefix. A source that cannot be listed is
// fatal to the run; an empty result is not.
type Discovery struct {
	config      configuration.DiscoveryConfig
	store       objectstore.ObjectStore
	metrics     *metrics.Metrics
	maxAttempts int
	maxBackoff  int
}

func New(config configuration.DiscoveryConfig, store objectstore.ObjectStore, m *metrics.Metrics, maxAttempts, maxBackoff int) *Discovery {
	return &Discovery{config: config, store: store, metrics: m, maxAttempts: maxAttempts, maxBackoff: maxBackoff}
}

// Discover returns a deduplicated, order-stable list of source files carrying
// the configured suffix. Files present both locally and remotely are taken
// from the local root. With SyncRemote set, remote entries are downloaded into
// the cache directory before being returned.
func (d *Discovery) Discover(ctx context.Context) ([]model.SourceFile, error) {
	byKey := map[string]model.SourceFile{}

	if d.config.LocalRoot != "" {
		localFiles, err := d.discoverLocal()
		if err != nil {
			return nil, err
		}
		for _, file := range localFiles {
			byKey[dedupKey(file.Key)] = file
		}
	}

	if d.store != nil && d.config.RemotePrefix != "" {
		remoteFiles, err := d.discoverRemote(ctx)
		if err != nil {
			return nil, err
		}
		for _, file := range remoteFiles {
			key := dedupKey(file.Key)
			if _, exists := byKey[key]; exists {
				log.Debugf("Skipping remote %s, already present locally", file.Key)
				continue
			}
			byKey[key] = file
		}
	}

	keys := maps.Keys(byKey)
	slices.Sort(keys)
	files := make([]model.SourceFile, 0, len(keys))
	for _, key := range keys {
		files = append(files, byKey[key])
	}

	if d.config.SyncRemote {
		if err := d.sync(ctx, files); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (d *Discovery) discoverLocal() ([]model.SourceFile, error) {
	var files []model.SourceFile
	err := filepath.WalkDir(d.config.LocalRoot, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), d.config.FileSuffix) {
			return nil
		}
		files = append(files, model.SourceFile{Key: p, Origin: model.OriginLocal, LocalPath: p})
		return nil
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "scanning %s", d.config.LocalRoot)
	}
	return files, nil
}

func (d *Discovery) discoverRemote(ctx context.Context) ([]model.SourceFile, error) {
	keys, err := d.store.List(ctx, d.config.RemotePrefix)
	if err != nil {
		return nil, err
	}
	var files []model.SourceFile
	for _, key := range keys {
		if !strings.HasSuffix(key, d.config.FileSuffix) {
			continue
		}
		files = append(files, model.SourceFile{Key: key, Origin: model.OriginRemote})
	}
	return files, nil
}

// sync downloads every remote entry that has no local copy yet.
func (d *Discovery) sync(ctx context.Context, files []model.SourceFile) error {
	cacheDir := d.config.CacheDir
	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return errors.WithMessagef(err, "creating cache dir %s", cacheDir)
	}

	for i := range files {
		if files[i].LocalPath != "" {
			continue
		}
		dest := filepath.Join(cacheDir, path.Base(files[i].Key))
		if err := objectstore.DownloadWithRetry(ctx, d.store, files[i].Key, dest, d.maxAttempts, d.maxBackoff); err != nil {
			d.metrics.RecordDownloadError()
			return errors.WithMessagef(err, "syncing %s", files[i].Key)
		}
		files[i].LocalPath = dest
	}
	return nil
}

// dedupKey is the logical identity of a file across sources.
func dedupKey(key string) string {
	return path.Base(strings.ReplaceAll(key, "\\", "/"))
}
