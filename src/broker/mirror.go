package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"tpgci/src/contracts"
	"tpgci/src/logger"
	"tpgci/src/render"
)

// DefaultPollInterval is how long Latest waits before reading the topics again
// when no complete set is available yet.
const DefaultPollInterval = time.Second

// Mirror rebuilds config sets from the file and manifest topics.
type Mirror struct {
	broker       Broker
	log          logger.Logger
	pollInterval time.Duration
}

// NewMirror creates a mirror reading from b.
func NewMirror(b Broker, log logger.Logger) *Mirror {
	return &Mirror{broker: b, log: log, pollInterval: DefaultPollInterval}
}

// Latest returns the newest complete config set of env with its manifest. Both
// topics are read up to their current end on every attempt; when no set is
// complete yet, Latest waits and reads again until ctx is done.
//
// A set is complete once every file its manifest lists is present and the
// assembled files hash to the manifest digest. A newer manifest whose files are
// missing gives way to the newest older one that is complete.
func (m *Mirror) Latest(ctx context.Context, env string) (render.ConfigSet, *contracts.Manifest, error) {
	for {
		cs, man, err := m.newest(ctx, env)
		if err != nil {
			return nil, nil, err
		}
		if man != nil {
			m.log.Debug("[Mirror] Received %d files for %s (generated %s)", len(cs), env, man.GeneratedAt)
			return cs, man, nil
		}

		m.log.Debug("[Mirror] No complete set for %s yet", env)
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}
}

// newest reads both topics once. It returns a nil manifest when env has no complete set.
func (m *Mirror) newest(ctx context.Context, env string) (render.ConfigSet, *contracts.Manifest, error) {
	records, err := m.broker.ReadAll(ctx, contracts.TopicConfigManifests)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifests: %w", err)
	}
	var manifests []*contracts.Manifest
	for _, msg := range records {
		var man contracts.Manifest
		if err := json.Unmarshal(msg.Value, &man); err != nil {
			m.log.Error("[Mirror] Skipping malformed manifest at offset %d: %v", msg.Offset, err)
			continue
		}
		if man.Environment == env {
			manifests = append(manifests, &man)
		}
	}
	if len(manifests) == 0 {
		return nil, nil, nil
	}
	// GeneratedAt is RFC3339 UTC, so string order is time order. Ties keep log order.
	sort.SliceStable(manifests, func(i, j int) bool {
		return manifests[i].GeneratedAt < manifests[j].GeneratedAt
	})

	records, err = m.broker.ReadAll(ctx, contracts.TopicConfigFiles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read files: %w", err)
	}
	sets := make(map[string]render.ConfigSet) // set digest -> files
	for _, msg := range records {
		var f contracts.ConfigFile
		if err := json.Unmarshal(msg.Value, &f); err != nil {
			m.log.Error("[Mirror] Skipping malformed file record at offset %d: %v", msg.Offset, err)
			continue
		}
		if f.Environment != env {
			continue
		}
		if sets[f.SetDigest] == nil {
			sets[f.SetDigest] = render.ConfigSet{}
		}
		sets[f.SetDigest][f.Path] = []byte(f.Body)
	}

	for i := len(manifests) - 1; i >= 0; i-- {
		man := manifests[i]
		if cs, ok := complete(man, sets[man.Digest]); ok {
			return cs, man, nil
		}
		m.log.Debug("[Mirror] Manifest %s for %s is incomplete", shortDigest(man.Digest), env)
	}
	return nil, nil, nil
}

// complete returns the subset of received files named by the manifest once all
// of them are present and the whole set hashes to the manifest digest.
func complete(man *contracts.Manifest, received render.ConfigSet) (render.ConfigSet, bool) {
	if len(received) < len(man.Files) {
		return nil, false
	}
	cs := make(render.ConfigSet, len(man.Files))
	for _, name := range man.Files {
		body, ok := received[name]
		if !ok {
			return nil, false
		}
		cs[name] = body
	}
	if cs.Digest() != man.Digest {
		return nil, false
	}
	return cs, true
}
