package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tpgci/src/contracts"
	"tpgci/src/logger"
	"tpgci/src/render"
)

// Publisher sends generated config sets to a broker.
type Publisher struct {
	broker Broker
	log    logger.Logger
}

// NewPublisher creates a publisher on top of b.
func NewPublisher(b Broker, log logger.Logger) *Publisher {
	return &Publisher{broker: b, log: log}
}

// PublishConfigSet sends one record per file, in file name order, followed by
// the manifest. The manifest is only sent once every file was acknowledged.
func (p *Publisher) PublishConfigSet(ctx context.Context, env string, cs render.ConfigSet, generatedAt time.Time) (*contracts.Manifest, error) {
	setDigest := cs.Digest()
	digests := cs.Digests()
	files := cs.Files()

	for i, name := range files {
		msg := contracts.ConfigFile{
			Environment: env,
			SetDigest:   setDigest,
			Path:        name,
			Digest:      digests[name],
			Index:       i,
			Total:       len(files),
			Body:        string(cs[name]),
		}
		value, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		if err := p.broker.Publish(ctx, contracts.TopicConfigFiles, name, value); err != nil {
			return nil, fmt.Errorf("failed to publish %s: %w", name, err)
		}
	}

	manifest := &contracts.Manifest{
		Environment:   env,
		Digest:        setDigest,
		FormatVersion: render.FormatVersion,
		Files:         files,
		FileDigests:   digests,
		GeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := p.broker.Publish(ctx, contracts.TopicConfigManifests, env, value); err != nil {
		return nil, fmt.Errorf("failed to publish manifest: %w", err)
	}

	p.log.Info("Published %d files for %s (digest %s)", len(files), env, shortDigest(setDigest))
	return manifest, nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
