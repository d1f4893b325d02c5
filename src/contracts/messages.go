// Package contracts defines the messages published when a config set is generated.
package contracts

// ConfigFile carries one generated project file.
// Published to: tpgci.config.files
// Key: {path}
type ConfigFile struct {
	Environment string `json:"environment"`
	SetDigest   string `json:"set_digest"` // digest of the whole config set this file belongs to
	Path        string `json:"path"`
	Digest      string `json:"digest"` // hex SHA256 of Body
	Index       int    `json:"index"`
	Total       int    `json:"total"`
	Body        string `json:"body"`
}

// Manifest closes a publication: it names every file of the config set.
// Consumers treat a set as complete once every listed file with the manifest's
// digest has arrived.
// Published to: tpgci.config.manifests
// Key: {environment}
type Manifest struct {
	Environment   string            `json:"environment"`
	Digest        string            `json:"digest"`
	FormatVersion int               `json:"format_version"`
	Files         []string          `json:"files"`
	FileDigests   map[string]string `json:"file_digests"`
	GeneratedAt   string            `json:"generated_at"`
}

// TopicNames defines the Redpanda topic names used for config publication
const (
	// TopicConfigFiles contains one record per generated file
	TopicConfigFiles = "tpgci.config.files"

	// TopicConfigManifests contains one record per published config set
	TopicConfigManifests = "tpgci.config.manifests"
)
