/*
Package subscribers loads who gets notified about which tickers, either from
a static YAML file or from a Postgres table.
*/
package subscribers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shanehull/oslonotify/internal/types"
)

type fileEntry struct {
	ID      string   `yaml:"id"`
	Address string   `yaml:"address"`
	Tickers []string `yaml:"tickers"`
}

type fileDocument struct {
	Subscribers []fileEntry `yaml:"subscribers"`
}

// FileDirectory is a fixed set of subscribers read once from YAML.
type FileDirectory struct {
	subscribers []types.Subscriber
}

// LoadFile reads a subscribers YAML file. An entry without an id is keyed by
// its address.
func LoadFile(path string) (*FileDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read subscribers file: %w", types.ErrConfig, err)
	}
	return Parse(data)
}

// Parse builds a FileDirectory from YAML bytes.
func Parse(data []byte) (*FileDirectory, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse subscribers yaml: %w", types.ErrConfig, err)
	}

	entries := make([]rawSubscriber, 0, len(doc.Subscribers))
	for _, e := range doc.Subscribers {
		entries = append(entries, rawSubscriber{ID: e.ID, Address: e.Address, Tickers: e.Tickers})
	}

	subs, err := buildSubscribers(entries)
	if err != nil {
		return nil, err
	}
	return &FileDirectory{subscribers: subs}, nil
}

func (d *FileDirectory) List(_ context.Context) ([]types.Subscriber, error) {
	return d.subscribers, nil
}

type rawSubscriber struct {
	ID      string
	Address string
	Tickers []string
}

func buildSubscribers(entries []rawSubscriber) ([]types.Subscriber, error) {
	seen := make(map[string]bool, len(entries))
	subs := make([]types.Subscriber, 0, len(entries))

	for i, e := range entries {
		address := strings.TrimSpace(e.Address)
		if address == "" {
			return nil, fmt.Errorf("%w: subscriber #%d has no address", types.ErrConfig, i+1)
		}

		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = address
		}
		if strings.ContainsAny(id, " \t\r\n") {
			return nil, fmt.Errorf("%w: subscriber id %q contains whitespace", types.ErrConfig, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate subscriber id %q", types.ErrConfig, id)
		}
		seen[id] = true

		subs = append(subs, types.NewSubscriber(id, address, e.Tickers))
	}
	return subs, nil
}
