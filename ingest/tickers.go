package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type tickerFile struct {
	Tickers []string `yaml:"tickers"`
}

// LoadTickers reads the ticker universe from a YAML file with a top-level
// tickers list. Symbols are trimmed, upper-cased and deduplicated.
func LoadTickers(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickers: %w", err)
	}
	return parseTickers(data)
}

func parseTickers(data []byte) ([]string, error) {
	var f tickerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tickers: %w", err)
	}

	seen := make(map[string]bool, len(f.Tickers))
	out := make([]string, 0, len(f.Tickers))
	for _, t := range f.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, errors.New("no tickers configured")
	}
	return out, nil
}
