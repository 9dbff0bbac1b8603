package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

// TargetsFile is the on-disk list of backlinks to check.
//
//	targets:
//	  - backlink: https://example.com
//	    reference: https://oxylabs.io/blog/what-is-web-scraping
type TargetsFile struct {
	Targets []domain.Target `yaml:"targets"`
}

// LoadTargets reads and validates a targets file. Order is preserved.
func LoadTargets(path string) ([]domain.Target, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	return ParseTargets(b)
}

func ParseTargets(b []byte) ([]domain.Target, error) {
	var tf TargetsFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	for i := range tf.Targets {
		tf.Targets[i].Backlink = strings.TrimSpace(tf.Targets[i].Backlink)
		tf.Targets[i].Reference = strings.TrimSpace(tf.Targets[i].Reference)
	}
	if err := ValidateTargets(tf.Targets); err != nil {
		return nil, err
	}
	return tf.Targets, nil
}

// ValidateTargets checks the list without modifying it.
func ValidateTargets(ts []domain.Target) error {
	if len(ts) == 0 {
		return errors.New("targets: list is empty")
	}
	for i, t := range ts {
		if t.Backlink == "" {
			return fmt.Errorf("targets[%d]: backlink is required", i)
		}
		if t.Reference == "" {
			return fmt.Errorf("targets[%d] (%s): reference is required", i, t.Backlink)
		}
	}
	return nil
}
