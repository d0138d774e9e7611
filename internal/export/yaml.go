package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/focusflow/internal/store"
)

func ToYAML(logs []store.TimeLog, titles map[int64]string, path string) error {
	data, err := yaml.Marshal(buildExport(logs, titles))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}
