package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindWeights locates the model weight file inside a snapshot directory.
// GGUF is preferred; a legacy .ggml/.bin quantization is accepted as a
// fallback. The lexically first match wins so the choice is stable.
func FindWeights(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read model dir: %w", err)
	}
	var gguf, other []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".gguf":
			gguf = append(gguf, name)
		case ".ggml", ".bin":
			other = append(other, name)
		}
	}
	sort.Strings(gguf)
	sort.Strings(other)
	if len(gguf) > 0 {
		return filepath.Join(dir, gguf[0]), nil
	}
	if len(other) > 0 {
		return filepath.Join(dir, other[0]), nil
	}
	return "", fmt.Errorf("no model weights (*.gguf) found in %s", dir)
}
