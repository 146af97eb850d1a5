package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// LoadConfig reads options from a TOML (.toml) or YAML (.yaml, .yml) file.
// Unknown keys are rejected. Relative input and mask paths are resolved
// against the file's directory.
//
// Example TOML:
//
//	input  = "words.tsv"
//	width  = 1200
//	height = 600
//	seed   = 7
//	rotations = [0, 90]
//	formats   = ["svg", "png"]
//	colors    = "gray"
func LoadConfig(path string) (Options, error) {
	if err := errs.ValidatePath(path); err != nil {
		return Options{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Options{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "read config %s", path)
	}

	var opts Options
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		opts, err = decodeTOML(data)
	case ".yaml", ".yml":
		opts, err = decodeYAML(data)
	default:
		return Options{}, errs.New(errs.ErrCodeInvalidFormat, "config %s: unsupported extension (want .toml, .yaml or .yml)", path)
	}
	if err != nil {
		return Options{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}

	dir := filepath.Dir(path)
	opts.Input = resolve(dir, opts.Input)
	opts.MaskPath = resolve(dir, opts.MaskPath)
	return opts, nil
}

func decodeTOML(data []byte) (Options, error) {
	var opts Options
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return Options{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Options{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return opts, nil
}

func decodeYAML(data []byte) (Options, error) {
	var opts Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
