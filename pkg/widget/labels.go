package widget

import (
	"bytes"
	"embed"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed labels/*.yaml
var labelsFS embed.FS

const DefaultLocale = "en"

// Labels holds every fixed user-visible string of the widget.
type Labels struct {
	BackendOK          string `yaml:"backend-ok"`
	ItemsIndexed       string `yaml:"items-indexed"`
	BackendUnavailable string `yaml:"backend-unavailable"`
	Typing             string `yaml:"typing"`
	ServerErrorPrefix  string `yaml:"server-error-prefix"`
	BlockedFallback    string `yaml:"blocked-fallback"`
	ErrorPrefix        string `yaml:"error-prefix"`
	FullSummaryIntro   string `yaml:"full-summary-intro"`
	NoResponseFallback string `yaml:"no-response-fallback"`
	ImageAltPrefix     string `yaml:"image-alt-prefix"`
	ImageAltFallback   string `yaml:"image-alt-fallback"`
	NetworkError       string `yaml:"network-error"`
}

// DefaultLabels returns the bundled English labels.
func DefaultLabels() Labels {
	l, err := LoadLocale(DefaultLocale)
	if err != nil {
		// the default pack is embedded, so this only fires on a broken build
		panic(err)
	}
	return l
}

// Locales lists the bundled locale packs.
func Locales() []string {
	entries, err := labelsFS.ReadDir("labels")
	if err != nil {
		return nil
	}
	var ret []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			ret = append(ret, name)
		}
	}
	sort.Strings(ret)
	return ret
}

// LoadLocale loads a bundled locale pack by name.
func LoadLocale(locale string) (Labels, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		locale = DefaultLocale
	}
	data, err := labelsFS.ReadFile(path.Join("labels", locale+".yaml"))
	if err != nil {
		return Labels{}, errors.Errorf("unknown locale %q (available: %s)", locale, strings.Join(Locales(), ", "))
	}
	var l Labels
	if err := decodeLabels(data, &l); err != nil {
		return Labels{}, errors.Wrapf(err, "failed to parse locale %q", locale)
	}
	return l, nil
}

// Merge overlays the keys present in a YAML document on top of l. Keys absent from the
// document keep their current value.
func (l Labels) Merge(data []byte) (Labels, error) {
	ret := l
	if err := decodeLabels(data, &ret); err != nil {
		return l, err
	}
	return ret, nil
}

// MergeFile is Merge for a file on disk.
func (l Labels) MergeFile(p string) (Labels, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return l, errors.Wrapf(err, "failed to read labels file %s", p)
	}
	ret, err := l.Merge(data)
	if err != nil {
		return l, errors.Wrapf(err, "failed to parse labels file %s", p)
	}
	return ret, nil
}

func decodeLabels(data []byte, l *Labels) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(l); err != nil && err != io.EOF {
		return err
	}
	return nil
}
