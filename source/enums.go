package source

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

// Kind is how the locator delivers the media.
type Kind int

const (
	// KindSegments is a segmented stream such as an HLS or DASH playlist.
	KindSegments Kind = iota
	// KindFile is a single directly addressable media file.
	KindFile
	// KindContainer is a page or archive wrapping the media.
	KindContainer
)

var kindNames = map[Kind]string{
	KindSegments:  "streaming-segment",
	KindFile:      "direct-file",
	KindContainer: "container-file",
}

var kindAliases = map[string]Kind{
	"streaming-segment": KindSegments,
	"segments":          KindSegments,
	"stream":            KindSegments,
	"hls":               KindSegments,
	"m3u8":              KindSegments,
	"dash":              KindSegments,
	"direct-file":       KindFile,
	"file":              KindFile,
	"direct":            KindFile,
	"container-file":    KindContainer,
	"container":         KindContainer,
	"embed":             KindContainer,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Known reports whether k is one of the declared kinds.
func (k Kind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a kind name or alias, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[normalize(s)]
	return k, ok
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown kind %q", b)
	}
	*k = parsed
	return nil
}

func (Kind) JSONSchema() *jsonschema.Schema {
	return enumSchema([]string{"streaming-segment", "direct-file", "container-file"})
}

// Quality is an ordered resolution tier: SD < HD < FHD < 4K.
type Quality int

const (
	QualitySD Quality = iota
	QualityHD
	QualityFHD
	Quality4K
)

var qualityNames = map[Quality]string{
	QualitySD:  "SD",
	QualityHD:  "HD",
	QualityFHD: "FHD",
	Quality4K:  "4K",
}

var qualityAliases = map[string]Quality{
	"sd":    QualitySD,
	"480p":  QualitySD,
	"360p":  QualitySD,
	"hd":    QualityHD,
	"720p":  QualityHD,
	"fhd":   QualityFHD,
	"1080p": QualityFHD,
	"4k":    Quality4K,
	"uhd":   Quality4K,
	"2160p": Quality4K,
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// Known reports whether q is one of the declared tiers.
func (q Quality) Known() bool {
	_, ok := qualityNames[q]
	return ok
}

// ParseQuality resolves a tier name or a resolution label such as "1080p".
func ParseQuality(s string) (Quality, bool) {
	q, ok := qualityAliases[normalize(s)]
	return q, ok
}

func (q Quality) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *Quality) UnmarshalText(b []byte) error {
	parsed, ok := ParseQuality(string(b))
	if !ok {
		return fmt.Errorf("unknown quality %q", b)
	}
	*q = parsed
	return nil
}

func (Quality) JSONSchema() *jsonschema.Schema {
	return enumSchema([]string{"SD", "HD", "FHD", "4K"})
}

// Reliability is an informational tier and never affects ordering or selection.
type Reliability int

const (
	ReliabilityFast Reliability = iota
	ReliabilityStable
	ReliabilityPremium
)

var reliabilityNames = map[Reliability]string{
	ReliabilityFast:    "Fast",
	ReliabilityStable:  "Stable",
	ReliabilityPremium: "Premium",
}

func (r Reliability) String() string {
	if name, ok := reliabilityNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reliability(%d)", int(r))
}

// Known reports whether r is one of the declared tiers.
func (r Reliability) Known() bool {
	_, ok := reliabilityNames[r]
	return ok
}

// ParseReliability resolves a tier name case-insensitively.
func ParseReliability(s string) (Reliability, bool) {
	return parseNamed(reliabilityNames, s)
}

func (r Reliability) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Reliability) UnmarshalText(b []byte) error {
	parsed, ok := ParseReliability(string(b))
	if !ok {
		return fmt.Errorf("unknown reliability %q", b)
	}
	*r = parsed
	return nil
}

func (Reliability) JSONSchema() *jsonschema.Schema {
	return enumSchema([]string{"Fast", "Stable", "Premium"})
}

// Format is the container of a whole-file download.
type Format int

const (
	FormatMP4 Format = iota
	FormatMKV
)

var formatNames = map[Format]string{
	FormatMP4: "MP4",
	FormatMKV: "MKV",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Known reports whether f is one of the declared containers.
func (f Format) Known() bool {
	_, ok := formatNames[f]
	return ok
}

// ParseFormat resolves a container name, with or without a leading dot.
func ParseFormat(s string) (Format, bool) {
	return parseNamed(formatNames, strings.TrimPrefix(strings.TrimSpace(s), "."))
}

func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Format) UnmarshalText(b []byte) error {
	parsed, ok := ParseFormat(string(b))
	if !ok {
		return fmt.Errorf("unknown format %q", b)
	}
	*f = parsed
	return nil
}

func (Format) JSONSchema() *jsonschema.Schema {
	return enumSchema([]string{"MP4", "MKV"})
}

// Health summarizes the state of a torrent swarm.
type Health int

const (
	HealthPoor Health = iota
	HealthFair
	HealthGood
	HealthExcellent
)

var healthNames = map[Health]string{
	HealthPoor:      "Poor",
	HealthFair:      "Fair",
	HealthGood:      "Good",
	HealthExcellent: "Excellent",
}

func (h Health) String() string {
	if name, ok := healthNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Health(%d)", int(h))
}

// Known reports whether h is one of the declared levels.
func (h Health) Known() bool {
	_, ok := healthNames[h]
	return ok
}

// ParseHealth resolves a level name case-insensitively.
func ParseHealth(s string) (Health, bool) {
	return parseNamed(healthNames, s)
}

// HealthOf derives the health of a swarm from its seeders.
func HealthOf(seeders int) Health {
	switch {
	case seeders >= 100:
		return HealthExcellent
	case seeders >= 25:
		return HealthGood
	case seeders >= 5:
		return HealthFair
	default:
		return HealthPoor
	}
}

func (h Health) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Health) UnmarshalText(b []byte) error {
	parsed, ok := ParseHealth(string(b))
	if !ok {
		return fmt.Errorf("unknown health %q", b)
	}
	*h = parsed
	return nil
}

func (Health) JSONSchema() *jsonschema.Schema {
	return enumSchema([]string{"Excellent", "Good", "Fair", "Poor"})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseNamed[T comparable](names map[T]string, s string) (T, bool) {
	s = normalize(s)
	for value, name := range names {
		if strings.ToLower(name) == s {
			return value, true
		}
	}

	var zero T
	return zero, false
}

func enumSchema(values []string) *jsonschema.Schema {
	enum := lo.Map(values, func(v string, _ int) any { return v })
	return &jsonschema.Schema{Type: "string", Enum: enum}
}
