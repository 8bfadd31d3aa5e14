package types

import "strings"

// CaseType classifies a survey case by the kind of multimedia assets it holds.
type CaseType string

const (
	CaseImage  CaseType = "image"
	CaseAudio  CaseType = "audio"
	CaseVideo  CaseType = "video"
	CaseText   CaseType = "text"
	CaseHybrid CaseType = "hybrid"
)

// caseTypePrefixes maps case-directory name prefixes to case types.
// Directories follow the `<type>-<identifier>` convention; anything that
// does not match a known prefix is treated as an image case.
var caseTypePrefixes = map[string]CaseType{
	"audio-":  CaseAudio,
	"video-":  CaseVideo,
	"hybrid-": CaseHybrid,
	"text-":   CaseText,
}

// CaseTypeOf derives the case type from a case directory name.
func CaseTypeOf(name string) CaseType {
	for prefix, t := range caseTypePrefixes {
		if strings.HasPrefix(name, prefix) {
			return t
		}
	}
	return CaseImage
}

// RequiredAssets is the minimum asset count a case folder must contain to be
// considered presentable, per case type. The table is fixed and covers all
// five types; types absent from it are invalid.
var RequiredAssets = map[CaseType]int{
	CaseImage:  3,
	CaseHybrid: 3,
	CaseAudio:  2,
	CaseVideo:  2,
	CaseText:   2,
}

// ShuffleMode governs how the set of valid cases is ordered for presentation.
type ShuffleMode string

const (
	// ShuffleNone presents valid cases in their original relative order.
	ShuffleNone ShuffleMode = "none"
	// ShuffleFull presents a uniformly random permutation of the valid cases.
	ShuffleFull ShuffleMode = "full"
	// ShuffleCategorized shuffles within each case-type bucket and
	// concatenates buckets in the fixed order image, hybrid, video, audio,
	// text.
	ShuffleCategorized ShuffleMode = "categorized"
)

// AssetReference identifies a remote object held by a provider. References
// are transient: they are produced by listing calls and consumed by URL and
// upload calls, never persisted.
type AssetReference struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// UploadResult describes the outcome of a successful upload.
type UploadResult struct {
	Path string `json:"path"`
	ETag string `json:"etag,omitempty"`
	Size int64  `json:"size"`
}

// GeoLocation is the client's approximate location, resolved once per
// process. Unknown values carry the sentinel "Unknown".
type GeoLocation struct {
	Country   string `json:"country"`
	Continent string `json:"continent"`
}

// UnknownLocation is the degraded value returned when geolocation fails.
var UnknownLocation = GeoLocation{Country: "Unknown", Continent: "Unknown"}

// MetricRecord captures one asset's retrieval measurement. Records are
// immutable once created and accumulate append-only in the session log.
type MetricRecord struct {
	Route            string  `json:"route"`
	Provider         string  `json:"provider"`
	Country          string  `json:"country"`
	Continent        string  `json:"continent"`
	FileURL          string  `json:"fileURL"`
	FileName         string  `json:"fileName"`
	FileType         string  `json:"fileType"`
	SizeLabel        string  `json:"sizeLabel"`
	FileSizeHuman    string  `json:"fileSizeHuman"`
	FetchTimeMs      float64 `json:"fetchTimeMs"`
	ThroughputKBps   float64 `json:"throughputKBps"`
	PayloadKB        float64 `json:"payloadKB"`
	HeaderSizeBytes  int64   `json:"headerSizeBytes"`
	MemoryDeltaHuman string  `json:"memoryDeltaHuman"`
}

// MetricColumns is the report column order: the key order of the first
// record, which is the declaration order of MetricRecord's fields.
var MetricColumns = []string{
	"route",
	"provider",
	"country",
	"continent",
	"fileURL",
	"fileName",
	"fileType",
	"sizeLabel",
	"fileSizeHuman",
	"fetchTimeMs",
	"throughputKBps",
	"payloadKB",
	"headerSizeBytes",
	"memoryDeltaHuman",
}
