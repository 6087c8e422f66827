// internal/extract/types.go
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mwiater/fieldreport/internal/classify"
	"github.com/mwiater/fieldreport/internal/resultstree"
	"gopkg.in/yaml.v3"
)

// NameSeparator joins path segments into a record name.
const NameSeparator = " - "

// Kind tags the shape of a TestCaseRecord.
type Kind string

const (
	KindGeneric         Kind = "generic"
	KindPing            Kind = "ping"
	KindCallPerformance Kind = "call-performance"
	KindVoiceQuality    Kind = "voice-quality"
	KindMRAB            Kind = "mrab"
	KindAudioDelay      Kind = "audio-delay"
	KindPlaystore       Kind = "playstore-download"
)

// Kinds lists every record kind in matcher priority order, with ping last.
var Kinds = []Kind{KindMRAB, KindCallPerformance, KindVoiceQuality, KindAudioDelay, KindPlaystore, KindGeneric, KindPing}

// Stat is one named value of a statistic block. A nil Value means N/A.
type Stat struct {
	Name  string
	Value *float64
}

// StatisticBlock maps statistic names to values in source order.
type StatisticBlock []Stat

// Get returns the named statistic, or nil.
func (b StatisticBlock) Get(name string) *float64 {
	for _, s := range b {
		if s.Name == name {
			return s.Value
		}
	}
	return nil
}

// MarshalJSON encodes b as an object, keeping statistic order.
func (b StatisticBlock) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, s.Name); err != nil {
			return nil, err
		}
		writeFloat(&buf, s.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes b as a mapping, keeping statistic order.
func (b StatisticBlock) MarshalYAML() (any, error) {
	return b.yamlNode(), nil
}

func (b StatisticBlock) yamlNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range b {
		node.Content = append(node.Content, scalar("!!str", s.Name), floatNode(s.Value))
	}
	return node
}

// Metric is one metric of a device block.
type Metric struct {
	Name  string
	Stats StatisticBlock
}

// DeviceBlock maps metric names to statistic blocks in source order.
type DeviceBlock []Metric

// Has reports whether the block carries metric.
func (d DeviceBlock) Has(metric string) bool {
	for _, m := range d {
		if m.Name == metric {
			return true
		}
	}
	return false
}

// Metric returns the statistics recorded for metric.
func (d DeviceBlock) Metric(metric string) StatisticBlock {
	for _, m := range d {
		if m.Name == metric {
			return m.Stats
		}
	}
	return nil
}

// Value returns a single statistic, or nil when either level is missing.
func (d DeviceBlock) Value(metric, stat string) *float64 {
	return d.Metric(metric).Get(stat)
}

// MarshalJSON encodes d as an object, keeping metric order.
func (d DeviceBlock) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, m.Name); err != nil {
			return nil, err
		}
		stats, err := m.Stats.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(stats)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes d as a mapping, keeping metric order.
func (d DeviceBlock) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range d {
		node.Content = append(node.Content, scalar("!!str", m.Name), m.Stats.yamlNode())
	}
	return node, nil
}

// newDeviceBlock reads every object-valued member of n as a metric. Scalar
// members such as "Analysis Type" are not metrics and are skipped.
func newDeviceBlock(n *resultstree.Node) DeviceBlock {
	var block DeviceBlock
	for _, m := range n.Members() {
		if !m.Value.IsObject() {
			continue
		}
		block = append(block, Metric{Name: m.Key, Stats: newStatisticBlock(m.Value)})
	}
	return block
}

func newStatisticBlock(n *resultstree.Node) StatisticBlock {
	var block StatisticBlock
	for _, m := range n.Members() {
		block = append(block, Stat{Name: m.Key, Value: m.Value.FloatPtr()})
	}
	return block
}

// TestCaseRecord is one comparable DUT-vs-REF test case found in the tree.
type TestCaseRecord struct {
	Path []string `json:"path" yaml:"path"`
	Name string   `json:"name" yaml:"name"`
	Kind Kind     `json:"kind" yaml:"kind"`

	DUT DeviceBlock `json:"dut" yaml:"dut"`
	REF DeviceBlock `json:"ref" yaml:"ref"`

	Call       *CallPerformance   `json:"callPerformance,omitempty" yaml:"callPerformance,omitempty"`
	MRAB       *MRABComparison    `json:"mrab,omitempty" yaml:"mrab,omitempty"`
	Voice      *VoiceQuality      `json:"voiceQuality,omitempty" yaml:"voiceQuality,omitempty"`
	AudioDelay *AudioDelay        `json:"audioDelay,omitempty" yaml:"audioDelay,omitempty"`
	Playstore  *PlaystoreDownload `json:"playstore,omitempty" yaml:"playstore,omitempty"`
}

// Category returns the first segment of the record name.
func (r TestCaseRecord) Category() string {
	category, _, _ := strings.Cut(r.Name, NameSeparator)
	return category
}

// Verdict classifies one metric statistic of a generic or ping record.
func (r TestCaseRecord) Verdict(metric, stat string) (classify.Verdict, bool) {
	kind, ok := classify.MetricKindFor(metric)
	if !ok {
		return classify.Unknown, false
	}
	return classify.ClassifyOptional(r.DUT.Value(metric, stat), r.REF.Value(metric, stat), kind)
}

// CallCounters are the per-device call setup counters.
type CallCounters struct {
	TotalAttempts            *float64 `json:"totalAttempts" yaml:"totalAttempts"`
	TotalInitiationSuccesses *float64 `json:"totalInitiationSuccesses" yaml:"totalInitiationSuccesses"`
	TotalInitiationFailures  *float64 `json:"totalInitiationFailures" yaml:"totalInitiationFailures"`
	MeanSetupTime            *float64 `json:"meanSetupTime" yaml:"meanSetupTime"`
}

// SuccessRate returns the initiation success percentage, 0 when there were no
// attempts.
func (c CallCounters) SuccessRate() float64 {
	return percentOf(c.TotalInitiationSuccesses, c.TotalAttempts)
}

// FailureRate returns the initiation failure percentage, 0 when there were no
// attempts.
func (c CallCounters) FailureRate() float64 {
	return percentOf(c.TotalInitiationFailures, c.TotalAttempts)
}

func percentOf(part, total *float64) float64 {
	if part == nil || total == nil || *total <= 0 {
		return 0
	}
	return *part / *total * 100
}

// CallPerformance is the payload of a call-performance record.
type CallPerformance struct {
	CallType         string       `json:"callType,omitempty" yaml:"callType,omitempty"`
	DUT              CallCounters `json:"dut" yaml:"dut"`
	REF              CallCounters `json:"ref" yaml:"ref"`
	InitiationPValue float64      `json:"initiationPValue" yaml:"initiationPValue"`
	RetentionPValue  float64      `json:"retentionPValue" yaml:"retentionPValue"`
}

// ShowsRetention reports whether the retention p-value applies, which is only
// the case for mobile-originated calls.
func (c CallPerformance) ShowsRetention() bool { return c.CallType == "MO" }

// MRAB matrix axes.
var (
	MRABCategories = []string{"Pre Call", "In Call", "Post Call"}
	MRABStatistics = []string{"Mean", "Maximum", "Minimum", "Standard Deviation"}
)

// MRABMatrix holds MRAB throughput statistics per call phase.
type MRABMatrix map[string]map[string]*float64

// Get returns one cell of the matrix, or nil.
func (m MRABMatrix) Get(category, stat string) *float64 {
	return m[category][stat]
}

// MRABComparison is the payload of an MRAB record.
type MRABComparison struct {
	DUT           MRABMatrix       `json:"dut" yaml:"dut"`
	REF           MRABMatrix       `json:"ref" yaml:"ref"`
	OverallStatus string           `json:"overallStatus,omitempty" yaml:"overallStatus,omitempty"`
	InCallVerdict classify.Verdict `json:"inCallVerdict" yaml:"inCallVerdict"`
	InCallStatus  string           `json:"inCallStatus" yaml:"inCallStatus"`
}

// MOSStats summarises one direction of voice MOS samples.
type MOSStats struct {
	Mean             *float64 `json:"mean" yaml:"mean"`
	StdDev           *float64 `json:"stdDev" yaml:"stdDev"`
	Max              *float64 `json:"max" yaml:"max"`
	Count            *float64 `json:"count" yaml:"count"`
	PercentLessThan3 *float64 `json:"percentLessThan3" yaml:"percentLessThan3"`
	PercentLessThan2 *float64 `json:"percentLessThan2" yaml:"percentLessThan2"`
}

// VoiceDevice is the uplink and downlink MOS of one device.
type VoiceDevice struct {
	Label string   `json:"label" yaml:"label"`
	UL    MOSStats `json:"ul" yaml:"ul"`
	DL    MOSStats `json:"dl" yaml:"dl"`
}

// VoiceQuality is the payload of a voice-quality record.
type VoiceQuality struct {
	Codec   string        `json:"codec,omitempty" yaml:"codec,omitempty"`
	Devices []VoiceDevice `json:"devices" yaml:"devices"`
}

// Device returns the device with the given label.
func (v VoiceQuality) Device(label string) (VoiceDevice, bool) {
	for _, d := range v.Devices {
		if d.Label == label {
			return d, true
		}
	}
	return VoiceDevice{}, false
}

// DelayStats summarises audio delay samples of one device.
type DelayStats struct {
	Mean        float64 `json:"mean" yaml:"mean"`
	StdDev      float64 `json:"stdDev" yaml:"stdDev"`
	Min         float64 `json:"min" yaml:"min"`
	Max         float64 `json:"max" yaml:"max"`
	Occurrences float64 `json:"occurrences" yaml:"occurrences"`
}

// AudioDelayDevices are the device keys an audio-delay node must carry.
var AudioDelayDevices = []string{"DUT1", "REF1", "DUT2", "REF2"}

// AudioDelay is the payload of an audio-delay record, keyed by device.
type AudioDelay struct {
	Devices map[string]DelayStats `json:"devices" yaml:"devices"`
}

// Playstore table axes.
var (
	PlaystoreLocations = []string{"location1", "location2", "location3"}
	PlaystoreSizes     = []string{"30M", "60M", "100M"}
)

// PlaystoreLocationLabel maps a location key to its radio condition.
func PlaystoreLocationLabel(location string) string {
	switch location {
	case "location1":
		return "Good"
	case "location2":
		return "Moderate"
	case "location3":
		return "Poor"
	}
	return location
}

// PlaystoreCell is one DUT/REF throughput pair.
type PlaystoreCell struct {
	DUT *float64 `json:"dut" yaml:"dut"`
	REF *float64 `json:"ref" yaml:"ref"`
}

// Verdict classifies the cell as throughput.
func (c PlaystoreCell) Verdict() (classify.Verdict, bool) {
	return classify.ClassifyOptional(c.DUT, c.REF, classify.Throughput)
}

// PlaystoreDownload is the payload of a play-store download record, keyed by
// location then file size.
type PlaystoreDownload struct {
	Cells map[string]map[string]PlaystoreCell `json:"cells" yaml:"cells"`
}

// Cell returns the throughput pair for location and size.
func (p PlaystoreDownload) Cell(location, size string) PlaystoreCell {
	return p.Cells[location][size]
}

func writeKey(buf *bytes.Buffer, key string) error {
	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	buf.Write(data)
	buf.WriteByte(':')
	return nil
}

func writeFloat(buf *bytes.Buffer, f *float64) {
	if f == nil {
		buf.WriteString("null")
		return
	}
	buf.WriteString(strconv.FormatFloat(*f, 'g', -1, 64))
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func floatNode(f *float64) *yaml.Node {
	if f == nil {
		return scalar("!!null", "null")
	}
	return scalar("", strconv.FormatFloat(*f, 'g', -1, 64))
}
