// internal/extract/extract.go
// Package extract walks a results tree and turns every comparable DUT-vs-REF
// subtree into a typed TestCaseRecord.
package extract

import (
	"strings"

	"github.com/mwiater/fieldreport/internal/classify"
	"github.com/mwiater/fieldreport/internal/resultstree"
)

// CoverageKey is the top-level subtree left to the coverage tables.
const CoverageKey = "Coverage Performance"

// PlaystoreSegment marks the subtree holding play-store download results.
const PlaystoreSegment = "5G Auto Data Play-store app DL Stationary"

// visit is the node under inspection together with its path from the root.
type visit struct {
	node *resultstree.Node
	path []string
}

// matcher recognises one kind of test case at a node.
type matcher struct {
	kind  Kind
	match func(v visit) (TestCaseRecord, bool)
}

// matchers run in order at every object node; the first hit wins.
var matchers = []matcher{
	{kind: KindMRAB, match: matchMRAB},
	{kind: KindCallPerformance, match: matchCallPerformance},
	{kind: KindVoiceQuality, match: matchVoiceQuality},
	{kind: KindAudioDelay, match: matchAudioDelay},
	{kind: KindPlaystore, match: matchPlaystore},
	{kind: KindGeneric, match: matchGeneric},
}

// Extract returns every test case found under root, depth first in source key
// order. A matched node is never searched for nested test cases.
func Extract(root *resultstree.Node) []TestCaseRecord {
	return walk(visit{node: root}, true)
}

func walk(v visit, top bool) []TestCaseRecord {
	if !v.node.IsObject() {
		return nil
	}
	for _, m := range matchers {
		if rec, ok := m.match(v); ok {
			rec.Path = append([]string(nil), v.path...)
			rec.Name = strings.Join(v.path, NameSeparator)
			return []TestCaseRecord{rec}
		}
	}

	var out []TestCaseRecord
	for _, member := range v.node.Members() {
		if top && member.Key == CoverageKey {
			continue
		}
		if !member.Value.IsObject() {
			continue
		}
		child := visit{node: member.Value, path: appendPath(v.path, member.Key)}
		out = append(out, walk(child, false)...)
	}
	return out
}

func appendPath(path []string, key string) []string {
	next := make([]string, len(path)+1)
	copy(next, path)
	next[len(path)] = key
	return next
}

func matchMRAB(v visit) (TestCaseRecord, bool) {
	dut, ref := v.node.Child("DUT MRAB"), v.node.Child("REF MRAB")
	if dut == nil || ref == nil {
		return TestCaseRecord{}, false
	}
	if analysis, _ := dut.Child("Analysis Type").Text(); analysis != "mrab_performance" {
		return TestCaseRecord{}, false
	}

	payload := &MRABComparison{
		DUT: newMRABMatrix(dut.Child("MRAB Statistics")),
		REF: newMRABMatrix(ref.Child("MRAB Statistics")),
	}
	payload.OverallStatus, _ = v.node.Child("overallMrabStatus").Text()
	dutInCall, refInCall := payload.DUT.Get("In Call", "Mean"), payload.REF.Get("In Call", "Mean")
	if verdict, ok := classify.ClassifyOptional(dutInCall, refInCall, classify.Throughput); ok {
		payload.InCallVerdict = verdict
	}
	payload.InCallStatus = classify.MRABStatus(dutInCall, refInCall)

	return TestCaseRecord{Kind: KindMRAB, MRAB: payload}, true
}

func newMRABMatrix(n *resultstree.Node) MRABMatrix {
	matrix := make(MRABMatrix, len(MRABCategories))
	for _, category := range MRABCategories {
		row := make(map[string]*float64, len(MRABStatistics))
		for _, stat := range MRABStatistics {
			row[stat] = n.Get(category, stat).FloatPtr()
		}
		matrix[category] = row
	}
	return matrix
}

func matchCallPerformance(v visit) (TestCaseRecord, bool) {
	if !v.node.Has("DUT") || !v.node.Has("REF") {
		return TestCaseRecord{}, false
	}
	initiation, ok := v.node.Child("initiation_p_value").Float()
	if !ok {
		return TestCaseRecord{}, false
	}
	retention, ok := v.node.Child("retention_p_value").Float()
	if !ok {
		return TestCaseRecord{}, false
	}

	payload := &CallPerformance{
		CallType:         callType(v.path),
		DUT:              newCallCounters(v.node.Child("DUT")),
		REF:              newCallCounters(v.node.Child("REF")),
		InitiationPValue: initiation,
		RetentionPValue:  retention,
	}
	return TestCaseRecord{Kind: KindCallPerformance, Call: payload}, true
}

func newCallCounters(n *resultstree.Node) CallCounters {
	return CallCounters{
		TotalAttempts:            n.Child("total_attempts").FloatPtr(),
		TotalInitiationSuccesses: n.Child("total_initiation_successes").FloatPtr(),
		TotalInitiationFailures:  n.Child("total_initiation_failures").FloatPtr(),
		MeanSetupTime:            n.Child("mean_setup_time").FloatPtr(),
	}
}

// callType finds a standalone MO or MT token in the path.
func callType(path []string) string {
	for _, segment := range path {
		for _, field := range strings.Fields(segment) {
			if field == "MO" || field == "MT" {
				return field
			}
		}
	}
	return ""
}

func matchVoiceQuality(v visit) (TestCaseRecord, bool) {
	var hasDUT, hasREF bool
	for _, m := range v.node.Members() {
		hasDUT = hasDUT || strings.HasPrefix(m.Key, "DUT")
		hasREF = hasREF || strings.HasPrefix(m.Key, "REF")
		if !m.Value.Has("ul_mos_stats") || !m.Value.Has("dl_mos_stats") {
			return TestCaseRecord{}, false
		}
	}
	if !hasDUT || !hasREF {
		return TestCaseRecord{}, false
	}

	payload := &VoiceQuality{Codec: codec(v.path)}
	for _, m := range v.node.Members() {
		payload.Devices = append(payload.Devices, VoiceDevice{
			Label: m.Key,
			UL:    newMOSStats(m.Value.Child("ul_mos_stats")),
			DL:    newMOSStats(m.Value.Child("dl_mos_stats")),
		})
	}
	return TestCaseRecord{Kind: KindVoiceQuality, Voice: payload}, true
}

func newMOSStats(n *resultstree.Node) MOSStats {
	return MOSStats{
		Mean:             n.Child("mean").FloatPtr(),
		StdDev:           n.Child("std_dev").FloatPtr(),
		Max:              n.Child("max").FloatPtr(),
		Count:            n.Child("count").FloatPtr(),
		PercentLessThan3: n.Child("percent_less_than_3").FloatPtr(),
		PercentLessThan2: n.Child("percent_less_than_2").FloatPtr(),
	}
}

func codec(path []string) string {
	name := strings.Join(path, NameSeparator)
	switch {
	case strings.Contains(name, "AMR NB"):
		return "AMR NB"
	case strings.Contains(name, "AMR WB"):
		return "AMR WB"
	case strings.Contains(name, "EVS"):
		return "EVS WB"
	}
	return ""
}

func matchAudioDelay(v visit) (TestCaseRecord, bool) {
	payload := &AudioDelay{Devices: make(map[string]DelayStats, len(AudioDelayDevices))}
	for _, device := range AudioDelayDevices {
		stats, ok := newDelayStats(v.node.Child(device))
		if !ok {
			return TestCaseRecord{}, false
		}
		payload.Devices[device] = stats
	}
	return TestCaseRecord{Kind: KindAudioDelay, AudioDelay: payload}, true
}

func newDelayStats(n *resultstree.Node) (DelayStats, bool) {
	var stats DelayStats
	fields := []struct {
		key string
		dst *float64
	}{
		{"mean", &stats.Mean},
		{"std_dev", &stats.StdDev},
		{"min", &stats.Min},
		{"max", &stats.Max},
		{"occurrences", &stats.Occurrences},
	}
	for _, f := range fields {
		value, ok := n.Child(f.key).Float()
		if !ok {
			return DelayStats{}, false
		}
		*f.dst = value
	}
	return stats, true
}

func matchPlaystore(v visit) (TestCaseRecord, bool) {
	found := false
	for _, segment := range v.path {
		if segment == PlaystoreSegment {
			found = true
			break
		}
	}
	if !found {
		return TestCaseRecord{}, false
	}

	payload := &PlaystoreDownload{Cells: make(map[string]map[string]PlaystoreCell, len(PlaystoreLocations))}
	for _, location := range PlaystoreLocations {
		row := make(map[string]PlaystoreCell, len(PlaystoreSizes))
		for _, size := range PlaystoreSizes {
			row[size] = PlaystoreCell{
				DUT: playstoreThroughput(v.node, location, "DUT", size),
				REF: playstoreThroughput(v.node, location, "REF", size),
			}
		}
		payload.Cells[location] = row
	}
	return TestCaseRecord{Kind: KindPlaystore, Playstore: payload}, true
}

// playstoreThroughput reads the first test case recorded for one download.
func playstoreThroughput(n *resultstree.Node, location, device, size string) *float64 {
	members := n.Get(location, device, size).Members()
	if len(members) == 0 {
		return nil
	}
	return members[0].Value.Child("overall_average_throughput").FloatPtr()
}

func matchGeneric(v visit) (TestCaseRecord, bool) {
	var dutNode, refNode *resultstree.Node
	matched := false
	for _, m := range v.node.Members() {
		key := strings.ToLower(m.Key)
		switch {
		case strings.Contains(key, "dut"):
			dutNode, matched = m.Value, true
		case strings.Contains(key, "ref"):
			refNode, matched = m.Value, true
		}
	}
	if !matched {
		return TestCaseRecord{}, false
	}
	if len(dutNode.Members()) == 0 && len(refNode.Members()) == 0 {
		return TestCaseRecord{}, false
	}

	rec := TestCaseRecord{
		Kind: KindGeneric,
		DUT:  newDeviceBlock(dutNode),
		REF:  newDeviceBlock(refNode),
	}
	if rec.DUT.Has("Ping RTT") || rec.REF.Has("Ping RTT") {
		rec.Kind = KindPing
	}
	return rec, true
}
