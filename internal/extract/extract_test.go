package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mwiater/fieldreport/internal/classify"
	"github.com/mwiater/fieldreport/internal/resultstree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"
)

func parse(t *testing.T, doc string) *resultstree.Node {
	t.Helper()
	root, err := resultstree.Parse([]byte(doc))
	require.NoError(t, err)
	return root
}

func TestExtractSimpleGeneric(t *testing.T) {
	root := parse(t, `{"A": {"DUT": {"Throughput": {"Mean": 100}}, "REF": {"Throughput": {"Mean": 90}}}}`)

	records := Extract(root)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "A", rec.Name)
	assert.Equal(t, KindGeneric, rec.Kind)
	require.NotNil(t, rec.DUT.Value("Throughput", "Mean"))
	require.NotNil(t, rec.REF.Value("Throughput", "Mean"))
	assert.Equal(t, 100.0, *rec.DUT.Value("Throughput", "Mean"))
	assert.Equal(t, 90.0, *rec.REF.Value("Throughput", "Mean"))

	verdict, ok := rec.Verdict("Throughput", "Mean")
	require.True(t, ok)
	assert.Equal(t, classify.Excellent, verdict)
}

func TestExtractNamesAndOrder(t *testing.T) {
	root := parse(t, `{
		"5G Data": {
			"UDP DL": {"DUT": {"Throughput": {"Mean": 1}}, "REF": {"Throughput": {"Mean": 1}}},
			"HTTPS UL": {"Drive": {"DUT": {"Throughput": {"Mean": 2}}, "REF": {}}}
		},
		"LTE Data": {"UDP UL": {"REF": {"Jitter": {"Mean": 3}}}}
	}`)

	records := Extract(root)
	var names []string
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{
		"5G Data - UDP DL",
		"5G Data - HTTPS UL - Drive",
		"LTE Data - UDP UL",
	}, names)
	assert.Equal(t, "5G Data", records[1].Category())
	assert.Equal(t, []string{"5G Data", "HTTPS UL", "Drive"}, records[1].Path)
	assert.Empty(t, records[2].DUT)
}

func TestExtractSkipsCoverage(t *testing.T) {
	root := parse(t, `{
		"Coverage Performance": {"Drive": {"DUT": {"Throughput": {"Mean": 1}}, "REF": {"Throughput": {"Mean": 1}}}},
		"Other": {"Coverage Performance": {"DUT": {"Throughput": {"Mean": 1}}}}
	}`)

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, "Other - Coverage Performance", records[0].Name)
}

func TestExtractPing(t *testing.T) {
	root := parse(t, `{"Ping": {"DUT": {"Ping RTT": {"avg": 20, "min": 10}}, "REF": {"Ping RTT": {"avg": 25}}}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, KindPing, records[0].Kind)
	assert.Equal(t, 20.0, *records[0].DUT.Value("Ping RTT", "avg"))
	assert.Nil(t, records[0].REF.Value("Ping RTT", "min"))
}

func TestExtractGenericLastKeyWins(t *testing.T) {
	root := parse(t, `{"T": {
		"DUT old": {"Throughput": {"Mean": 1}},
		"REF": {"Throughput": {"Mean": 5}},
		"dut new": {"Throughput": {"Mean": 2}},
		"Analysis Type": "data_performance"
	}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, 2.0, *records[0].DUT.Value("Throughput", "Mean"))
	assert.Equal(t, 5.0, *records[0].REF.Value("Throughput", "Mean"))
}

func TestExtractGenericNeedsMembers(t *testing.T) {
	root := parse(t, `{"T": {"DUT": {}, "REF": "n/a", "inner": {"DUT": {"Jitter": {"Mean": 1}}}}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, "T - inner", records[0].Name)
}

func TestExtractDeviceBlockNonNumericIsNA(t *testing.T) {
	root := parse(t, `{"T": {"DUT": {"Throughput": {"Mean": "fast", "Maximum": null}, "Analysis Type": "data_performance"}}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Throughput"}, metricNames(records[0].DUT))
	assert.Nil(t, records[0].DUT.Value("Throughput", "Mean"))
	assert.Nil(t, records[0].DUT.Value("Throughput", "Maximum"))
}

func metricNames(d DeviceBlock) []string {
	var names []string
	for _, m := range d {
		names = append(names, m.Name)
	}
	return names
}

func TestExtractMRAB(t *testing.T) {
	root := parse(t, `{"5G VoNR MRAB Stationary": {
		"DUT MRAB": {"Analysis Type": "mrab_performance", "MRAB Statistics": {"In Call": {"Mean": 85, "Maximum": 120}}},
		"REF MRAB": {"Analysis Type": "mrab_performance", "MRAB Statistics": {"In Call": {"Mean": 100}}},
		"overallMrabStatus": "Marginal Fail"
	}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, KindMRAB, rec.Kind)
	require.NotNil(t, rec.MRAB)
	assert.Equal(t, 120.0, *rec.MRAB.DUT.Get("In Call", "Maximum"))
	assert.Nil(t, rec.MRAB.DUT.Get("Pre Call", "Mean"))
	assert.Equal(t, "Marginal Fail", rec.MRAB.OverallStatus)
	assert.Equal(t, classify.MarginalFail, rec.MRAB.InCallVerdict)
	assert.Equal(t, "Marginal Fail", rec.MRAB.InCallStatus)
}

func TestExtractMRABRequiresAnalysisType(t *testing.T) {
	root := parse(t, `{"M": {
		"DUT MRAB": {"Analysis Type": "data_performance", "Throughput": {"Mean": 1}},
		"REF MRAB": {"Throughput": {"Mean": 1}}
	}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, KindGeneric, records[0].Kind)
}

func TestExtractCallPerformance(t *testing.T) {
	root := parse(t, `{"VoLTE CP MO Drive": {
		"DUT": {"total_attempts": 50, "total_initiation_successes": 48, "total_initiation_failures": 2, "mean_setup_time": 1.5},
		"REF": {"total_attempts": 0},
		"initiation_p_value": 0.25,
		"retention_p_value": 0.5
	}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, KindCallPerformance, rec.Kind)
	require.NotNil(t, rec.Call)
	assert.Equal(t, "MO", rec.Call.CallType)
	assert.True(t, rec.Call.ShowsRetention())
	assert.InDelta(t, 96.0, rec.Call.DUT.SuccessRate(), 1e-9)
	assert.InDelta(t, 4.0, rec.Call.DUT.FailureRate(), 1e-9)
	assert.Equal(t, 0.0, rec.Call.REF.SuccessRate())
	assert.Nil(t, rec.Call.REF.MeanSetupTime)
	assert.Equal(t, 0.25, rec.Call.InitiationPValue)
}

func TestExtractCallPerformanceNeedsNumericPValues(t *testing.T) {
	root := parse(t, `{"CP MT": {
		"DUT": {"Throughput": {"Mean": 1}},
		"REF": {"Throughput": {"Mean": 1}},
		"initiation_p_value": "0.2",
		"retention_p_value": 0.5
	}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, KindGeneric, records[0].Kind)
}

func TestExtractVoiceQuality(t *testing.T) {
	root := parse(t, `{"5G Auto VoNR Enabled AMR WB VQ": {
		"REF": {"ul_mos_stats": {"mean": 3.9, "count": 40}, "dl_mos_stats": {"mean": 4.0}},
		"DUT1": {"ul_mos_stats": {"mean": 3.8}, "dl_mos_stats": {"mean": 4.1, "percent_less_than_3": 2.5}}
	}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, KindVoiceQuality, rec.Kind)
	require.NotNil(t, rec.Voice)
	assert.Equal(t, "AMR WB", rec.Voice.Codec)
	require.Len(t, rec.Voice.Devices, 2)
	assert.Equal(t, "REF", rec.Voice.Devices[0].Label)

	dut, ok := rec.Voice.Device("DUT1")
	require.True(t, ok)
	assert.Equal(t, 2.5, *dut.DL.PercentLessThan3)
	assert.Nil(t, dut.UL.Count)
}

func TestExtractAudioDelay(t *testing.T) {
	device := `{"mean": 200, "std_dev": 5, "min": 180, "max": 240, "occurrences": 30}`
	root := parse(t, fmt.Sprintf(`{"Audio Delay": {"DUT1": %s, "REF1": %s, "DUT2": %s, "REF2": %s}}`, device, device, device, device))

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, KindAudioDelay, records[0].Kind)
	assert.Equal(t, 240.0, records[0].AudioDelay.Devices["REF2"].Max)
}

func TestExtractAudioDelayIncompleteFallsBack(t *testing.T) {
	device := `{"mean": 200, "std_dev": 5, "min": 180, "max": 240, "occurrences": 30}`
	root := parse(t, fmt.Sprintf(`{"Audio Delay": {"DUT1": %s, "REF1": %s, "DUT2": %s, "REF2": {"mean": 1}}}`, device, device, device))

	records := Extract(root)
	require.Len(t, records, 1)
	assert.Equal(t, KindGeneric, records[0].Kind)
}

func TestExtractPlaystore(t *testing.T) {
	root := parse(t, `{"5G Auto DP": {"5G Auto Data Play-store app DL Stationary": {
		"location1": {
			"DUT": {"30M": {"run-a": {"overall_average_throughput": 120.5}, "run-b": {"overall_average_throughput": 1}}},
			"REF": {"30M": {"run-a": {"overall_average_throughput": 100}}}
		}
	}}}`)

	records := Extract(root)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, KindPlaystore, rec.Kind)

	cell := rec.Playstore.Cell("location1", "30M")
	assert.Equal(t, 120.5, *cell.DUT)
	assert.Equal(t, 100.0, *cell.REF)
	verdict, ok := cell.Verdict()
	require.True(t, ok)
	assert.Equal(t, classify.Excellent, verdict)

	_, ok = rec.Playstore.Cell("location3", "100M").Verdict()
	assert.False(t, ok)
	assert.Equal(t, "Moderate", PlaystoreLocationLabel("location2"))
}

func TestMatcherPriority(t *testing.T) {
	mos := `{"ul_mos_stats": {"mean": 4}, "dl_mos_stats": {"mean": 4}}`
	tests := []struct {
		name string
		doc  string
		want Kind
	}{
		{
			name: "mrab before generic",
			doc:  `{"X": {"DUT MRAB": {"Analysis Type": "mrab_performance"}, "REF MRAB": {}}}`,
			want: KindMRAB,
		},
		{
			name: "call performance before voice quality",
			doc:  fmt.Sprintf(`{"X": {"DUT": %s, "REF": %s, "initiation_p_value": 0.1, "retention_p_value": 0.2}}`, mos, mos),
			want: KindCallPerformance,
		},
		{
			name: "voice quality before generic",
			doc:  fmt.Sprintf(`{"X": {"DUT": %s, "REF": %s}}`, mos, mos),
			want: KindVoiceQuality,
		},
		{
			name: "playstore before generic",
			doc:  `{"5G Auto Data Play-store app DL Stationary": {"DUT": {"Throughput": {"Mean": 1}}}}`,
			want: KindPlaystore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Extract(parse(t, tt.doc))
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Kind)
		})
	}
}

func TestExtractRootRecordHasEmptyName(t *testing.T) {
	records := Extract(parse(t, `{"DUT": {"Throughput": {"Mean": 1}}}`))
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Name)
	assert.Empty(t, records[0].Path)
}

func TestExtractNonObjectRoot(t *testing.T) {
	assert.Empty(t, Extract(parse(t, `[{"DUT": {"x": {}}}]`)))
	assert.Empty(t, Extract(nil))
}

func TestRecordMarshalKeepsOrder(t *testing.T) {
	root := parse(t, `{"A": {"DUT": {"Throughput": {"Mean": 100, "Minimum": 1}, "Jitter": {"Mean": 2}}, "REF": {}}}`)
	records := Extract(root)
	require.Len(t, records, 1)

	data, err := json.Marshal(records[0].DUT)
	require.NoError(t, err)
	assert.Equal(t, `{"Throughput":{"Mean":100,"Minimum":1},"Jitter":{"Mean":2}}`, string(data))

	out, err := yaml.Marshal(records[0])
	require.NoError(t, err)
	text := string(out)
	assert.Less(t, strings.Index(text, "Throughput"), strings.Index(text, "Jitter"))
	assert.Less(t, strings.Index(text, "Mean: 100"), strings.Index(text, "Minimum: 1"))
	assert.Contains(t, text, "kind: generic")
}

var treeKeys = []string{"DUT", "REF", "A", "B", "Ping RTT", "Throughput", "Mean", "dut x", "REF2", "DUT1"}

func genTree(t *rapid.T, depth int) *resultstree.Node {
	if depth == 0 || rapid.IntRange(0, 3).Draw(t, "leaf") == 0 {
		return resultstree.NewNumber(rapid.Float64Range(0, 200).Draw(t, "value"))
	}
	width := rapid.IntRange(0, 4).Draw(t, "width")
	members := make([]resultstree.Member, 0, width)
	for i := 0; i < width; i++ {
		members = append(members, resultstree.Member{
			Key:   rapid.SampledFrom(treeKeys).Draw(t, "key"),
			Value: genTree(t, depth-1),
		})
	}
	return resultstree.NewObject(members...)
}

func TestExtractIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := resultstree.NewObject(resultstree.Member{Key: "root", Value: genTree(t, 5)})
		first := Extract(root)
		second := Extract(root)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("extraction not idempotent (-first +second):\n%s", diff)
		}
	})
}

func TestExtractNoNestedRecords(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t, 6)
		records := Extract(root)
		for i, outer := range records {
			for j, inner := range records {
				if i != j && isPrefix(outer.Path, inner.Path) {
					t.Fatalf("record %q nested under record %q", inner.Name, outer.Name)
				}
			}
		}
	})
}

func isPrefix(prefix, path []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}
