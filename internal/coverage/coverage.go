// internal/coverage/coverage.go
// Package coverage reads the coverage drive-test subtree of a results document
// into per-device distance tables and map markers.
package coverage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/mwiater/fieldreport/internal/resultstree"
)

// Key is the top-level results key holding coverage data.
const Key = "Coverage Performance"

// Runs is the number of drive runs shown per device.
const Runs = 5

// Event is one coverage event recorded per run.
type Event struct {
	Key   string
	Title string
}

// Events lists the coverage events in report order.
var Events = []Event{
	{Key: "last_mos_value_coords", Title: "Last MOS Value Distance (km)"},
	{Key: "voice_call_drop_coords", Title: "Voice Call Drop Distance (km)"},
	{Key: "first_dl_tp_gt_1_coords", Title: "DL TP < 1 Distance (km)"},
	{Key: "first_ul_tp_gt_1_coords", Title: "UL TP < 1 Distance (km)"},
}

// DefaultDevices always get a table row, even without data.
var DefaultDevices = []string{"DUT1", "DUT2", "DUT3", "REF1", "REF2", "REF3"}

// Coordinate is where an event happened. Latitude and Longitude keep the
// source text; Lat and Lon are only meaningful when HasPosition is set.
type Coordinate struct {
	Latitude    string
	Longitude   string
	Distance    *float64
	Lat         float64
	Lon         float64
	HasPosition bool
}

// RunKey identifies one device run, as in "DUT1_Run3".
type RunKey struct {
	Device string
	Run    int
}

func (k RunKey) String() string { return fmt.Sprintf("%s_Run%d", k.Device, k.Run) }

// ParseRunKey splits "DUT1_Run3" into its device and run number.
func ParseRunKey(s string) (RunKey, bool) {
	i := strings.LastIndex(s, "_Run")
	if i <= 0 {
		return RunKey{}, false
	}
	run, err := strconv.Atoi(s[i+len("_Run"):])
	if err != nil || run <= 0 {
		return RunKey{}, false
	}
	return RunKey{Device: s[:i], Run: run}, true
}

// Test is one coverage test: every device run with its event coordinates.
type Test struct {
	Name   string
	Events map[RunKey]map[string]Coordinate
}

// Coordinate returns the coordinate of event for one device run.
func (t Test) Coordinate(device string, run int, event string) (Coordinate, bool) {
	c, ok := t.Events[RunKey{Device: device, Run: run}][event]
	return c, ok
}

// Devices lists the defaults plus every device seen in the test, DUTs first,
// then REFs, then anything else.
func (t Test) Devices() []string {
	seen := make(map[string]bool)
	var devices []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			devices = append(devices, d)
		}
	}
	for _, d := range DefaultDevices {
		add(d)
	}
	for k := range t.Events {
		add(k.Device)
	}
	sort.SliceStable(devices, func(i, j int) bool {
		gi, gj := deviceGroup(devices[i]), deviceGroup(devices[j])
		if gi != gj {
			return gi < gj
		}
		return devices[i] < devices[j]
	})
	return devices
}

func deviceGroup(device string) int {
	switch {
	case strings.HasPrefix(device, "DUT"):
		return 0
	case strings.HasPrefix(device, "REF"):
		return 1
	}
	return 2
}

// Parse reads every coverage test under the Coverage Performance key of
// root. Entries that do not look like device runs are ignored.
func Parse(root *resultstree.Node) []Test {
	var tests []Test
	for _, test := range root.Child(Key).Members() {
		if !test.Value.IsObject() {
			continue
		}
		t := Test{Name: test.Key, Events: make(map[RunKey]map[string]Coordinate)}
		for _, run := range test.Value.Members() {
			key, ok := ParseRunKey(run.Key)
			if !ok || !run.Value.IsObject() {
				continue
			}
			events := make(map[string]Coordinate)
			for _, event := range run.Value.Members() {
				if event.Value.IsObject() {
					events[event.Key] = newCoordinate(event.Value)
				}
			}
			t.Events[key] = events
		}
		tests = append(tests, t)
	}
	return tests
}

func newCoordinate(n *resultstree.Node) Coordinate {
	c := Coordinate{
		Latitude:  textOf(n.Child("latitude")),
		Longitude: textOf(n.Child("longitude")),
		Distance:  numberOf(n.Child("distance_to_base_station_km")),
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(c.Latitude), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(c.Longitude), 64)
	if errLat == nil && errLon == nil {
		c.Lat, c.Lon, c.HasPosition = lat, lon, true
	}
	return c
}

// textOf returns strings as-is and numbers in their source form.
func textOf(n *resultstree.Node) string {
	if s, ok := n.Text(); ok {
		return s
	}
	if f, ok := n.Float(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// numberOf accepts numbers and numeric strings.
func numberOf(n *resultstree.Node) *float64 {
	if f := n.FloatPtr(); f != nil {
		return f
	}
	if s, ok := n.Text(); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

// Cell is one distance in a table; nil renders as N/A.
type Cell struct {
	Value *float64
}

func (c Cell) String() string {
	if c.Value == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*c.Value, 'f', 3, 64)
}

// Row is one device across all runs.
type Row struct {
	Device  string
	Runs    []Cell
	Average Cell
}

// Table is the distance table of one event.
type Table struct {
	Test  string
	Event Event
	Runs  []string
	Rows  []Row
}

// DistanceTable builds the per-device run distances of event, with the
// average over the runs that have a value.
func DistanceTable(t Test, event Event) Table {
	table := Table{Test: t.Name, Event: event}
	for run := 1; run <= Runs; run++ {
		table.Runs = append(table.Runs, fmt.Sprintf("Run%d", run))
	}
	for _, device := range t.Devices() {
		row := Row{Device: device}
		var present stats.Float64Data
		for run := 1; run <= Runs; run++ {
			c, ok := t.Coordinate(device, run, event.Key)
			if !ok || c.Distance == nil {
				row.Runs = append(row.Runs, Cell{})
				continue
			}
			d := *c.Distance
			row.Runs = append(row.Runs, Cell{Value: &d})
			present = append(present, d)
		}
		if mean, err := present.Mean(); err == nil {
			row.Average = Cell{Value: &mean}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Tables builds one distance table per event.
func Tables(t Test) []Table {
	tables := make([]Table, 0, len(Events))
	for _, event := range Events {
		tables = append(tables, DistanceTable(t, event))
	}
	return tables
}

// Marker is one plottable event position.
type Marker struct {
	Device   string
	Run      int
	Event    string
	Lat      float64
	Lon      float64
	Distance *float64
}

// Markers lists every event with a parseable position, ordered by device,
// run and event.
func Markers(t Test) []Marker {
	var markers []Marker
	for _, device := range t.Devices() {
		for run := 1; run <= Runs; run++ {
			for _, event := range Events {
				c, ok := t.Coordinate(device, run, event.Key)
				if !ok || !c.HasPosition {
					continue
				}
				markers = append(markers, Marker{
					Device:   device,
					Run:      run,
					Event:    event.Key,
					Lat:      c.Lat,
					Lon:      c.Lon,
					Distance: c.Distance,
				})
			}
		}
	}
	return markers
}

// DistanceText renders the marker distance like a table cell.
func (m Marker) DistanceText() string {
	return Cell{Value: m.Distance}.String()
}
