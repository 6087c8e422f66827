// internal/classify/classify.go
// Package classify buckets a DUT-vs-REF metric comparison into a verdict tier.
package classify

import (
	"fmt"
	"math"
	"strings"
)

// Verdict is the outcome of comparing a DUT value against a REF value.
type Verdict int

const (
	// Unknown is reported when a comparison could not be made at all.
	Unknown Verdict = iota
	Excellent
	Pass
	MarginalFail
	Fail
	// CannotEvaluate is reported when the reference value is zero.
	CannotEvaluate
)

var verdictNames = map[Verdict]string{
	Unknown:        "Unknown",
	Excellent:      "Excellent",
	Pass:           "Pass",
	MarginalFail:   "Marginal Fail",
	Fail:           "Fail",
	CannotEvaluate: "Cannot Evaluate",
}

var verdictClasses = map[Verdict]string{
	Unknown:        "bg-performance-unknown",
	Excellent:      "bg-performance-excellent",
	Pass:           "bg-performance-pass",
	MarginalFail:   "bg-performance-marginal-fail",
	Fail:           "bg-performance-fail",
	CannotEvaluate: "bg-performance-cannot-evaluate",
}

// Verdicts lists every verdict in report order.
var Verdicts = []Verdict{Excellent, Pass, MarginalFail, Fail, CannotEvaluate, Unknown}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return verdictNames[Unknown]
}

// CSSClass returns the report colour class for v.
func (v Verdict) CSSClass() string {
	if class, ok := verdictClasses[v]; ok {
		return class
	}
	return verdictClasses[Unknown]
}

// MarshalText encodes v as its display name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// MetricKind selects the threshold rules applied by Classify.
type MetricKind int

const (
	// Throughput is higher-is-better.
	Throughput MetricKind = iota
	// LowerIsBetter covers latency-style metrics such as jitter and ping RTT.
	LowerIsBetter
	// ErrorRatio is a percentage compared by absolute gap.
	ErrorRatio
)

func (k MetricKind) String() string {
	switch k {
	case LowerIsBetter:
		return "lower-is-better"
	case ErrorRatio:
		return "error-ratio"
	default:
		return "throughput"
	}
}

// ParseMetricKind accepts the names printed by MetricKind.String plus a few
// shorthands used on the command line.
func ParseMetricKind(s string) (MetricKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "throughput", "tp":
		return Throughput, nil
	case "lower-is-better", "lower", "latency", "jitter", "ping", "wplt":
		return LowerIsBetter, nil
	case "error-ratio", "error", "errors":
		return ErrorRatio, nil
	}
	return Throughput, fmt.Errorf("unknown metric kind %q", s)
}

// MetricKindFor maps a metric name found in a device block to its kind.
func MetricKindFor(metric string) (MetricKind, bool) {
	switch metric {
	case "Throughput":
		return Throughput, true
	case "Jitter", "Ping RTT", "Web Page Load Time":
		return LowerIsBetter, true
	case "Error Ratio":
		return ErrorRatio, true
	}
	return Throughput, false
}

// Classify compares dut against ref. Both values must be finite; anything else
// yields Unknown.
func Classify(dut, ref float64, kind MetricKind) Verdict {
	if !finite(dut) || !finite(ref) {
		return Unknown
	}
	if kind == ErrorRatio && dut == 0 && ref == 0 {
		return Pass
	}
	if ref == 0 {
		return CannotEvaluate
	}

	switch kind {
	case Throughput:
		switch {
		case dut > 1.1*ref:
			return Excellent
		case dut >= 0.9*ref:
			return Pass
		case dut >= 0.8*ref:
			return MarginalFail
		default:
			return Fail
		}
	case LowerIsBetter:
		switch {
		case dut < 0.9*ref:
			return Excellent
		case dut <= 1.1*ref:
			return Pass
		case dut <= 1.2*ref:
			return MarginalFail
		default:
			return Fail
		}
	case ErrorRatio:
		gap := dut - ref
		switch {
		case dut < ref:
			return Excellent
		case dut <= 5.0 || gap <= 10.0:
			return Pass
		case gap <= 20.0:
			return MarginalFail
		default:
			return Fail
		}
	}
	return Unknown
}

// ClassifyOptional classifies only when both sides are present and finite.
func ClassifyOptional(dut, ref *float64, kind MetricKind) (Verdict, bool) {
	if dut == nil || ref == nil || !finite(*dut) || !finite(*ref) {
		return Unknown, false
	}
	return Classify(*dut, *ref, kind), true
}

// MRABStatus describes the in-call throughput comparison of an MRAB case.
func MRABStatus(dut, ref *float64) string {
	if ref == nil || *ref == 0 || !finite(*ref) {
		return "Cannot calculate: Reference Throughput is zero or None."
	}
	if dut == nil || !finite(*dut) {
		return "Cannot calculate: DUT Throughput is None."
	}
	return Classify(*dut, *ref, Throughput).String()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
