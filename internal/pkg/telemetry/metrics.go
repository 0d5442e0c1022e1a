package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys.
const (
	AttrLayer    = attribute.Key("mtlmap.layer")
	AttrFeatures = attribute.Key("mtlmap.features")
	AttrRecords  = attribute.Key("mtlmap.records")
	AttrSkipped  = attribute.Key("mtlmap.skipped")
)
