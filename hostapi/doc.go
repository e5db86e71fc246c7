// Package hostapi is an in-memory Host Api Adapter. It implements every capability a chart
// guest can be granted, records the effects scripts have, and is what the CLI and the engine
// tests run scripts against.
//
// A ChartEditor belongs to exactly one guest context. Build a new one per evaluation.
package hostapi
