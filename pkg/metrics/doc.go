// Package metrics exports setup run metrics in the Prometheus text format.
//
// stackops is a one-shot command, so nothing is served over HTTP. After each
// run the registry is written to a file picked up by the node_exporter
// textfile collector.
package metrics
