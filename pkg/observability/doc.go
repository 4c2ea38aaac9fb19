/*
Package observability provides tools for monitoring the conversion engine.

Metrics implements convert.Observer and records Prometheus counters and latency
histograms per conversion direction. Logger reports failed conversions through
slog, and Aggregator fans one conversion event out to several observers.
*/
package observability
