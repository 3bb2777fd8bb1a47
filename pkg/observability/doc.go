/*
Package observability provides domain.Reporter sinks for board generation events.

LogReporter writes events as structured log lines, PrometheusReporter turns
them into counters and latency histograms, and Multi fans one event out to
several sinks.
*/
package observability
