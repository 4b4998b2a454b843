/*
Package observability exports plotting activity as Prometheus metrics.

Metrics are registered on a private registry so several instances can live in
one process (tests, embedded servers). Hooks adapts the collectors to the
session's lifecycle callbacks:

	m := observability.NewMetrics()
	sess := session.New(session.WithHooks(m.Hooks()))
	http.Handle("/metrics", m.Handler())
*/
package observability
