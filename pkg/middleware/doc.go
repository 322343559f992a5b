// Package middleware provides event middleware for observing a pagenav
// server.
//
// # Prometheus Metrics
//
// Prometheus records every client event, recognized swipe and routed
// direction signal:
//
//	srv.Use(middleware.Prometheus())
//	srv.Mount("/metrics", promhttp.Handler())
//
// Session gauges are fed from the server hooks:
//
//	cfg.OnSessionStart = func(context.Context, *server.Session) { middleware.RecordSessionCreate() }
//	cfg.OnSessionClose = func(s *server.Session) { middleware.RecordSessionDestroy(s.Stats()) }
//
// # OpenTelemetry
//
// OpenTelemetry starts one span per event on the global tracer provider.
// Outcome, swipe measurements and the navigation decision are added as
// attributes once the event is handled.
//
//	srv.Use(middleware.OpenTelemetry(
//	    middleware.WithEventFilter(func(ec *server.EventContext) bool {
//	        return ec.Event().Type != protocol.EventTouchMove
//	    }),
//	))
package middleware
