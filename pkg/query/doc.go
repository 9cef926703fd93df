// Package query implements the read side of a workshop: keyword search,
// timeline ordering, statistics with context coverage, bounded context
// overviews and pagination.
//
// Every function is a pure read over a *graph.Graph and returns results in a
// deterministic order.
package query
