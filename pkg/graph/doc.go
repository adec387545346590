// Package graph defines the design graph types for Lignin.
// The design graph is an immutable DAG of parts, joins, transforms,
// and groups that represents a woodworking design.
package graph
