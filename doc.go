// Package adaptercore is the database-abstraction core of an authentication
// framework: a schema-driven persistence layer that sits between auth
// business logic (sign-up, sessions, OAuth account linking, plugin schemas)
// and heterogeneous storage backends.
//
// The core owns schema composition and name resolution (package schema),
// bidirectional field transformation (package transform), where-clause
// compilation (package where), the adapter factory that coordinates a
// write/read lifecycle around a driver (package adapter), fallback join
// resolution (package join), migration planning (package migrate),
// lifecycle hooks (package hooks), and an optional secondary key-value
// store for session caching (package secondary). Package authstore layers
// typed auth-domain helpers (users, sessions, accounts, verifications) on
// top of the adapter.
//
// A storage backend implements adapter.Driver; this module ships one
// reference implementation backed by database/sql (package sqladapter)
// and one in-memory implementation used by the test suite (package
// memadapter).
package adaptercore
