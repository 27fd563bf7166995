// Package middleware provides ports.Backend decorators.
package middleware
