// Package store keeps the last published race state in memory. It is the
// single shared read-mostly resource between the cycle coordinator (writer)
// and subscriber replay and the admin API (readers).
package store
