// Package workforcesvc exposes worker management: registration, listing,
// caller-driven state changes and state history.
package workforcesvc
