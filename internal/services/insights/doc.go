// Package insights exposes the read-only dashboard statistics: handle
// times, the agent state census, the leaderboard and per-project queue
// stats.
package insights
