// Package dashboard computes the backoffice home page: headline totals,
// chart series over the persisted snapshots and the recent activity feed.
package dashboard
