// Package models defines the persisted catalog entities: libraries, series,
// books and per-user read progress.
//
// Timestamps are carried by the Audit value each entity embeds. Identity keys
// (identity.Key) are the join columns between scan results and rows; numeric
// IDs are assigned by the database on insert.
package models
