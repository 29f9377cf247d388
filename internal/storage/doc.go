// Package storage is the storage adapter between the CRUD engine and the
// key/value store.
//
// Layout of persisted keys:
//
//	myManager_data_<kind>   JSON array of records for one entity kind
//	myManager_activities    JSON array of the 20 most recent activity entries
//	isLoggedIn, username, loginTime
//	language
//	currentEntity, currentItem
//
// Load treats a missing or corrupt snapshot as absent so callers regenerate
// seed data. Save logs and returns write failures; it never panics.
package storage
