// Package cache provides the time-boxed response cache used by the remote
// fetch facade. Entries live for a fixed TTL from insertion (five minutes by
// default); reads never extend it.
package cache
