// Package config handles configuration loading for mymanager.
//
// # Configuration File
//
// Resolve looks, in order, at:
//
//  1. The path given with --config
//  2. Path from MYMANAGER_CONFIG environment variable
//  3. ./mymanager.yaml, then ./mymanager.toml
//
// With none present the built-in defaults apply (SQLite under ./data,
// local mode, admin/admin, French).
//
// # Environment
//
// A .env file next to the config file and one in the working directory are
// loaded with godotenv before parsing; variables already set win. Values may
// then reference ${VAR_NAME}:
//
//	auth:
//	  password_hash: "${MYMANAGER_PASSWORD_HASH}"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//	storage:
//	  driver: "sqlite"          # sqlite, sqlite3, postgres, memory
//	  path: "data/mymanager.db"
//	  dsn: ""                   # postgres only
//	  quota_bytes: 5242880      # per value, 0 = unlimited
//	data:
//	  mode: "local"             # local, remote
//	  source: "jsonplaceholder"
//	  items_per_page: 10
//	remote:
//	  timeout: "15s"
//	  cache_ttl: "5m"
//	  base_urls: {mirror: "http://other:8080/api"}
//	  endpoints: {users: {mirror: "/users"}}
//	  token: "${MYMANAGER_REMOTE_TOKEN}"
//	auth:
//	  username: "admin"
//	  password_hash: "$2a$10$..."
//	  session_secret: "${MYMANAGER_SESSION_SECRET}"  # >= 32 bytes
//	  session_ttl: "24h"
//	i18n:
//	  default_language: "fr"    # fr, en, ar
//	logging:
//	  level: "info"
//	  format: "text"            # text, json
//
// The same keys work in TOML when the file ends in .toml.
package config
