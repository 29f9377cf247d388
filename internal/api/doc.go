// Package api serves the entity collections as JSON under /api.
//
// Routes:
//
//	POST   /api/login          exchange credentials for a bearer token
//	GET    /api/kinds          registered entity kinds
//	GET    /api/{kind}         list (q, sort, order, page, limit, field filters)
//	POST   /api/{kind}         create
//	GET    /api/{kind}/{id}    fetch one record
//	PUT    /api/{kind}/{id}    merge fields into a record
//	DELETE /api/{kind}/{id}    delete
//
// Every route except login requires a bearer token or the web session
// cookie. List responses wrap records as {"data": [...], "pagination": {...}};
// mutations answer {"success": true, "data": ...} or {"success": false,
// "error": ...}. Both shapes are what the remote client decodes, so a
// second instance can point a remote source at this one.
package api
