// Package api serves the record store over HTTP.
//
// # Overview
//
// Reads return snapshots of the store. Writes dispatch an operation, wait
// for its outcome to be applied and answer with the operation's payload.
// The server never modifies state itself.
//
// # Routes
//
//	GET    /api/state                      whole snapshot with its version
//	GET    /api/{kind}                     one collection
//	POST   /api/{kind}/fetch               reload a collection from the provider
//	POST   /api/{kind}                     create
//	PUT    /api/{kind}/{id}                update
//	DELETE /api/{kind}/{id}                delete
//	PATCH  /api/{kind}/{id}/toggle         enable or disable
//	POST   /api/{kind}/clear-error         reset the collection error
//	POST   /api/system/info/fetch
//	POST   /api/system/updates/fetch
//	POST   /api/system/updates/{id}/install
//	POST   /api/system/reboot
//	POST   /api/auth/login
//	POST   /api/auth/logout
//	GET    /api/ws                         change feed
//	GET    /api/health
//	GET    /metrics
//
// kind is one of firewall, vpn, network and users.
//
// # Errors
//
// Every error body is {"error": message}. Malformed or invalid records are
// 400, unknown routes 404, and a rejected operation is 502 carrying the
// rejection message, localized by Accept-Language.
package api
