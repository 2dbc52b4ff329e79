// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application; this package only defines
// the port, API key and timeouts it reads.
package server
