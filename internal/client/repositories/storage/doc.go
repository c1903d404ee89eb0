// Package storage provides the persistent key/value backends that play the
// role of browser storage for the client: a SQLite file (default), the OS
// keyring, a shared Redis instance, and an in-memory map used for
// session-scoped values and tests.
//
// All backends honor the Store contract; those that can write several keys
// atomically also implement Batcher.
package storage
