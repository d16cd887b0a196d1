// Package catalog implements list, lookup and mutation of books on top of a
// store.Store.
//
// Every mutation is a read-modify-write cycle against the store. Cycles are
// serialized by one writer lock held by the Service, so concurrent requests
// never lose each other's changes. Reads do not take the lock; they observe the
// dataset as of the last completed save.
//
// Errors carry an HTTP status through StatusCode:
//
//   - *book.ValidationError: 401 for disallowed keys, 400 for bad values
//   - validation.Errors: 400, one entry per failed create rule
//   - *book.NotFoundError: 404
//   - *store.StorageError: 500
package catalog
