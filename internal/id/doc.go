// Package id provides identifier generation for bookshelf records.
//
// Book identifiers are short opaque tokens: 4 bytes from crypto/rand, hex
// encoded to 8 lowercase characters. They are not sortable and carry no
// timestamp. Uniqueness within a dataset is enforced by the caller, which
// regenerates on collision; see catalog.Service.
package id
