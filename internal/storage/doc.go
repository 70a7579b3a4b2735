// Package storage provides the node-local key-value store. Entries carry
// no version or expiry: the last write applied on a node wins on that node.
package storage
