// Package printing describes the documents the portal can print (packing
// slips, cash and GST challans, material challans) and the ledger of
// generated PDFs.
package printing
