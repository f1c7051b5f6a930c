// Package identity maps noisy, hand-entered text onto canonical entities.
//
// Field staff type salesman codes, customer names and product names freely:
// "PS-101 gladys", "Drg. Wilson Sp.Ort", "komposit a2 3m". The normalisers
// here reduce such strings to comparable keys, ClosestMatch scores keys the
// way Python's difflib.get_close_matches does, and Resolver turns a raw
// salesman fragment into an official user id. Every report joins on the
// results, so the functions are pure and safe for concurrent use.
package identity
