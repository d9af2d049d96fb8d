// Package conv converts between the int sizes used by allocation
// strategies and the fixed-width fields of chunk headers, block ids and
// statistics. Every conversion fails with ErrOverflow instead of wrapping.
package conv
