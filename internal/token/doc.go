// Package token defines lexical token kinds for the script subset accepted by
// the compiler, together with keyword lookup and small classification helpers.
package token
