// Package rabin implements a deliberately small Rabin public-key cipher.
//
// # Keys
//
// A key pair is two primes p and q, both congruent to 3 mod 4, drawn from a
// narrow range ([300, 400) by default), and the public modulus n = p*q. The
// range keeps every modulus in the tens of thousands: this is a teaching toy
// and must not be used to protect anything.
//
// # Encryption
//
// The message is first expanded to standard base64 so that every symbol is a
// single byte between '+' (43) and 'z' (122). Each symbol m is encrypted on
// its own as c = m^2 mod n and the ciphertext is written as comma-separated
// decimal integers.
//
// # Decryption
//
// For each chunk the square roots modulo p and q are computed (Tonelli-Shanks
// with the p ≡ 3 mod 4 shortcut) and combined with the Chinese Remainder
// Theorem into four candidate roots modulo n. The candidate that is a single
// base64 alphabet byte is the plaintext symbol. Because n is larger than
// 2*122 and both primes exceed 122, at most one candidate can be that small.
package rabin
