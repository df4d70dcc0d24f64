/*
Package session orchestrates persistence around running prototypes.

It serialises snapshot writes per session and hint read-modify-write per
document, locally with reference-counted mutexes and across replicas with an
optional ports.DistributedLocker.
*/
package session
