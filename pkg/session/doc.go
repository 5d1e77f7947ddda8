/*
Package session serializes access to stored report sessions.

Every read-modify-write of a session runs under a per-session mutex, and
optionally under a ports.DistributedLocker when several replicas share one
store. Mutexes are reference counted and dropped as soon as no caller holds
or waits on them.
*/
package session
