/*
Package session implements board session management and persistence orchestration.

It keeps live boards in memory so in-flight generations survive between
requests, serializes load/save per board with reference-counted local locks,
and optionally coordinates replicas through a distributed lock.
*/
package session
