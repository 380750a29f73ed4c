// Package discovery locates the central runtime component (CRC) of a
// federation through mDNS/DNS-SD when no host is configured.
//
// # CRC Discovery (_hla-crc._tcp)
//
// A CRC advertises one service instance per federation execution it hosts.
// Instance name format: <federation>@<host>
// TXT records include: FN (federation name), and optionally RV (runtime
// vendor) and VER (coordination protocol version). FindCRC skips components
// whose major protocol version differs from version.Current.
//
// Browsing aggregates addresses reported on several interfaces into a
// single entry per instance name.
package discovery
