// Package remote provides the off-device locations remote backups are
// written to, along with the coordinated-access primitive that guards them.
//
// Two stores implement Store: S3Store, an S3 bucket (or any S3-compatible
// service), and DirStore, a local directory kept in sync by an external
// tool. Both report reachability through CheckAvailability. Their errors
// wrap ErrRemoteUnavailable or ErrNetworkUnavailable when the location
// cannot be used.
package remote
