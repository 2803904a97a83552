// Package platform defines the hosting-platform contract shared by every
// provider implementation: repository descriptors, the Provider interface,
// connection settings, and the error taxonomy for listing, lookup, and
// creation operations.
package platform
