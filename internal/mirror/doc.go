// Package mirror moves one repository between hosting platforms with a
// mirror clone into an ephemeral workspace followed by a mirror push, so
// every ref transfers and nothing lingers on disk afterwards.
package mirror
