// Package migration orchestrates bulk repository moves between hosting
// platforms: enumerating the source account, prompting for exclusions,
// confirming the run, and transferring each selected repository in turn.
package migration
