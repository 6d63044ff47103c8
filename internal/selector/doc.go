// Package selector switches a NIKKE client installation between the official
// service and a private server.
//
// A switch touches three artifacts:
//
//   - the hosts file (and the wine prefix's hosts file on linux), where a
//     marker-delimited block redirects the game's hostnames;
//   - the launcher and game certificate bundles, which get the private CA
//     appended after a "Good SSL Ca" marker;
//   - the game's native crypto library, replaced by a patched build after the
//     original has been backed up.
//
// Nothing is cached between calls. The active mode is read back from the hosts
// file every time, so a Switcher can be created per command. Callers must not
// run two switches at once.
package selector
